package world

import (
	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/annel0/voxel-spread/internal/world/block"
)

// ChunkSize - длина ребра секции чанка
const ChunkSize = 16

const chunkVolume = ChunkSize * ChunkSize * ChunkSize

// Chunk представляет секцию мира 16x16x16 блоков
type Chunk struct {
	Coords vec.Vec3 // Координаты секции (мировые >> 4)

	blocks [chunkVolume]block.BlockID
	data   map[int]uint16 // Разреженные data-значения, 0 не хранится
	solid  int            // Количество не-воздушных клеток
}

// NewChunk создаёт пустую секцию с указанными координатами
func NewChunk(coords vec.Vec3) *Chunk {
	return &Chunk{
		Coords: coords,
		data:   make(map[int]uint16),
	}
}

func chunkIndex(local vec.Vec3) int {
	return local.Y<<8 | local.Z<<4 | local.X
}

// Get возвращает материал и data по локальным координатам
func (c *Chunk) Get(local vec.Vec3) (block.BlockID, uint16) {
	idx := chunkIndex(local)
	return c.blocks[idx], c.data[idx]
}

// Set записывает материал и возвращает предыдущий
func (c *Chunk) Set(local vec.Vec3, id block.BlockID, data uint16) block.BlockID {
	idx := chunkIndex(local)
	prev := c.blocks[idx]
	c.blocks[idx] = id

	if data == 0 {
		delete(c.data, idx)
	} else {
		c.data[idx] = data
	}

	switch {
	case prev == block.AirBlockID && id != block.AirBlockID:
		c.solid++
	case prev != block.AirBlockID && id == block.AirBlockID:
		c.solid--
	}
	return prev
}

// IsEmpty возвращает true, если в секции только воздух
func (c *Chunk) IsEmpty() bool {
	return c.solid == 0
}

// Origin возвращает мировые координаты угла секции
func (c *Chunk) Origin() vec.Vec3 {
	return vec.Vec3{X: c.Coords.X << 4, Y: c.Coords.Y << 4, Z: c.Coords.Z << 4}
}
