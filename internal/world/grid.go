package world

import (
	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/annel0/voxel-spread/internal/world/block"
)

// Grid хранит воксели секциями 16³ и считает освещённость.
// Клетки вне загруженных секций читаются как воздух, запись создаёт секцию.
// Grid не синхронизирован: доступ упорядочивает WorldManager.
type Grid struct {
	chunks   map[vec.Vec3]*Chunk
	minY     int
	maxY     int
	registry *block.Registry

	heights    map[vec.Vec2]int // Y самого высокого непрозрачного блока столбца
	blockLight map[vec.Vec3]int // Явные источники света
}

// NewGrid создаёт пустую сетку с границами по высоте [minY, maxY]
func NewGrid(minY, maxY int, registry *block.Registry) *Grid {
	return &Grid{
		chunks:     make(map[vec.Vec3]*Chunk),
		minY:       minY,
		maxY:       maxY,
		registry:   registry,
		heights:    make(map[vec.Vec2]int),
		blockLight: make(map[vec.Vec3]int),
	}
}

// MinY возвращает нижнюю границу мира
func (g *Grid) MinY() int { return g.minY }

// MaxY возвращает верхнюю границу мира
func (g *Grid) MaxY() int { return g.maxY }

// InBounds проверяет, что позиция внутри границ по высоте
func (g *Grid) InBounds(pos vec.Vec3) bool {
	return pos.Y >= g.minY && pos.Y <= g.maxY
}

// Get возвращает материал и data клетки
func (g *Grid) Get(pos vec.Vec3) (block.BlockID, uint16) {
	if !g.InBounds(pos) {
		return block.AirBlockID, 0
	}
	chunk, ok := g.chunks[pos.ToChunkCoords()]
	if !ok {
		return block.AirBlockID, 0
	}
	return chunk.Get(pos.LocalInChunk())
}

// Set записывает материал. Возвращает предыдущий материал и false,
// если позиция вне границ.
func (g *Grid) Set(pos vec.Vec3, id block.BlockID, data uint16) (block.BlockID, bool) {
	if !g.InBounds(pos) {
		return block.AirBlockID, false
	}
	coords := pos.ToChunkCoords()
	chunk, ok := g.chunks[coords]
	if !ok {
		if id == block.AirBlockID {
			return block.AirBlockID, true
		}
		chunk = NewChunk(coords)
		g.chunks[coords] = chunk
	}
	prev := chunk.Set(pos.LocalInChunk(), id, data)
	if chunk.IsEmpty() {
		delete(g.chunks, coords)
	}
	g.updateHeight(pos, prev, id)
	return prev, true
}

// updateHeight поддерживает карту высот для расчёта небесного света
func (g *Grid) updateHeight(pos vec.Vec3, prev, id block.BlockID) {
	col := pos.Column()
	h, has := g.heights[col]
	opaque := !g.registry.IsTransparent(id)

	if opaque {
		if !has || pos.Y > h {
			g.heights[col] = pos.Y
		}
		return
	}
	if !has || pos.Y != h || g.registry.IsTransparent(prev) {
		return
	}
	for y := h - 1; y >= g.minY; y-- {
		if below, _ := g.Get(col.At(y)); !g.registry.IsTransparent(below) {
			g.heights[col] = y
			return
		}
	}
	delete(g.heights, col)
}

// HighestOpaque возвращает Y самого высокого непрозрачного блока столбца
func (g *Grid) HighestOpaque(col vec.Vec2) (int, bool) {
	h, ok := g.heights[col]
	return h, ok
}

// SkyExposed сообщает, видит ли клетка небо
func (g *Grid) SkyExposed(pos vec.Vec3) bool {
	h, ok := g.heights[pos.Column()]
	return !ok || pos.Y > h
}

// SetBlockLight задаёт явный источник света в клетке (0 убирает источник)
func (g *Grid) SetBlockLight(pos vec.Vec3, level int) {
	switch {
	case level <= 0:
		delete(g.blockLight, pos)
	case level > MaxLight:
		g.blockLight[pos] = MaxLight
	default:
		g.blockLight[pos] = level
	}
}

// Light возвращает освещённость клетки при уровне небесного света sky
func (g *Grid) Light(pos vec.Vec3, sky int) int {
	level := g.blockLight[pos]
	if g.SkyExposed(pos) && sky > level {
		level = sky
	}
	return level
}

// ChunkCount возвращает число загруженных секций
func (g *Grid) ChunkCount() int {
	return len(g.chunks)
}
