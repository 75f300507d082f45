package world

import (
	"github.com/annel0/voxel-spread/internal/util"
	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/annel0/voxel-spread/internal/world/block"
)

// TerrainGenerator строит рельеф для демонстрации распространения:
// камень, слой земли, сверху трава, мицелий или песок, вода до уровня моря.
type TerrainGenerator struct {
	Seed          int64   // Сид для генерации шума
	BaseHeight    int     // Средняя высота поверхности
	Amplitude     int     // Размах высот
	SeaLevel      int     // Уровень воды
	NoiseScale    float64 // Масштаб основного шума (высота)
	BiomeScale    float64 // Масштаб шума биомов
	BareDirt      float64 // Доля голой земли на поверхности (от 0 до 1)
	MyceliumPatch float64 // Порог шума биома, выше которого растёт мицелий

	height *util.Noise
	biome  *util.Noise
}

// NewTerrainGenerator создаёт генератор рельефа
func NewTerrainGenerator(seed int64) *TerrainGenerator {
	return &TerrainGenerator{
		Seed:          seed,
		BaseHeight:    64,
		Amplitude:     12,
		SeaLevel:      60,
		NoiseScale:    0.03,
		BiomeScale:    0.02,
		BareDirt:      0.6,
		MyceliumPatch: 0.8,
		height:        util.NewNoise(seed),
		biome:         util.NewNoise(seed + 42),
	}
}

// Height возвращает высоту поверхности столбца
func (tg *TerrainGenerator) Height(x, z int) int {
	n := tg.height.Noise2D(float64(x)*tg.NoiseScale, float64(z)*tg.NoiseScale)
	return tg.BaseHeight + int(float64(tg.Amplitude)*(2*n-1))
}

// Surface возвращает материал верхнего блока столбца
func (tg *TerrainGenerator) Surface(x, z, height int) block.BlockID {
	if height <= tg.SeaLevel {
		return block.SandBlockID
	}
	b := tg.biome.Noise2D(float64(x)*tg.BiomeScale, float64(z)*tg.BiomeScale)
	if b >= tg.MyceliumPatch {
		return block.MyceliumBlockID
	}
	// Мелкая рябь шума решает, покрыта ли клетка травой
	ripple := tg.biome.Noise2D(float64(x)*0.9+17, float64(z)*0.9-31)
	if ripple < tg.BareDirt {
		return block.DirtBlockID
	}
	return block.GrassBlockID
}

// column заполняет один столбец через set
func (tg *TerrainGenerator) column(x, z, minY, maxY int, set func(pos vec.Vec3, id block.BlockID)) vec.Vec3 {
	h := tg.Height(x, z)
	if h > maxY {
		h = maxY
	}
	top := vec.Vec3{X: x, Y: h, Z: z}
	for y := minY; y < h; y++ {
		id := block.StoneBlockID
		if y >= h-3 {
			id = block.DirtBlockID
		}
		set(vec.Vec3{X: x, Y: y, Z: z}, id)
	}
	set(top, tg.Surface(x, z, h))
	for y := h + 1; y <= tg.SeaLevel && y <= maxY; y++ {
		set(vec.Vec3{X: x, Y: y, Z: z}, block.WaterBlockID)
	}
	return top
}
