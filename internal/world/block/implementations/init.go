package implementations

import "github.com/annel0/voxel-spread/internal/world/block"

// RegisterStatic добавляет статические материалы в реестр
func RegisterStatic(reg *block.Registry) {
	reg.Register(block.AirBlockID, &AirBehavior{})
	reg.Register(block.StoneBlockID, &StoneBehavior{})
	reg.Register(block.WaterBlockID, &WaterBehavior{})
	reg.Register(block.SandBlockID, &SandBehavior{})
	reg.Register(block.DirtBlockID, &DirtBehavior{})
}

// Регистрируем все статические блоки при импорте пакета
func init() {
	RegisterStatic(block.Default())
}
