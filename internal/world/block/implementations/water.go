package implementations

import "github.com/annel0/voxel-spread/internal/world/block"

// WaterBehavior реализует поведение воды. Вода прозрачна для света,
// но как жидкость над травой или мицелием вызывает их распад.
type WaterBehavior struct{}

func (b *WaterBehavior) ID() block.BlockID { return block.WaterBlockID }

func (b *WaterBehavior) Name() string { return "Water" }

func (b *WaterBehavior) IsTransparent() bool { return true }

func (b *WaterBehavior) IsLiquid() bool { return true }
