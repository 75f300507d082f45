package implementations

import "github.com/annel0/voxel-spread/internal/world/block"

// AirBehavior - пустая клетка
type AirBehavior struct{}

func (b *AirBehavior) ID() block.BlockID { return block.AirBlockID }

func (b *AirBehavior) Name() string { return "Air" }

// IsTransparent: воздух всегда пропускает свет
func (b *AirBehavior) IsTransparent() bool { return true }
