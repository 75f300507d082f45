package implementations

import "github.com/annel0/voxel-spread/internal/world/block"

// StoneBehavior реализует поведение камня: непрозрачный и инертный
type StoneBehavior struct{}

func (b *StoneBehavior) ID() block.BlockID { return block.StoneBlockID }

func (b *StoneBehavior) Name() string { return "Stone" }
