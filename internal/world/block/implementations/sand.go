package implementations

import "github.com/annel0/voxel-spread/internal/world/block"

// SandBehavior - песок
type SandBehavior struct{}

func (b *SandBehavior) ID() block.BlockID { return block.SandBlockID }

func (b *SandBehavior) Name() string { return "Sand" }
