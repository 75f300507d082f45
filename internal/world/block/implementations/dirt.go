package implementations

import "github.com/annel0/voxel-spread/internal/world/block"

// DirtBehavior реализует поведение земли. Земля сама по себе статична,
// но служит заменяемым материалом для травы и мицелия.
type DirtBehavior struct{}

func (b *DirtBehavior) ID() block.BlockID { return block.DirtBlockID }

func (b *DirtBehavior) Name() string { return "Dirt" }
