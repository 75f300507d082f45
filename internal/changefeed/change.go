// Package changefeed собирает изменения материалов клеток в партии,
// сжимает их и публикует в шину событий.
package changefeed

import (
	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/annel0/voxel-spread/internal/world/block"
)

// Change - одно изменение материала клетки
type Change struct {
	Pos   vec.Vec3      `json:"pos"`
	From  block.BlockID `json:"from"`
	To    block.BlockID `json:"to"`
	Data  uint16        `json:"data,omitempty"`
	Cause block.Cause   `json:"cause"`
	Tick  int64         `json:"tick"`
}
