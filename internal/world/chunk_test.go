package world

import (
	"testing"

	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/annel0/voxel-spread/internal/world/block"
	"github.com/annel0/voxel-spread/internal/world/block/implementations"
)

func TestChunkCreateAndGetBlock(t *testing.T) {
	coords := vec.Vec3{X: 5, Y: 2, Z: -1}
	chunk := NewChunk(coords)

	if chunk.Coords != coords {
		t.Errorf("Ожидались координаты %v, получено %v", coords, chunk.Coords)
	}
	if origin := chunk.Origin(); origin != (vec.Vec3{X: 80, Y: 32, Z: -16}) {
		t.Errorf("Неверный угол секции: %v", origin)
	}

	local := vec.Vec3{X: 3, Y: 15, Z: 4}
	if id, _ := chunk.Get(local); id != block.AirBlockID {
		t.Errorf("Ожидался пустой блок (AirBlockID), получен %d", id)
	}

	prev := chunk.Set(local, block.StoneBlockID, 7)
	if prev != block.AirBlockID {
		t.Errorf("Предыдущий блок должен быть воздухом, получен %d", prev)
	}
	id, data := chunk.Get(local)
	if id != block.StoneBlockID || data != 7 {
		t.Errorf("Ожидался StoneBlockID/7, получен %d/%d", id, data)
	}
	if chunk.IsEmpty() {
		t.Error("Секция с камнем не должна быть пустой")
	}

	chunk.Set(local, block.AirBlockID, 0)
	if !chunk.IsEmpty() {
		t.Error("После удаления камня секция должна быть пустой")
	}
	if _, data := chunk.Get(local); data != 0 {
		t.Errorf("data должна сброситься, получено %d", data)
	}
}

func newTestGrid() *Grid {
	reg := block.NewRegistry()
	implementations.RegisterStatic(reg)
	return NewGrid(0, 127, reg)
}

func TestGridBoundsAndSections(t *testing.T) {
	g := newTestGrid()

	if _, ok := g.Set(vec.Vec3{Y: 128}, block.StoneBlockID, 0); ok {
		t.Error("Запись выше max_y должна отклоняться")
	}
	if _, ok := g.Set(vec.Vec3{Y: -1}, block.StoneBlockID, 0); ok {
		t.Error("Запись ниже min_y должна отклоняться")
	}
	if id, _ := g.Get(vec.Vec3{Y: 500}); id != block.AirBlockID {
		t.Errorf("Чтение вне границ должно давать воздух, получено %d", id)
	}

	pos := vec.Vec3{X: -17, Y: 40, Z: 33}
	if _, ok := g.Set(pos, block.DirtBlockID, 0); !ok {
		t.Fatal("Запись внутри границ должна проходить")
	}
	if g.ChunkCount() != 1 {
		t.Errorf("Ожидалась одна секция, получено %d", g.ChunkCount())
	}
	if id, _ := g.Get(pos); id != block.DirtBlockID {
		t.Errorf("Ожидалась земля, получено %d", id)
	}

	g.Set(pos, block.AirBlockID, 0)
	if g.ChunkCount() != 0 {
		t.Errorf("Пустая секция должна выгружаться, секций: %d", g.ChunkCount())
	}
}

func TestGridHeightsAndLight(t *testing.T) {
	g := newTestGrid()
	col := vec.Vec2{X: 2, Y: 3}

	g.Set(col.At(10), block.DirtBlockID, 0)
	g.Set(col.At(20), block.StoneBlockID, 0)
	g.Set(col.At(25), block.WaterBlockID, 0)

	if h, ok := g.HighestOpaque(col); !ok || h != 20 {
		t.Errorf("Ожидалась высота 20, получено %d (%v)", h, ok)
	}
	if got := g.Light(col.At(21), 13); got != 13 {
		t.Errorf("Над камнем небесный свет 13, получено %d", got)
	}
	if got := g.Light(col.At(15), 13); got != 0 {
		t.Errorf("Под камнем темно, получено %d", got)
	}

	g.SetBlockLight(col.At(15), 20)
	if got := g.Light(col.At(15), 13); got != MaxLight {
		t.Errorf("Источник света ограничен %d, получено %d", MaxLight, got)
	}
	g.SetBlockLight(col.At(15), 0)

	g.Set(col.At(20), block.AirBlockID, 0)
	if h, ok := g.HighestOpaque(col); !ok || h != 10 {
		t.Errorf("После удаления камня высота 10, получено %d (%v)", h, ok)
	}
	if got := g.Light(col.At(15), 9); got != 9 {
		t.Errorf("Клетка снова под небом, получено %d", got)
	}

	g.Set(col.At(10), block.AirBlockID, 0)
	if _, ok := g.HighestOpaque(col); ok {
		t.Error("Столбец без непрозрачных блоков не должен иметь высоты")
	}
}
