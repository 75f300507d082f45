package implementations

import (
	"fmt"
	"sort"

	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/annel0/voxel-spread/internal/world/block"
)

// StrategyParams - параметры стратегии из конфигурации
type StrategyParams struct {
	Interval int64 // Базовый интервал между пробуждениями в тиках
	Jitter   int64 // Максимальная добавка к интервалу, зависит от позиции
}

// StrategyFactory создаёт стратегию для реестра конкретного мира
type StrategyFactory func(reg *block.Registry, params StrategyParams) block.SpreadingStrategy

var strategies = map[string]StrategyFactory{
	"grass":      newGrassStrategy,
	"mycelium":   newMyceliumStrategy,
	"persistent": newPersistentStrategy,
}

// NewStrategy находит фабрику по имени из конфигурации
func NewStrategy(name string, reg *block.Registry, params StrategyParams) (block.SpreadingStrategy, error) {
	factory, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: неизвестная стратегия %q", block.ErrNilStrategy, name)
	}
	if params.Interval < 1 {
		return nil, fmt.Errorf("стратегия %s: интервал должен быть положительным, получено %d", name, params.Interval)
	}
	if params.Jitter < 0 {
		return nil, fmt.Errorf("стратегия %s: отрицательный разброс %d", name, params.Jitter)
	}
	return factory(reg, params), nil
}

// StrategyNames возвращает отсортированный список известных стратегий
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// interval - базовый интервал плюс детерминированная добавка по позиции,
// чтобы соседние клетки не просыпались в один тик.
type interval struct {
	base   int64
	jitter int64
}

func (i interval) at(pos vec.Vec3) int64 {
	if i.jitter == 0 {
		return i.base
	}
	h := uint64(int64(pos.X))*0x9E3779B97F4A7C15 ^ uint64(int64(pos.Y))*0xC2B2AE3D27D4EB4F ^ uint64(int64(pos.Z))*0x165667B19E3779F9
	h ^= h >> 29
	return i.base + int64(h%uint64(i.jitter+1))
}

// coverStrategy - покровный материал поверх земли: распадается, когда
// сверху непрозрачный блок или жидкость.
type coverStrategy struct {
	reg *block.Registry
	interval
}

func (s *coverStrategy) CanDecayAt(api block.BlockAPI, pos vec.Vec3) bool {
	above := api.GetBlockID(pos.Add(vec.Up))
	return !s.reg.IsTransparent(above) || s.reg.IsLiquid(above)
}

func (s *coverStrategy) SpreadInterval(api block.BlockAPI, pos vec.Vec3) int64 {
	return s.at(pos)
}

func newGrassStrategy(reg *block.Registry, params StrategyParams) block.SpreadingStrategy {
	return &coverStrategy{reg: reg, interval: interval{base: params.Interval, jitter: params.Jitter}}
}

// myceliumStrategy распадается как трава, но не захватывает землю,
// граничащую с водой по горизонтали.
type myceliumStrategy struct {
	coverStrategy
}

func newMyceliumStrategy(reg *block.Registry, params StrategyParams) block.SpreadingStrategy {
	return &myceliumStrategy{coverStrategy{reg: reg, interval: interval{base: params.Interval, jitter: params.Jitter}}}
}

var horizontal = [4]vec.Vec3{vec.North, vec.South, vec.East, vec.West}

func (s *myceliumStrategy) CanSpreadTo(api block.BlockAPI, from, to vec.Vec3) bool {
	if s.CanDecayAt(api, to) {
		return false
	}
	for _, dir := range horizontal {
		if s.reg.IsLiquid(api.GetBlockID(to.Add(dir))) {
			return false
		}
	}
	return true
}

// persistentStrategy никогда не распадается
type persistentStrategy struct {
	interval
}

func newPersistentStrategy(_ *block.Registry, params StrategyParams) block.SpreadingStrategy {
	return &persistentStrategy{interval{base: params.Interval, jitter: params.Jitter}}
}

func (s *persistentStrategy) CanDecayAt(block.BlockAPI, vec.Vec3) bool { return false }

func (s *persistentStrategy) SpreadInterval(api block.BlockAPI, pos vec.Vec3) int64 {
	return s.at(pos)
}
