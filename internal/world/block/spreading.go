package block

import (
	"fmt"

	"github.com/annel0/voxel-spread/internal/vec"
)

// spreadChance - знаменатель вероятности превращения соседа за пробуждение (1/4)
const spreadChance = 4

// DefaultSpreadRange - окрестность по умолчанию: куб радиуса 2
var DefaultSpreadRange = MustCubicEffectRange(2)

// SpreadingStrategy задаёт поведение конкретного материала.
type SpreadingStrategy interface {
	// CanDecayAt проверяет окружение клетки. Не должна смотреть на материал
	// самой клетки: на момент вызова там гарантированно этот материал.
	CanDecayAt(api BlockAPI, pos vec.Vec3) bool

	// SpreadInterval возвращает число тиков до следующего пробуждения
	SpreadInterval(api BlockAPI, pos vec.Vec3) int64
}

// SpreadTargetFilter позволяет стратегии переопределить CanSpreadTo
type SpreadTargetFilter interface {
	CanSpreadTo(api BlockAPI, from, to vec.Vec3) bool
}

// SpreadingMaterial - твёрдый материал, который по расписанию либо распадается
// в заменяемый материал, либо превращает соседние клетки с заменяемым материалом
// в себя. Экземпляр неизменяем и разделяется всеми клетками с этим материалом;
// собственного состояния у клетки нет, кроме ожидающего пробуждения в очереди.
type SpreadingMaterial struct {
	id          BlockID
	name        string
	replaced    BlockID
	hasReplaced bool
	spreadRange EffectRange
	offsets     []vec.Vec3
	minLight    int
	strategy    SpreadingStrategy
}

// SpreadingOption настраивает материал при создании
type SpreadingOption func(*SpreadingMaterial) error

// WithReplacedMaterial задаёт материал, в который распадается этот
// и который он захватывает при распространении
func WithReplacedMaterial(id BlockID) SpreadingOption {
	return func(m *SpreadingMaterial) error {
		m.replaced = id
		m.hasReplaced = true
		return nil
	}
}

// WithSpreadRange задаёт окрестность распространения
func WithSpreadRange(r EffectRange) SpreadingOption {
	return func(m *SpreadingMaterial) error {
		if r == nil {
			return fmt.Errorf("%w: nil range", ErrInvalidRadius)
		}
		m.spreadRange = r
		return nil
	}
}

// WithMinimumLightToSpread задаёт порог освещённости над клеткой
func WithMinimumLightToSpread(level int) SpreadingOption {
	return func(m *SpreadingMaterial) error {
		m.minLight = level
		return nil
	}
}

// NewSpreadingMaterial создаёт и проверяет материал. Отсутствие заменяемого
// материала - ошибка конфигурации: распад без цели нарушил бы контракт.
func NewSpreadingMaterial(id BlockID, name string, strategy SpreadingStrategy, opts ...SpreadingOption) (*SpreadingMaterial, error) {
	if strategy == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilStrategy, name)
	}
	m := &SpreadingMaterial{
		id:          id,
		name:        name,
		spreadRange: DefaultSpreadRange,
		strategy:    strategy,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("material %s: %w", name, err)
		}
	}
	if !m.hasReplaced {
		return nil, fmt.Errorf("%w: %s", ErrNoReplacedMaterial, name)
	}
	if m.replaced == m.id {
		return nil, fmt.Errorf("%w: %s", ErrSelfReplacement, name)
	}
	m.offsets = m.spreadRange.Neighbors()
	for _, off := range m.offsets {
		if off.Zero() {
			return nil, fmt.Errorf("material %s: %w", name, ErrZeroOffset)
		}
	}
	return m, nil
}

// ID возвращает идентификатор материала
func (m *SpreadingMaterial) ID() BlockID { return m.id }

// Name возвращает имя материала
func (m *SpreadingMaterial) Name() string { return m.name }

// ReplacedMaterial возвращает заменяемый материал
func (m *SpreadingMaterial) ReplacedMaterial() BlockID { return m.replaced }

// SpreadRange возвращает окрестность распространения
func (m *SpreadingMaterial) SpreadRange() EffectRange { return m.spreadRange }

// MinimumLightToSpread возвращает порог освещённости
func (m *SpreadingMaterial) MinimumLightToSpread() int { return m.minLight }

// CanDecayAt делегирует стратегии
func (m *SpreadingMaterial) CanDecayAt(api BlockAPI, pos vec.Vec3) bool {
	return m.strategy.CanDecayAt(api, pos)
}

// CanSpreadFrom: свет в клетке над pos не ниже порога. Только чтение мира.
func (m *SpreadingMaterial) CanSpreadFrom(api BlockAPI, pos vec.Vec3) bool {
	return api.GetLight(pos.Add(vec.Up)) >= m.minLight
}

// CanSpreadTo по умолчанию запрещает захват клетки, которая сразу бы распалась
func (m *SpreadingMaterial) CanSpreadTo(api BlockAPI, from, to vec.Vec3) bool {
	if f, ok := m.strategy.(SpreadTargetFilter); ok {
		return f.CanSpreadTo(api, from, to)
	}
	return !m.strategy.CanDecayAt(api, to)
}

// OnPlace назначает первое пробуждение
func (m *SpreadingMaterial) OnPlace(api BlockAPI, pos vec.Vec3, now int64) {
	api.ScheduleUpdate(pos, now+m.strategy.SpreadInterval(api, pos))
}

// OnNeighborUpdate повторно взводит спящую клетку. Уже назначенное
// пробуждение не переносится.
func (m *SpreadingMaterial) OnNeighborUpdate(api BlockAPI, pos vec.Vec3, now int64) {
	if api.GetBlockID(pos) != m.id || api.HasPendingUpdate(pos) {
		return
	}
	m.OnPlace(api, pos, now)
}

// OnDynamicUpdate выполняет одно пробуждение: распад имеет приоритет,
// затем попытка распространения и решение о следующем пробуждении.
func (m *SpreadingMaterial) OnDynamicUpdate(api BlockAPI, rnd RandomSource, pos vec.Vec3, scheduledTick int64, data uint16) UpdateResult {
	if api.GetBlockID(pos) != m.id {
		return UpdateResult{Outcome: OutcomeStale}
	}

	nextUpdate := api.WorldAge() + m.strategy.SpreadInterval(api, pos)

	if m.CanDecayAt(api, pos) {
		api.SetBlock(pos, m.replaced, 0, CauseDecay)
		return UpdateResult{Outcome: OutcomeDecayed}
	}

	converted, couldSpread := m.spread(api, rnd, pos, m.CanSpreadFrom(api, pos))
	if !couldSpread {
		return UpdateResult{Outcome: OutcomeDormant, Converted: converted}
	}
	api.ScheduleUpdate(pos, nextUpdate)
	return UpdateResult{Outcome: OutcomeRescheduled, Converted: converted}
}

// spread обходит окрестность. couldSpread выставляется для любого соседа
// с заменяемым материалом, даже если световой порог не пройден.
func (m *SpreadingMaterial) spread(api BlockAPI, rnd RandomSource, pos vec.Vec3, allowed bool) (converted int, couldSpread bool) {
	for _, off := range m.offsets {
		around := pos.Add(off)
		if api.GetBlockID(around) != m.replaced {
			continue
		}
		couldSpread = true
		if !allowed || rnd.Intn(spreadChance) != 0 {
			continue
		}
		if !m.CanSpreadTo(api, pos, around) {
			continue
		}
		if api.SetBlock(around, m.id, 0, CauseSpread) {
			converted++
		}
	}
	return converted, couldSpread
}
