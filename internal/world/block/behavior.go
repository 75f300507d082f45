package block

import (
	"github.com/annel0/voxel-spread/internal/vec"
)

// BlockBehavior определяет поведение материала
type BlockBehavior interface {
	ID() BlockID
	Name() string
}

// DynamicBehavior - материал с запланированными обновлениями
type DynamicBehavior interface {
	BlockBehavior

	// OnPlace вызывается, когда клетка получила этот материал
	OnPlace(api BlockAPI, pos vec.Vec3, now int64)

	// OnDynamicUpdate вызывается хостом, когда наступил тик пробуждения клетки
	OnDynamicUpdate(api BlockAPI, rnd RandomSource, pos vec.Vec3, scheduledTick int64, data uint16) UpdateResult
}

// NeighborAware получает уведомление об изменении соседа по грани
type NeighborAware interface {
	OnNeighborUpdate(api BlockAPI, pos vec.Vec3, now int64)
}

// Transparent - материал, пропускающий свет
type Transparent interface {
	IsTransparent() bool
}

// Liquid - жидкий материал
type Liquid interface {
	IsLiquid() bool
}

// Outcome - итог одного пробуждения
type Outcome uint8

const (
	OutcomeStale       Outcome = iota // Клетка уже содержит другой материал
	OutcomeDecayed                    // Материал распался
	OutcomeRescheduled                // Есть куда распространяться, пробуждение назначено
	OutcomeDormant                    // Распространяться некуда, ждём внешнего пробуждения
)

// String возвращает строковое представление итога
func (o Outcome) String() string {
	switch o {
	case OutcomeStale:
		return "stale"
	case OutcomeDecayed:
		return "decayed"
	case OutcomeRescheduled:
		return "rescheduled"
	case OutcomeDormant:
		return "dormant"
	default:
		return "unknown"
	}
}

// UpdateResult описывает результат пробуждения
type UpdateResult struct {
	Outcome   Outcome
	Converted int // Сколько соседей превращено в этот материал
}
