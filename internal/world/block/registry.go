package block

import (
	"fmt"
	"sync"
)

// BlockID представляет идентификатор материала
type BlockID uint16

// Константы ID блоков
const (
	AirBlockID      BlockID = iota // 0
	StoneBlockID                   // 1
	GrassBlockID                   // 2
	WaterBlockID                   // 3
	SandBlockID                    // 4
	DirtBlockID                    // 5
	MyceliumBlockID                // 6
)

// Registry хранит поведение материалов по ID. Статические материалы
// регистрируются при импорте пакета implementations в реестр по умолчанию,
// распространяющиеся материалы добавляются из конфигурации в реестр мира.
type Registry struct {
	mu        sync.RWMutex
	behaviors map[BlockID]BlockBehavior
}

// NewRegistry создаёт пустой реестр
func NewRegistry() *Registry {
	return &Registry{behaviors: make(map[BlockID]BlockBehavior)}
}

var defaultRegistry = NewRegistry()

// Default возвращает глобальный реестр статических материалов
func Default() *Registry {
	return defaultRegistry
}

// Register добавляет или заменяет поведение блока
func (r *Registry) Register(id BlockID, behavior BlockBehavior) {
	r.mu.Lock()
	r.behaviors[id] = behavior
	r.mu.Unlock()
}

// RegisterSpreading добавляет распространяющийся материал. Повторная
// регистрация динамического материала с тем же ID считается ошибкой конфигурации.
func (r *Registry) RegisterSpreading(m *SpreadingMaterial) error {
	if m == nil {
		return fmt.Errorf("%w: nil material", ErrNilStrategy)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.behaviors[m.ID()]; ok {
		if _, dynamic := existing.(DynamicBehavior); dynamic {
			return fmt.Errorf("%w: %s (id=%d)", ErrDuplicateMaterial, m.Name(), m.ID())
		}
	}
	r.behaviors[m.ID()] = m
	return nil
}

// Get возвращает поведение для указанного ID
func (r *Registry) Get(id BlockID) (BlockBehavior, bool) {
	r.mu.RLock()
	behavior, exists := r.behaviors[id]
	r.mu.RUnlock()
	return behavior, exists
}

// Dynamic возвращает поведение с запланированными обновлениями, если оно есть
func (r *Registry) Dynamic(id BlockID) (DynamicBehavior, bool) {
	behavior, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	dyn, ok := behavior.(DynamicBehavior)
	return dyn, ok
}

// Lookup ищет материал по точному имени
func (r *Registry) Lookup(name string) (BlockID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, behavior := range r.behaviors {
		if behavior.Name() == name {
			return id, true
		}
	}
	return 0, false
}

// Name возвращает имя материала или "#<id>" для незарегистрированных
func (r *Registry) Name(id BlockID) string {
	if behavior, ok := r.Get(id); ok {
		return behavior.Name()
	}
	return fmt.Sprintf("#%d", id)
}

// IsTransparent сообщает, пропускает ли материал свет. Незарегистрированные
// материалы считаются непрозрачными, воздух всегда прозрачен.
func (r *Registry) IsTransparent(id BlockID) bool {
	if id == AirBlockID {
		return true
	}
	behavior, ok := r.Get(id)
	if !ok {
		return false
	}
	t, ok := behavior.(Transparent)
	return ok && t.IsTransparent()
}

// IsLiquid сообщает, является ли материал жидкостью
func (r *Registry) IsLiquid(id BlockID) bool {
	behavior, ok := r.Get(id)
	if !ok {
		return false
	}
	l, ok := behavior.(Liquid)
	return ok && l.IsLiquid()
}

// Clone возвращает копию реестра. Мир клонирует глобальный реестр,
// чтобы материалы из конфигурации не протекали между экземплярами.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewRegistry()
	for id, behavior := range r.behaviors {
		c.behaviors[id] = behavior
	}
	return c
}
