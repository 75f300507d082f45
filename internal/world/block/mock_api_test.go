package block

import (
	"github.com/annel0/voxel-spread/internal/vec"
)

// mockBlockAPI реализует BlockAPI для тестирования. Запись материала снимает
// ожидающее пробуждение клетки и вызывает OnPlace динамического материала,
// как это делает хост.
type mockBlockAPI struct {
	registry     *Registry
	blocks       map[vec.Vec3]BlockID
	data         map[vec.Vec3]uint16
	light        map[vec.Vec3]int
	defaultLight int
	age          int64
	scheduled    map[vec.Vec3]int64
	causes       map[vec.Vec3]Cause
	writes       int
}

func newMockBlockAPI(registry *Registry) *mockBlockAPI {
	if registry == nil {
		registry = NewRegistry()
	}
	return &mockBlockAPI{
		registry:     registry,
		blocks:       make(map[vec.Vec3]BlockID),
		data:         make(map[vec.Vec3]uint16),
		light:        make(map[vec.Vec3]int),
		defaultLight: 15,
		scheduled:    make(map[vec.Vec3]int64),
		causes:       make(map[vec.Vec3]Cause),
	}
}

func (m *mockBlockAPI) GetBlockID(pos vec.Vec3) BlockID {
	if id, exists := m.blocks[pos]; exists {
		return id
	}
	return AirBlockID
}

func (m *mockBlockAPI) GetBlockData(pos vec.Vec3) uint16 {
	return m.data[pos]
}

func (m *mockBlockAPI) SetBlock(pos vec.Vec3, id BlockID, data uint16, cause Cause) bool {
	m.writes++
	m.blocks[pos] = id
	m.data[pos] = data
	m.causes[pos] = cause
	delete(m.scheduled, pos)
	if dyn, ok := m.registry.Dynamic(id); ok {
		dyn.OnPlace(m, pos, m.age)
	}
	return true
}

func (m *mockBlockAPI) GetLight(pos vec.Vec3) int {
	if l, ok := m.light[pos]; ok {
		return l
	}
	return m.defaultLight
}

func (m *mockBlockAPI) WorldAge() int64 {
	return m.age
}

func (m *mockBlockAPI) ScheduleUpdate(pos vec.Vec3, tick int64) {
	m.scheduled[pos] = tick
}

func (m *mockBlockAPI) HasPendingUpdate(pos vec.Vec3) bool {
	_, ok := m.scheduled[pos]
	return ok
}

// place записывает материал без вызова хуков и без учёта записей
func (m *mockBlockAPI) place(pos vec.Vec3, id BlockID) {
	m.blocks[pos] = id
}

// testStrategy - стратегия с настраиваемым предикатом распада
type testStrategy struct {
	decayAt  map[vec.Vec3]bool
	interval int64
}

func (s *testStrategy) CanDecayAt(api BlockAPI, pos vec.Vec3) bool {
	return s.decayAt[pos]
}

func (s *testStrategy) SpreadInterval(api BlockAPI, pos vec.Vec3) int64 {
	return s.interval
}

// constSource всегда возвращает одно значение и считает вызовы
type constSource struct {
	value int
	draws int
}

func (s *constSource) Intn(n int) int {
	s.draws++
	return s.value % n
}

// seqSource возвращает значения по кругу
type seqSource struct {
	values []int
	i      int
}

func (s *seqSource) Intn(n int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v % n
}
