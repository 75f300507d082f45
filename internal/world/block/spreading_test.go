package block

import (
	"testing"

	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = vec.Vec3{X: 0, Y: 64, Z: 0}

func newTestGrass(t *testing.T, replaced BlockID, minLight int, strategy SpreadingStrategy) (*SpreadingMaterial, *mockBlockAPI) {
	t.Helper()
	m, err := NewSpreadingMaterial(GrassBlockID, "Grass", strategy,
		WithReplacedMaterial(replaced),
		WithMinimumLightToSpread(minLight),
	)
	require.NoError(t, err)

	registry := NewRegistry()
	require.NoError(t, registry.RegisterSpreading(m))

	api := newMockBlockAPI(registry)
	api.age = 100
	api.place(origin, GrassBlockID)
	return m, api
}

// wake имитирует хост: снимает ожидающее пробуждение и вызывает обновление
func wake(m *SpreadingMaterial, api *mockBlockAPI, rnd RandomSource) UpdateResult {
	tick := api.scheduled[origin]
	delete(api.scheduled, origin)
	return m.OnDynamicUpdate(api, rnd, origin, tick, api.GetBlockData(origin))
}

func TestNewSpreadingMaterial_Validation(t *testing.T) {
	strategy := &testStrategy{interval: 10}

	_, err := NewSpreadingMaterial(GrassBlockID, "Grass", strategy)
	assert.ErrorIs(t, err, ErrNoReplacedMaterial, "без заменяемого материала - ошибка конфигурации")

	_, err = NewSpreadingMaterial(GrassBlockID, "Grass", strategy, WithReplacedMaterial(GrassBlockID))
	assert.ErrorIs(t, err, ErrSelfReplacement)

	_, err = NewSpreadingMaterial(GrassBlockID, "Grass", nil, WithReplacedMaterial(DirtBlockID))
	assert.ErrorIs(t, err, ErrNilStrategy)

	_, err = NewSpreadingMaterial(GrassBlockID, "Grass", strategy, WithReplacedMaterial(DirtBlockID), WithSpreadRange(nil))
	assert.ErrorIs(t, err, ErrInvalidRadius)

	m, err := NewSpreadingMaterial(GrassBlockID, "Grass", strategy, WithReplacedMaterial(DirtBlockID))
	require.NoError(t, err)
	assert.Equal(t, DirtBlockID, m.ReplacedMaterial())
	assert.Equal(t, DefaultSpreadRange, m.SpreadRange())
	assert.Equal(t, 0, m.MinimumLightToSpread())
}

func TestSpreadingMaterial_OnPlace(t *testing.T) {
	m, api := newTestGrass(t, DirtBlockID, 9, &testStrategy{interval: 40})

	m.OnPlace(api, origin, 7)

	assert.Equal(t, int64(47), api.scheduled[origin], "пробуждение через SpreadInterval от now")
}

func TestSpreadingMaterial_DecayPreemptsSpread(t *testing.T) {
	strategy := &testStrategy{interval: 20, decayAt: map[vec.Vec3]bool{origin: true}}
	m, api := newTestGrass(t, WaterBlockID, 0, strategy)

	// Условия распространения выполнены: рядом вода, света достаточно
	neighbor := origin.Add(vec.East)
	api.place(neighbor, WaterBlockID)
	m.OnPlace(api, origin, api.age)

	result := wake(m, api, &constSource{value: 0})

	assert.Equal(t, OutcomeDecayed, result.Outcome)
	assert.Equal(t, WaterBlockID, api.GetBlockID(origin), "клетка должна распасться в воду")
	assert.Equal(t, CauseDecay, api.causes[origin])
	assert.False(t, api.HasPendingUpdate(origin), "после распада пробуждений не остаётся")
	assert.Equal(t, WaterBlockID, api.GetBlockID(neighbor), "сосед не трогается")
	assert.Equal(t, 1, api.writes)
}

func TestSpreadingMaterial_NoReplacedNeighborsGoesDormant(t *testing.T) {
	m, api := newTestGrass(t, DirtBlockID, 0, &testStrategy{interval: 20})
	api.place(origin.Add(vec.Down), StoneBlockID)
	api.place(origin.Add(vec.North), SandBlockID)

	src := &constSource{value: 0}
	result := wake(m, api, src)

	assert.Equal(t, OutcomeDormant, result.Outcome)
	assert.Zero(t, result.Converted)
	assert.Zero(t, api.writes, "соседи не изменяются")
	assert.False(t, api.HasPendingUpdate(origin), "клетка засыпает")
	assert.Zero(t, src.draws)
}

func TestSpreadingMaterial_MaximalDrawConvertsEveryEligibleNeighbor(t *testing.T) {
	blocked := origin.Add(vec.Vec3{X: 1, Y: 1, Z: 0})
	strategy := &testStrategy{interval: 30, decayAt: map[vec.Vec3]bool{blocked: true}}
	m, api := newTestGrass(t, DirtBlockID, 9, strategy)

	eligible := []vec.Vec3{
		origin.Add(vec.East),
		origin.Add(vec.West),
		origin.Add(vec.Down),
		origin.Add(vec.Vec3{X: 2, Y: 2, Z: 2}),
		origin.Add(vec.Vec3{X: 0, Y: 0, Z: -2}),
	}
	for _, pos := range eligible {
		api.place(pos, DirtBlockID)
	}
	api.place(blocked, DirtBlockID)
	outOfRange := origin.Add(vec.Vec3{X: 3, Y: 0, Z: 0})
	api.place(outOfRange, DirtBlockID)

	result := wake(m, api, &constSource{value: 0})

	assert.Equal(t, OutcomeRescheduled, result.Outcome)
	assert.Equal(t, len(eligible), result.Converted)
	for _, pos := range eligible {
		assert.Equal(t, GrassBlockID, api.GetBlockID(pos), "сосед %v должен стать травой", pos)
		assert.Equal(t, CauseSpread, api.causes[pos])
		assert.Equal(t, api.age+30, api.scheduled[pos], "захваченный сосед взводится через OnPlace")
	}
	assert.Equal(t, DirtBlockID, api.GetBlockID(blocked), "клетка, которая сразу распалась бы, не захватывается")
	assert.Equal(t, DirtBlockID, api.GetBlockID(outOfRange))
	assert.Equal(t, api.age+30, api.scheduled[origin])
}

func TestSpreadingMaterial_LightGateBlocksConversionButReschedules(t *testing.T) {
	m, api := newTestGrass(t, DirtBlockID, 9, &testStrategy{interval: 25})
	api.light[origin.Add(vec.Up)] = 8
	neighbor := origin.Add(vec.South)
	api.place(neighbor, DirtBlockID)

	for _, value := range []int{0, 1, 2, 3} {
		src := &constSource{value: value}
		m.OnPlace(api, origin, api.age)
		result := wake(m, api, src)

		assert.Equal(t, OutcomeRescheduled, result.Outcome, "сосед подходит по материалу")
		assert.Equal(t, DirtBlockID, api.GetBlockID(neighbor), "световой порог не пройден")
		assert.Equal(t, api.age+25, api.scheduled[origin])
		assert.Zero(t, src.draws, "без света случайные числа не тратятся")
	}
}

func TestSpreadingMaterial_FailedDrawKeepsNeighbor(t *testing.T) {
	m, api := newTestGrass(t, DirtBlockID, 0, &testStrategy{interval: 5})
	neighbor := origin.Add(vec.East)
	api.place(neighbor, DirtBlockID)

	result := wake(m, api, &constSource{value: 3})

	assert.Equal(t, OutcomeRescheduled, result.Outcome)
	assert.Equal(t, DirtBlockID, api.GetBlockID(neighbor))
	assert.Zero(t, result.Converted)
}

func TestSpreadingMaterial_IndependentDraws(t *testing.T) {
	m, api := newTestGrass(t, DirtBlockID, 0, &testStrategy{interval: 5})
	for _, face := range vec.Faces {
		api.place(origin.Add(face), DirtBlockID)
	}

	result := wake(m, api, &seqSource{values: []int{0, 1}})

	assert.Equal(t, 3, result.Converted, "каждый сосед - отдельное испытание")
	converted := 0
	for _, face := range vec.Faces {
		if api.GetBlockID(origin.Add(face)) == GrassBlockID {
			converted++
		}
	}
	assert.Equal(t, 3, converted)
}

func TestSpreadingMaterial_StaleWakeupIsNoop(t *testing.T) {
	m, api := newTestGrass(t, DirtBlockID, 0, &testStrategy{interval: 5})
	api.place(origin, StoneBlockID)
	api.place(origin.Add(vec.East), DirtBlockID)

	src := &constSource{value: 0}
	result := m.OnDynamicUpdate(api, src, origin, api.age, 0)

	assert.Equal(t, OutcomeStale, result.Outcome)
	assert.Zero(t, api.writes)
	assert.False(t, api.HasPendingUpdate(origin))
	assert.Zero(t, src.draws)
}

func TestSpreadingMaterial_CanSpreadFromIsIdempotent(t *testing.T) {
	m, api := newTestGrass(t, DirtBlockID, 9, &testStrategy{interval: 5})

	api.light[origin.Add(vec.Up)] = 9
	first := m.CanSpreadFrom(api, origin)
	second := m.CanSpreadFrom(api, origin)
	assert.True(t, first, "порог включительный")
	assert.Equal(t, first, second)

	api.light[origin.Add(vec.Up)] = 3
	assert.False(t, m.CanSpreadFrom(api, origin))
	assert.False(t, m.CanSpreadFrom(api, origin))
	assert.Zero(t, api.writes)
}

type refusingStrategy struct{ testStrategy }

func (s *refusingStrategy) CanSpreadTo(api BlockAPI, from, to vec.Vec3) bool { return false }

func TestSpreadingMaterial_SpreadTargetFilter(t *testing.T) {
	m, api := newTestGrass(t, DirtBlockID, 0, &refusingStrategy{testStrategy{interval: 5}})
	api.place(origin.Add(vec.East), DirtBlockID)

	result := wake(m, api, &constSource{value: 0})

	assert.Equal(t, OutcomeRescheduled, result.Outcome)
	assert.Zero(t, result.Converted)
	assert.Equal(t, DirtBlockID, api.GetBlockID(origin.Add(vec.East)))
}

func TestSpreadingMaterial_OnNeighborUpdate(t *testing.T) {
	m, api := newTestGrass(t, DirtBlockID, 0, &testStrategy{interval: 50})

	// Спящая клетка взводится
	m.OnNeighborUpdate(api, origin, 10)
	assert.Equal(t, int64(60), api.scheduled[origin])

	// Уже назначенное пробуждение не переносится
	m.OnNeighborUpdate(api, origin, 20)
	assert.Equal(t, int64(60), api.scheduled[origin])

	// Чужой материал не взводится
	other := origin.Add(vec.East)
	api.place(other, StoneBlockID)
	m.OnNeighborUpdate(api, other, 20)
	assert.False(t, api.HasPendingUpdate(other))
}

func TestRegistry(t *testing.T) {
	m, err := NewSpreadingMaterial(MyceliumBlockID, "Mycelium", &testStrategy{interval: 1}, WithReplacedMaterial(DirtBlockID))
	require.NoError(t, err)

	reg := NewRegistry()
	require.NoError(t, reg.RegisterSpreading(m))
	assert.ErrorIs(t, reg.RegisterSpreading(m), ErrDuplicateMaterial)

	dyn, ok := reg.Dynamic(MyceliumBlockID)
	require.True(t, ok)
	assert.Equal(t, "Mycelium", dyn.Name())

	id, ok := reg.Lookup("Mycelium")
	require.True(t, ok)
	assert.Equal(t, MyceliumBlockID, id)
	assert.Equal(t, "#999", reg.Name(999))

	assert.True(t, reg.IsTransparent(AirBlockID))
	assert.False(t, reg.IsTransparent(MyceliumBlockID))
	assert.False(t, reg.IsLiquid(MyceliumBlockID))

	clone := reg.Clone()
	clone.Register(StoneBlockID, m)
	_, ok = reg.Get(StoneBlockID)
	assert.False(t, ok, "клон не должен влиять на исходный реестр")
}
