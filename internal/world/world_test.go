package world

import (
	"context"
	"testing"

	"github.com/annel0/voxel-spread/internal/changefeed"
	"github.com/annel0/voxel-spread/internal/config"
	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/annel0/voxel-spread/internal/world/block"
	"github.com/annel0/voxel-spread/internal/world/block/implementations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var origin = vec.Vec3{X: 0, Y: 64, Z: 0}

type zeroSource struct{ draws int }

func (s *zeroSource) Intn(int) int {
	s.draws++
	return 0
}

type recordingSink struct{ changes []changefeed.Change }

func (s *recordingSink) Add(ch changefeed.Change) { s.changes = append(s.changes, ch) }

// newTestWorld создаёт мир с травой (интервал 10, порог света 9),
// распадающейся в replaced
func newTestWorld(t *testing.T, replaced block.BlockID, rearm bool, opts ...Option) (*WorldManager, *zeroSource) {
	t.Helper()
	reg := block.NewRegistry()
	implementations.RegisterStatic(reg)

	strategy, err := implementations.NewStrategy("grass", reg, implementations.StrategyParams{Interval: 10})
	require.NoError(t, err)
	grass, err := block.NewSpreadingMaterial(block.GrassBlockID, "Grass", strategy,
		block.WithReplacedMaterial(replaced),
		block.WithMinimumLightToSpread(9),
	)
	require.NoError(t, err)
	require.NoError(t, reg.RegisterSpreading(grass))

	src := &zeroSource{}
	cfg := config.WorldConfig{Seed: 1, TickRate: 20, MinY: 0, MaxY: 127, NeighborRearm: rearm}
	opts = append([]Option{WithRegistry(reg), WithRandomSource(src)}, opts...)
	return NewWorldManager(cfg, opts...), src
}

func tickN(wm *WorldManager, n int) TickReport {
	var total TickReport
	for i := 0; i < n; i++ {
		r := wm.Tick(context.Background())
		total.Age = r.Age
		total.Wakeups += r.Wakeups
		total.Converted += r.Converted
		total.Decayed += r.Decayed
		total.Dormant += r.Dormant
		total.Rescheduled += r.Rescheduled
		total.Stale += r.Stale
	}
	return total
}

func TestWorldManager_PlaceArmsWakeup(t *testing.T) {
	wm, _ := newTestWorld(t, block.DirtBlockID, false)

	require.True(t, wm.SetBlock(origin, block.GrassBlockID, 0))
	tick, ok := wm.PendingUpdate(origin)
	require.True(t, ok)
	assert.Equal(t, int64(10), tick)

	// Перезапись снимает пробуждение, статическому материалу оно не нужно
	wm.SetBlock(origin, block.StoneBlockID, 0)
	_, ok = wm.PendingUpdate(origin)
	assert.False(t, ok)

	report := tickN(wm, 20)
	assert.Zero(t, report.Wakeups)
}

func TestWorldManager_DecayToWaterLeavesNoPending(t *testing.T) {
	wm, src := newTestWorld(t, block.WaterBlockID, false)

	wm.SetBlock(origin, block.GrassBlockID, 0)
	wm.SetBlock(origin.Add(vec.Up), block.StoneBlockID, 0)
	wm.SetBlock(origin.Add(vec.East), block.WaterBlockID, 0)

	report := tickN(wm, 10)

	assert.Equal(t, 1, report.Decayed)
	id, _ := wm.GetBlock(origin)
	assert.Equal(t, block.WaterBlockID, id)
	_, ok := wm.PendingUpdate(origin)
	assert.False(t, ok, "распавшаяся клетка не ждёт пробуждения")
	assert.Zero(t, src.draws)
}

func TestWorldManager_ConvertsEligibleNeighbors(t *testing.T) {
	wm, _ := newTestWorld(t, block.DirtBlockID, false)

	eligible := []vec.Vec3{
		origin.Add(vec.East),
		origin.Add(vec.Vec3{X: -1, Y: -1, Z: 0}),
		origin.Add(vec.Vec3{X: 2, Y: 0, Z: 2}),
		origin.Add(vec.Vec3{X: 0, Y: 0, Z: -2}),
	}
	for _, pos := range eligible {
		wm.SetBlock(pos, block.DirtBlockID, 0)
	}
	far := origin.Add(vec.Vec3{X: 3})
	wm.SetBlock(far, block.DirtBlockID, 0)
	wm.SetBlock(origin, block.GrassBlockID, 0)

	report := tickN(wm, 10)

	assert.Equal(t, 1, report.Wakeups)
	assert.Equal(t, 1, report.Rescheduled)
	assert.Equal(t, len(eligible), report.Converted)
	for _, pos := range eligible {
		id, _ := wm.GetBlock(pos)
		assert.Equal(t, block.GrassBlockID, id, "клетка %v", pos)
		tick, ok := wm.PendingUpdate(pos)
		assert.True(t, ok)
		assert.Equal(t, int64(20), tick)
	}
	id, _ := wm.GetBlock(far)
	assert.Equal(t, block.DirtBlockID, id)

	tick, ok := wm.PendingUpdate(origin)
	require.True(t, ok)
	assert.Equal(t, int64(20), tick)
}

func TestWorldManager_LightGate(t *testing.T) {
	wm, src := newTestWorld(t, block.DirtBlockID, false)

	// Крыша высоко над травой: клетка сверху не видит неба
	wm.SetBlock(origin.Add(vec.Vec3{Y: 6}), block.StoneBlockID, 0)
	wm.SetBlock(origin, block.GrassBlockID, 0)
	neighbor := origin.Add(vec.South)
	wm.SetBlock(neighbor, block.DirtBlockID, 0)
	wm.SetBlockLight(origin.Add(vec.Up), 8)

	report := tickN(wm, 10)
	assert.Equal(t, 1, report.Rescheduled)
	assert.Zero(t, report.Converted)
	assert.Zero(t, src.draws, "без света случайные числа не тратятся")
	id, _ := wm.GetBlock(neighbor)
	assert.Equal(t, block.DirtBlockID, id)
	tick, ok := wm.PendingUpdate(origin)
	require.True(t, ok)
	assert.Equal(t, int64(20), tick)

	wm.SetBlockLight(origin.Add(vec.Up), 9)
	report = tickN(wm, 10)
	assert.Equal(t, 1, report.Converted)
	id, _ = wm.GetBlock(neighbor)
	assert.Equal(t, block.GrassBlockID, id)
}

func TestWorldManager_NeighborRearm(t *testing.T) {
	wm, _ := newTestWorld(t, block.DirtBlockID, true)

	wm.SetBlock(origin, block.GrassBlockID, 0)
	report := tickN(wm, 10)
	require.Equal(t, 1, report.Dormant, "без земли рядом трава засыпает")
	_, ok := wm.PendingUpdate(origin)
	require.False(t, ok)

	wm.SetBlock(origin.Add(vec.West), block.DirtBlockID, 0)
	tick, ok := wm.PendingUpdate(origin)
	require.True(t, ok, "изменение соседа взводит спящую клетку")
	assert.Equal(t, int64(20), tick)

	// Уже назначенное пробуждение не переносится
	tickN(wm, 3)
	wm.SetBlock(origin.Add(vec.North), block.SandBlockID, 0)
	tick, _ = wm.PendingUpdate(origin)
	assert.Equal(t, int64(20), tick)

	assert.True(t, wm.Rearm(origin))
	tick, _ = wm.PendingUpdate(origin)
	assert.Equal(t, int64(23), tick, "явный Rearm переназначает")
	assert.False(t, wm.Rearm(origin.Add(vec.West)))
}

func TestWorldManager_ChangeFeedAndMetrics(t *testing.T) {
	sink := &recordingSink{}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	wm, _ := newTestWorld(t, block.DirtBlockID, false, WithChangeSink(sink), WithMetrics(metrics))

	wm.SetBlock(origin.Add(vec.East), block.DirtBlockID, 0)
	wm.SetBlock(origin, block.GrassBlockID, 0)
	tickN(wm, 10)

	require.Len(t, sink.changes, 3)
	last := sink.changes[2]
	assert.Equal(t, origin.Add(vec.East), last.Pos)
	assert.Equal(t, block.DirtBlockID, last.From)
	assert.Equal(t, block.GrassBlockID, last.To)
	assert.Equal(t, block.CauseSpread, last.Cause)
	assert.Equal(t, int64(10), last.Tick)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.conversions.WithLabelValues("Grass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.evaluations.WithLabelValues("Grass", "rescheduled")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.changes.WithLabelValues("place")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.pending))

	stats := wm.Stats()
	assert.Equal(t, int64(10), stats.Age)
	assert.Equal(t, uint64(1), stats.Conversions)
	assert.Equal(t, uint64(3), stats.Changes)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, MaxLight, stats.SkyLight)
}

func TestWorldManager_OutOfBoundsWriteRejected(t *testing.T) {
	sink := &recordingSink{}
	wm, _ := newTestWorld(t, block.DirtBlockID, false, WithChangeSink(sink))

	assert.False(t, wm.SetBlock(vec.Vec3{Y: 128}, block.GrassBlockID, 0))
	assert.False(t, wm.SetBlock(vec.Vec3{Y: -1}, block.GrassBlockID, 0))
	assert.Empty(t, sink.changes)
	assert.Zero(t, wm.Stats().Pending)
}

func TestWorldManager_RunStopsOnCancel(t *testing.T) {
	wm, _ := newTestWorld(t, block.DirtBlockID, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, wm.Run(ctx), context.Canceled)
}

func TestWorldManager_Generate(t *testing.T) {
	cfg := config.Default()
	reg, err := cfg.BuildRegistry()
	require.NoError(t, err)
	wm := NewWorldManager(cfg.World, WithRegistry(reg), WithRandomSource(&zeroSource{}))

	gen := NewTerrainGenerator(99)
	armed := wm.Generate(gen, 0, 0, 15, 15)

	assert.Equal(t, armed, wm.Stats().Pending, "каждая динамическая клетка поверхности взведена")
	for x := 0; x < 16; x++ {
		h := gen.Height(x, 5)
		id, _ := wm.GetBlock(vec.Vec3{X: x, Y: h, Z: 5})
		assert.Equal(t, gen.Surface(x, 5, h), id)
		below, _ := wm.GetBlock(vec.Vec3{X: x, Y: h - 1, Z: 5})
		assert.Equal(t, block.DirtBlockID, below)
	}
}
