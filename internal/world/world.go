package world

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/voxel-spread/internal/changefeed"
	"github.com/annel0/voxel-spread/internal/config"
	"github.com/annel0/voxel-spread/internal/logging"
	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/annel0/voxel-spread/internal/world/block"
	"github.com/annel0/voxel-spread/internal/world/schedule"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChangeSink принимает изменения материалов клеток (например, changefeed.BatchManager)
type ChangeSink interface {
	Add(ch changefeed.Change)
}

// TickReport - итоги одного тика
type TickReport struct {
	Age         int64
	Wakeups     int
	Decayed     int
	Converted   int
	Dormant     int
	Rescheduled int
	Stale       int
}

func (r *TickReport) add(res block.UpdateResult) {
	r.Converted += res.Converted
	switch res.Outcome {
	case block.OutcomeDecayed:
		r.Decayed++
	case block.OutcomeDormant:
		r.Dormant++
	case block.OutcomeRescheduled:
		r.Rescheduled++
	case block.OutcomeStale:
		r.Stale++
	}
}

// Stats - накопленная статистика мира
type Stats struct {
	Age         int64
	Pending     int
	Chunks      int
	SkyLight    int
	Evaluations uint64
	Decays      uint64
	Conversions uint64
	Changes     uint64
}

// WorldManager управляет сеткой мира и очередью пробуждений.
// Все вычисления автомата выполняются последовательно под mu:
// один WorldManager - одна пространственная область.
type WorldManager struct {
	mu sync.Mutex

	grid     *Grid
	queue    *schedule.Queue
	registry *block.Registry
	sky      SkyLight
	age      int64
	rnd      block.RandomSource
	api      *worldBlockAPI

	neighborRearm bool
	tickRate      int

	metrics *Metrics
	changes ChangeSink
	tracer  trace.Tracer
	log     *logging.Logger

	stats Stats
}

// Option настраивает WorldManager
type Option func(*WorldManager)

// WithRegistry задаёт реестр материалов мира
func WithRegistry(reg *block.Registry) Option {
	return func(wm *WorldManager) { wm.registry = reg }
}

// WithRandomSource задаёт источник случайных чисел (для тестов)
func WithRandomSource(rnd block.RandomSource) Option {
	return func(wm *WorldManager) { wm.rnd = rnd }
}

// WithChangeSink подключает приёмник изменений
func WithChangeSink(sink ChangeSink) Option {
	return func(wm *WorldManager) { wm.changes = sink }
}

// WithMetrics подключает метрики Prometheus
func WithMetrics(m *Metrics) Option {
	return func(wm *WorldManager) { wm.metrics = m }
}

// WithTracer задаёт трейсер OpenTelemetry
func WithTracer(tr trace.Tracer) Option {
	return func(wm *WorldManager) { wm.tracer = tr }
}

// NewWorldManager создаёт мир по конфигурации. Без WithRegistry используется
// копия глобального реестра статических материалов.
func NewWorldManager(cfg config.WorldConfig, opts ...Option) *WorldManager {
	wm := &WorldManager{
		queue:         schedule.NewQueue(),
		sky:           SkyLight{DayLength: cfg.DayLengthTicks},
		neighborRearm: cfg.NeighborRearm,
		tickRate:      cfg.GetTickRate(),
		log:           logging.GetWorldLogger(),
	}
	for _, opt := range opts {
		opt(wm)
	}
	if wm.registry == nil {
		wm.registry = block.Default().Clone()
	}
	if wm.rnd == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		wm.rnd = block.NewRandomSource(seed)
	}
	if wm.tracer == nil {
		wm.tracer = otel.Tracer("github.com/annel0/voxel-spread/internal/world")
	}
	minY, maxY := cfg.MinY, cfg.MaxY
	if minY == 0 && maxY == 0 {
		maxY = 255
	}
	wm.grid = NewGrid(minY, maxY, wm.registry)
	wm.api = &worldBlockAPI{world: wm}
	return wm
}

// Registry возвращает реестр материалов мира
func (wm *WorldManager) Registry() *block.Registry {
	return wm.registry
}

// SetBlock устанавливает блок по внешнему запросу
func (wm *WorldManager) SetBlock(pos vec.Vec3, id block.BlockID, data uint16) bool {
	return wm.SetBlockCause(pos, id, data, block.CausePlace)
}

// SetBlockCause устанавливает блок с указанной причиной изменения
func (wm *WorldManager) SetBlockCause(pos vec.Vec3, id block.BlockID, data uint16, cause block.Cause) bool {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	return wm.setBlockLocked(pos, id, data, cause)
}

// setBlockLocked записывает блок, снимает ожидающее пробуждение клетки,
// взводит новый динамический материал и уведомляет соседей по граням.
func (wm *WorldManager) setBlockLocked(pos vec.Vec3, id block.BlockID, data uint16, cause block.Cause) bool {
	prev, ok := wm.grid.Set(pos, id, data)
	if !ok {
		wm.log.Warn("SetBlock вне границ мира: %v (y в [%d, %d])", pos, wm.grid.MinY(), wm.grid.MaxY())
		return false
	}
	wm.queue.Invalidate(pos)

	wm.stats.Changes++
	wm.metrics.observeChange(cause)
	if wm.changes != nil {
		wm.changes.Add(changefeed.Change{Pos: pos, From: prev, To: id, Data: data, Cause: cause, Tick: wm.age})
	}

	if dyn, ok := wm.registry.Dynamic(id); ok {
		dyn.OnPlace(wm.api, pos, wm.age)
	}
	if wm.neighborRearm {
		wm.notifyNeighborsLocked(pos)
	}
	return true
}

// notifyNeighborsLocked вызывает OnNeighborUpdate у соседей по граням
func (wm *WorldManager) notifyNeighborsLocked(pos vec.Vec3) {
	for _, face := range vec.Faces {
		n := pos.Add(face)
		id, _ := wm.grid.Get(n)
		behavior, ok := wm.registry.Get(id)
		if !ok {
			continue
		}
		if aware, ok := behavior.(block.NeighborAware); ok {
			aware.OnNeighborUpdate(wm.api, n, wm.age)
		}
	}
}

// Tick продвигает возраст мира на один тик и обрабатывает все наступившие пробуждения
func (wm *WorldManager) Tick(ctx context.Context) TickReport {
	_, span := wm.tracer.Start(ctx, "WorldManager.Tick")
	defer span.End()
	start := time.Now()

	wm.mu.Lock()
	wm.age++
	report := TickReport{Age: wm.age}
	due := wm.queue.PopDue(wm.age)
	report.Wakeups = len(due)

	for _, w := range due {
		id, data := wm.grid.Get(w.Pos)
		dyn, ok := wm.registry.Dynamic(id)
		if !ok {
			report.Stale++
			wm.metrics.observeUpdate(wm.registry.Name(id), block.UpdateResult{Outcome: block.OutcomeStale})
			continue
		}
		res := dyn.OnDynamicUpdate(wm.api, wm.rnd, w.Pos, w.Tick, data)
		report.add(res)
		wm.metrics.observeUpdate(dyn.Name(), res)
	}

	wm.stats.Evaluations += uint64(report.Wakeups)
	wm.stats.Decays += uint64(report.Decayed)
	wm.stats.Conversions += uint64(report.Converted)
	pending := wm.queue.Len()
	age := wm.age
	wm.mu.Unlock()

	wm.metrics.observeTick(age, pending, time.Since(start))
	span.SetAttributes(
		attribute.Int64("world.age", age),
		attribute.Int("world.wakeups", report.Wakeups),
		attribute.Int("world.converted", report.Converted),
		attribute.Int("world.decayed", report.Decayed),
		attribute.Int("world.pending", pending),
	)
	if report.Wakeups > 0 {
		wm.log.Trace("Тик %d: %d пробуждений, %d захватов, %d распадов", age, report.Wakeups, report.Converted, report.Decayed)
	}
	return report
}

// Run запускает цикл тиков с частотой tick_rate до отмены ctx
func (wm *WorldManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(wm.tickRate))
	defer ticker.Stop()

	wm.log.Info("Цикл тиков запущен: %d тиков/с", wm.tickRate)
	for {
		select {
		case <-ctx.Done():
			wm.log.Info("Цикл тиков остановлен на тике %d", wm.Age())
			return ctx.Err()
		case <-ticker.C:
			wm.Tick(ctx)
		}
	}
}

// Rearm повторно взводит динамический материал в клетке.
// Возвращает false, если в клетке статический материал.
func (wm *WorldManager) Rearm(pos vec.Vec3) bool {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	id, _ := wm.grid.Get(pos)
	dyn, ok := wm.registry.Dynamic(id)
	if !ok {
		return false
	}
	dyn.OnPlace(wm.api, pos, wm.age)
	return true
}

// PendingUpdate возвращает тик ожидающего пробуждения клетки
func (wm *WorldManager) PendingUpdate(pos vec.Vec3) (int64, bool) {
	return wm.queue.Pending(pos)
}

// Age возвращает текущий возраст мира в тиках
func (wm *WorldManager) Age() int64 {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	return wm.age
}

// GetBlock возвращает материал и data клетки
func (wm *WorldManager) GetBlock(pos vec.Vec3) (block.BlockID, uint16) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	return wm.grid.Get(pos)
}

// GetLight возвращает освещённость клетки на текущем тике
func (wm *WorldManager) GetLight(pos vec.Vec3) int {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	return wm.lightLocked(pos)
}

func (wm *WorldManager) lightLocked(pos vec.Vec3) int {
	return wm.grid.Light(pos, wm.sky.Level(wm.age))
}

// SetBlockLight задаёт источник света в клетке. Клетка под источником
// получает уведомление соседа: свет влияет на распространение снизу.
func (wm *WorldManager) SetBlockLight(pos vec.Vec3, level int) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.grid.SetBlockLight(pos, level)
	if wm.neighborRearm {
		wm.notifyNeighborsLocked(pos)
	}
}

// Generate заполняет прямоугольник столбцов генератором и взводит
// все динамические клетки поверхности. Изменения не попадают в ленту.
func (wm *WorldManager) Generate(gen *TerrainGenerator, minX, minZ, maxX, maxZ int) int {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	set := func(pos vec.Vec3, id block.BlockID) {
		wm.grid.Set(pos, id, 0)
		wm.queue.Invalidate(pos)
	}
	armed := 0
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			top := gen.column(x, z, wm.grid.MinY(), wm.grid.MaxY(), set)
			id, _ := wm.grid.Get(top)
			if dyn, ok := wm.registry.Dynamic(id); ok {
				dyn.OnPlace(wm.api, top, wm.age)
				armed++
			}
		}
	}
	wm.log.Info("Сгенерировано %dx%d столбцов, взведено %d клеток, секций: %d",
		maxX-minX+1, maxZ-minZ+1, armed, wm.grid.ChunkCount())
	return armed
}

// Stats возвращает снимок статистики
func (wm *WorldManager) Stats() Stats {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	s := wm.stats
	s.Age = wm.age
	s.Pending = wm.queue.Len()
	s.Chunks = wm.grid.ChunkCount()
	s.SkyLight = wm.sky.Level(wm.age)
	return s
}
