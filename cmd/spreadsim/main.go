package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/annel0/voxel-spread/internal/changefeed"
	"github.com/annel0/voxel-spread/internal/config"
	"github.com/annel0/voxel-spread/internal/eventbus"
	"github.com/annel0/voxel-spread/internal/logging"
	"github.com/annel0/voxel-spread/internal/observability"
	"github.com/annel0/voxel-spread/internal/world"
	"github.com/annel0/voxel-spread/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (default: $SPREAD_CONFIG or built-in)")
		radius     = flag.Int("radius", 32, "Half-size of the generated area in columns")
		statsEvery = flag.Duration("stats", 10*time.Second, "Interval between stats log lines")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ Ошибка конфигурации: %v", err)
	}
	logging.Configure(cfg.Logging.Dir, level)
	if err := logging.InitDefaultLogger("spreadsim"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	if cfg.World.Seed == 0 {
		cfg.World.Seed = time.Now().UnixNano()
	}
	logging.Info("🌱 Запуск симулятора распространения: seed=%d, материалов=%d", cfg.World.Seed, len(cfg.Materials))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Error("❌ Ошибка инициализации телеметрии: %v", err)
		os.Exit(1)
	}

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	if _, err := observability.NewProcessCollector(reg); err != nil {
		logging.Warn("Метрики процесса недоступны: %v", err)
	}
	metrics := world.NewMetrics(reg)

	// === ЛЕНТА ИЗМЕНЕНИЙ ===
	bus := eventbus.NewMemoryBus(1024)
	exporter := eventbus.NewMetricsExporter(bus, reg, 5*time.Second)
	exporter.Start()
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("Логирование событий недоступно: %v", err)
	}

	codec := changefeed.NewJSONCodec()
	if cfg.ChangeFeed.Compress {
		if codec, err = changefeed.NewZstdCodec(); err != nil {
			logging.Error("❌ %v", err)
			os.Exit(1)
		}
	}
	var spread, decayed, placed atomic.Int64
	consumer, err := changefeed.NewConsumer(bus, codec, func(_ string, changes []changefeed.Change) {
		for _, ch := range changes {
			switch ch.Cause {
			case block.CauseSpread:
				spread.Add(1)
			case block.CauseDecay:
				decayed.Add(1)
			default:
				placed.Add(1)
			}
		}
	})
	if err != nil {
		logging.Error("❌ Ошибка подписки на ленту изменений: %v", err)
		os.Exit(1)
	}
	batch := changefeed.NewBatchManager(bus, "world", cfg.ChangeFeed.BatchSize,
		time.Duration(cfg.ChangeFeed.FlushEveryMS)*time.Millisecond, codec)

	// === МИР ===
	materials, err := cfg.BuildRegistry()
	if err != nil {
		logging.Error("❌ Ошибка сборки материалов: %v", err)
		os.Exit(1)
	}
	wm := world.NewWorldManager(cfg.World,
		world.WithRegistry(materials),
		world.WithMetrics(metrics),
		world.WithChangeSink(batch),
	)
	armed := wm.Generate(world.NewTerrainGenerator(cfg.World.Seed), -*radius, -*radius, *radius, *radius)
	logging.Info("🗺️  Рельеф готов, взведено %d клеток", armed)

	// === HTTP ===
	srv := &http.Server{Addr: cfg.Metrics.GetMetricsAddr(), Handler: metricsMux(reg)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ Ошибка HTTP сервера метрик: %v", err)
		}
	}()
	logging.Info("📊 Метрики: http://localhost%s/metrics", srv.Addr)

	go func() {
		ticker := time.NewTicker(*statsEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s := wm.Stats()
				logging.Info("Тик %d: ожидают %d, вычислений %d, захватов %d, распадов %d, свет неба %d, секций %d; лента: spread=%d decay=%d place=%d",
					s.Age, s.Pending, s.Evaluations, s.Conversions, s.Decays, s.SkyLight, s.Chunks,
					spread.Load(), decayed.Load(), placed.Load())
			}
		}
	}()

	if err := wm.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("❌ Цикл тиков завершился с ошибкой: %v", err)
	}

	// === GRACEFUL SHUTDOWN ===
	logging.Info("📡 Получен сигнал завершения, остановка...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Остановка HTTP сервера: %v", err)
	}
	batch.Stop()
	consumer.Close()
	exporter.Stop()
	bus.Close()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Warn("Остановка телеметрии: %v", err)
	}
	logging.Info("👋 Симулятор остановлен на тике %d", wm.Age())
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
