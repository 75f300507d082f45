package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/annel0/voxel-spread/internal/world/block"
	"github.com/annel0/voxel-spread/internal/world/block/implementations"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации симулятора.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Materials  []MaterialConfig `yaml:"materials"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	ChangeFeed ChangeFeedConfig `yaml:"changefeed"`
}

type WorldConfig struct {
	Seed           int64 `yaml:"seed"`             // 0 - сид от текущего времени
	TickRate       int   `yaml:"tick_rate"`        // Тиков в секунду
	MinY           int   `yaml:"min_y"`
	MaxY           int   `yaml:"max_y"`
	DayLengthTicks int64 `yaml:"day_length_ticks"` // 0 - вечный день
	NeighborRearm  bool  `yaml:"neighbor_rearm"`
}

// MaterialConfig описывает распространяющийся материал
type MaterialConfig struct {
	Name           string        `yaml:"name"`
	ID             block.BlockID `yaml:"id"`
	Strategy       string        `yaml:"strategy"`
	Replaced       string        `yaml:"replaced"`
	MinLight       int           `yaml:"min_light"`
	RangeRadius    int           `yaml:"range_radius"`
	IntervalTicks  int64         `yaml:"interval_ticks"`
	IntervalJitter int64         `yaml:"interval_jitter"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type ChangeFeedConfig struct {
	BatchSize    int  `yaml:"batch_size"`
	FlushEveryMS int  `yaml:"flush_every_ms"`
	Compress     bool `yaml:"compress"`
}

// Default возвращает конфигурацию с ванильными травой и мицелием.
// tick_rate и metrics.addr оставлены пустыми: их заполняют
// GetTickRate и GetMetricsAddr из ENV или значений по умолчанию.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			MinY:           0,
			MaxY:           255,
			DayLengthTicks: 24000,
			NeighborRearm:  true,
		},
		Materials: []MaterialConfig{
			{
				Name:           "Grass",
				ID:             block.GrassBlockID,
				Strategy:       "grass",
				Replaced:       "Dirt",
				MinLight:       9,
				RangeRadius:    2,
				IntervalTicks:  200,
				IntervalJitter: 100,
			},
			{
				Name:           "Mycelium",
				ID:             block.MyceliumBlockID,
				Strategy:       "mycelium",
				Replaced:       "Dirt",
				MinLight:       9,
				RangeRadius:    2,
				IntervalTicks:  300,
				IntervalJitter: 100,
			},
		},
		Logging:    LoggingConfig{Level: "info"},
		Telemetry:  TelemetryConfig{ServiceName: "voxel-spread"},
		ChangeFeed: ChangeFeedConfig{BatchSize: 256, FlushEveryMS: 1000, Compress: true},
	}
}

const (
	defaultTickRate    = 20
	defaultMetricsAddr = ":2112"
)

// GetMetricsAddr возвращает адрес метрик: config -> env -> default
func (m *MetricsConfig) GetMetricsAddr() string {
	if m.Addr != "" {
		return m.Addr
	}
	if envVal := os.Getenv("SPREAD_METRICS_ADDR"); envVal != "" {
		return envVal
	}
	return defaultMetricsAddr
}

// GetTickRate возвращает частоту тиков с поддержкой fallback значений
func (w *WorldConfig) GetTickRate() int {
	return getIntWithEnvFallback(w.TickRate, "SPREAD_TICK_RATE", defaultTickRate)
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}
	return defaultValue
}

// Load читает YAML файл конфигурации поверх Default().
// Если path == "", пытается прочитать путь из ENV SPREAD_CONFIG;
// если и он пуст, возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SPREAD_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфигурацию %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать конфигурацию %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет конфигурацию, включая сборку материалов,
// чтобы ошибки всплывали до старта мира.
func (c *Config) Validate() error {
	if c.World.MinY > c.World.MaxY {
		return fmt.Errorf("world: min_y (%d) больше max_y (%d)", c.World.MinY, c.World.MaxY)
	}
	if c.World.DayLengthTicks < 0 {
		return fmt.Errorf("world: отрицательный day_length_ticks %d", c.World.DayLengthTicks)
	}
	if c.ChangeFeed.BatchSize < 0 || c.ChangeFeed.FlushEveryMS < 0 {
		return errors.New("changefeed: batch_size и flush_every_ms не могут быть отрицательными")
	}
	_, err := c.BuildRegistry()
	return err
}

// BuildRegistry клонирует глобальный реестр статических материалов
// и регистрирует в копии материалы из конфигурации. Поле replaced может
// ссылаться на любой материал списка независимо от порядка.
func (c *Config) BuildRegistry() (*block.Registry, error) {
	reg := block.Default().Clone()
	declared := make(map[string]block.BlockID, len(c.Materials))
	for _, mc := range c.Materials {
		if mc.Name != "" {
			declared[mc.Name] = mc.ID
		}
	}
	for _, mc := range c.Materials {
		m, err := mc.build(reg, declared)
		if err != nil {
			return nil, err
		}
		if err := reg.RegisterSpreading(m); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (mc MaterialConfig) build(reg *block.Registry, declared map[string]block.BlockID) (*block.SpreadingMaterial, error) {
	if mc.Name == "" {
		return nil, fmt.Errorf("materials: материал id=%d без имени", mc.ID)
	}
	if behavior, ok := reg.Get(mc.ID); ok {
		if _, dynamic := behavior.(block.DynamicBehavior); !dynamic {
			return nil, fmt.Errorf("materials: %s: id %d занят статическим материалом %s", mc.Name, mc.ID, behavior.Name())
		}
	}

	strategy, err := implementations.NewStrategy(mc.Strategy, reg, implementations.StrategyParams{
		Interval: mc.IntervalTicks,
		Jitter:   mc.IntervalJitter,
	})
	if err != nil {
		return nil, fmt.Errorf("materials: %s: %w", mc.Name, err)
	}

	opts := []block.SpreadingOption{block.WithMinimumLightToSpread(mc.MinLight)}
	// Пустой replaced: NewSpreadingMaterial вернёт ErrNoReplacedMaterial
	if mc.Replaced != "" {
		replaced, ok := reg.Lookup(mc.Replaced)
		if !ok {
			replaced, ok = declared[mc.Replaced]
		}
		if !ok {
			return nil, fmt.Errorf("materials: %s: неизвестный заменяемый материал %q", mc.Name, mc.Replaced)
		}
		opts = append(opts, block.WithReplacedMaterial(replaced))
	}
	if mc.RangeRadius != 0 {
		r, err := block.NewCubicEffectRange(mc.RangeRadius)
		if err != nil {
			return nil, fmt.Errorf("materials: %s: %w", mc.Name, err)
		}
		opts = append(opts, block.WithSpreadRange(r))
	}

	return block.NewSpreadingMaterial(mc.ID, mc.Name, strategy, opts...)
}
