package world

import (
	"time"

	"github.com/annel0/voxel-spread/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - метрики автомата распространения. Все методы допускают nil-получатель.
type Metrics struct {
	evaluations  *prometheus.CounterVec
	conversions  *prometheus.CounterVec
	changes      *prometheus.CounterVec
	pending      prometheus.Gauge
	age          prometheus.Gauge
	tickDuration prometheus.Histogram
}

// NewMetrics создаёт и регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spread_evaluations_total",
			Help: "Dynamic update evaluations by material and outcome",
		}, []string{"material", "outcome"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spread_conversions_total",
			Help: "Neighbour cells converted by spreading materials",
		}, []string{"material"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spread_block_changes_total",
			Help: "Block writes by cause",
		}, []string{"cause"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spread_pending_wakeups",
			Help: "Live wake-ups in the schedule queue",
		}),
		age: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spread_world_age_ticks",
			Help: "Current world age in ticks",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spread_tick_duration_seconds",
			Help:    "Wall time spent processing one tick",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.evaluations, m.conversions, m.changes, m.pending, m.age, m.tickDuration)
	}
	return m
}

func (m *Metrics) observeUpdate(material string, res block.UpdateResult) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(material, res.Outcome.String()).Inc()
	if res.Converted > 0 {
		m.conversions.WithLabelValues(material).Add(float64(res.Converted))
	}
}

func (m *Metrics) observeChange(cause block.Cause) {
	if m == nil {
		return
	}
	m.changes.WithLabelValues(cause.String()).Inc()
}

func (m *Metrics) observeTick(age int64, pending int, d time.Duration) {
	if m == nil {
		return
	}
	m.age.Set(float64(age))
	m.pending.Set(float64(pending))
	m.tickDuration.Observe(d.Seconds())
}
