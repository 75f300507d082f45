package observability

import (
	"os"

	"github.com/annel0/voxel-spread/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessCollector публикует загрузку CPU и RSS процесса симулятора
type ProcessCollector struct {
	proc *process.Process
	cpu  prometheus.GaugeFunc
	rss  prometheus.GaugeFunc
}

// NewProcessCollector создаёт метрики процесса и регистрирует их в reg
func NewProcessCollector(reg prometheus.Registerer) (*ProcessCollector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	pc := &ProcessCollector{proc: proc}
	pc.cpu = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "spread_process_cpu_percent",
		Help: "CPU usage of the simulator process",
	}, pc.CPUPercent)
	pc.rss = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "spread_process_rss_bytes",
		Help: "Resident set size of the simulator process",
	}, pc.RSSBytes)

	if reg != nil {
		if err := reg.Register(pc.cpu); err != nil {
			return nil, err
		}
		if err := reg.Register(pc.rss); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// CPUPercent возвращает загрузку CPU процессом в процентах
func (pc *ProcessCollector) CPUPercent() float64 {
	v, err := pc.proc.CPUPercent()
	if err != nil {
		logging.Debug("ProcessCollector: CPU недоступен: %v", err)
		return 0
	}
	return v
}

// RSSBytes возвращает резидентную память процесса
func (pc *ProcessCollector) RSSBytes() float64 {
	mem, err := pc.proc.MemoryInfo()
	if err != nil {
		logging.Debug("ProcessCollector: память недоступна: %v", err)
		return 0
	}
	return float64(mem.RSS)
}
