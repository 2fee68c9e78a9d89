package pagedata

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Branch labels for the loads counter.
const (
	BranchMatched          = "matched"
	BranchNotFound         = "not_found"
	BranchNotFoundFallback = "not_found_fallback"
)

// Metrics records loader activity. A nil *Metrics is a valid no-op.
type Metrics struct {
	loads    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers loader metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pagedata_loads_total",
			Help: "Page data loads by orchestration branch.",
		}, []string{"branch"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pagedata_producer_failures_total",
			Help: "Producer failures captured as data, by producer.",
		}, []string{"producer"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pagedata_load_duration_seconds",
			Help:    "Time spent running the producers of one load.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observeLoad(branch string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(branch).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) producerFailed(producer string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(producer).Inc()
}
