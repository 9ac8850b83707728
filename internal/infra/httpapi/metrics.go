package httpapi

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	decisions *prometheus.CounterVec
}

var (
	decisionsOnce sync.Once
	decisionsVec  *prometheus.CounterVec
)

// newMetrics returns a metrics handle backed by a process-wide collector.
// Registration happens at most once: every Server shares the same counter
// vector rather than each racing to register its own with the default
// registry.
func newMetrics() *metrics {
	decisionsOnce.Do(func() {
		decisionsVec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "anchorpq_verify_decisions_total",
			Help: "Count of verification decisions by status.",
		}, []string{"status"})
		prometheus.MustRegister(decisionsVec)
	})
	return &metrics{decisions: decisionsVec}
}
