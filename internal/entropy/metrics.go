package entropy

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/louisbranch/qdatasets/internal/platform/telemetry/metrics"
)

const outcomeSuccess = "success"

// Metrics counts entropy attempts and accepted bytes.
type Metrics struct {
	attempts *prometheus.CounterVec
	bytes    prometheus.Counter
}

// NewMetrics registers the entropy counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "entropy",
			Name:      "attempts_total",
			Help:      "Entropy service requests by outcome.",
		}, []string{"outcome"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "entropy",
			Name:      "bytes_total",
			Help:      "Random bytes accepted from the entropy service.",
		}),
	}
	for _, c := range []prometheus.Collector{m.attempts, m.bytes} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register entropy metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) attempt(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) accepted(n int) {
	if m == nil {
		return
	}
	m.bytes.Add(float64(n))
}
