package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the request duration histogram fed by the Performance behavior.
type Metrics struct {
	duration *prometheus.HistogramVec
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "request_duration_seconds",
		Help:      "Time spent handling a request inside the behavior chain.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"request"})
	if err := reg.Register(duration); err != nil {
		return nil, err
	}
	return &Metrics{duration: duration}, nil
}

func (m *Metrics) observe(request string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(request).Observe(d.Seconds())
}
