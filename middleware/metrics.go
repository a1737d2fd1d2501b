package middleware

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/en9inerd/go-mount/pipeline"
)

// Metrics records per-stage request counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mount_requests_total",
				Help: "Requests handled per stage, by resulting pipeline signal.",
			},
			[]string{"stage", "signal"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mount_request_duration_seconds",
				Help:    "Time spent in a stage.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware returns a middleware that reports under the given stage label.
func (m *Metrics) Middleware(stage string) pipeline.Middleware {
	return func(next pipeline.Handler) pipeline.Handler {
		return pipeline.HandlerFunc(func(req *pipeline.Request, w http.ResponseWriter) pipeline.Signal {
			start := time.Now()
			sig := next.Handle(req, w)
			m.duration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
			m.requests.WithLabelValues(stage, sig.String()).Inc()
			return sig
		})
	}
}
