package meter

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/epoxyteam/sapo-client-sdk"
)

// PromMeter exports request metrics through a Prometheus registry.
//
// Metrics:
//   - sapo_requests_total: total requests by method, path and status
//   - sapo_request_duration_seconds: request duration histogram
//   - sapo_request_errors_total: failed requests by method and path
type PromMeter struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

var _ sapo.Meter = (*PromMeter)(nil)

// NewPromMeter creates a PromMeter and registers its collectors with
// the given registry. If registry is nil, the default registerer is used.
func NewPromMeter(registry prometheus.Registerer) *PromMeter {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	m := &PromMeter{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sapo",
				Name:      "requests_total",
				Help:      "Total number of API requests dispatched",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sapo",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sapo",
				Name:      "request_errors_total",
				Help:      "Total number of failed API requests",
			},
			[]string{"method", "path"},
		),
	}
	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.errorsTotal,
	)
	return m
}

func (m *PromMeter) OnRequest(sapo.RequestEvent) {}

func (m *PromMeter) OnResult(e sapo.ResultEvent) {
	m.requestsTotal.WithLabelValues(e.Method, e.Path, strconv.Itoa(e.Status)).Inc()
	m.requestDuration.WithLabelValues(e.Method, e.Path).Observe(e.Duration.Seconds())
	if e.Err != nil {
		m.errorsTotal.WithLabelValues(e.Method, e.Path).Inc()
	}
}
