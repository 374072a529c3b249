package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RefreshesTotal          *prometheus.CounterVec
	RefreshDuration         prometheus.Histogram
	RefreshSkippedRowsTotal prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		RefreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "country_refreshes_total",
				Help: "Total number of country refresh cycles by outcome",
			},
			[]string{"outcome"},
		),

		RefreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "country_refresh_duration_seconds",
				Help:    "Country refresh cycle duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),

		RefreshSkippedRowsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "country_refresh_skipped_rows_total",
				Help: "Total number of upstream country records skipped during normalization",
			},
		),
	}
}

// ObserveRefresh records the result of one refresh cycle.
func (m *Metrics) ObserveRefresh(outcome string, duration time.Duration, skipped int) {
	m.RefreshesTotal.WithLabelValues(outcome).Inc()
	m.RefreshDuration.Observe(duration.Seconds())
	if skipped > 0 {
		m.RefreshSkippedRowsTotal.Add(float64(skipped))
	}
}
