package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ArticlesTotal       *prometheus.CounterVec
	FetchAttemptsTotal  *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
}

// New registers the application metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ArticlesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_articles_total",
				Help: "Articles processed, by domain and outcome.",
			},
			[]string{"domain", "outcome"}, // outcome: new, duplicate, failed
		),
		FetchAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_fetch_attempts_total",
				Help: "Page fetch attempts, by outcome.",
			},
			[]string{"domain", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Duration of single page fetch attempts.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"domain"},
		),
	}
}

func (m *Metrics) IncArticles(domain, outcome string) {
	m.ArticlesTotal.WithLabelValues(domain, outcome).Inc()
}

func (m *Metrics) ObserveFetch(domain, outcome string, seconds float64) {
	m.FetchAttemptsTotal.WithLabelValues(domain, outcome).Inc()
	m.FetchDuration.WithLabelValues(domain).Observe(seconds)
}
