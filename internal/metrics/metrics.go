package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	RejectedMessagesTotal *prometheus.CounterVec

	TelegramUpdatesTotal *prometheus.CounterVec
}

// New registers all collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() so that New can be called more than once.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finking_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finking_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "finking_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finking_upstream_requests_total",
				Help: "Completion calls by classified outcome",
			},
			[]string{"outcome"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finking_upstream_request_duration_seconds",
				Help:    "Completion call duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"outcome"},
		),

		RejectedMessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finking_rejected_messages_total",
				Help: "Inbound messages rejected before any upstream call",
			},
			[]string{"reason"},
		),

		TelegramUpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finking_telegram_updates_total",
				Help: "Telegram updates handled",
			},
			[]string{"type", "status"},
		),
	}

	return m
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordUpstream(outcome string, duration time.Duration) {
	m.UpstreamRequestsTotal.WithLabelValues(outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Metrics) RecordRejected(reason string) {
	m.RejectedMessagesTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordTelegramUpdate(updateType, status string) {
	m.TelegramUpdatesTotal.WithLabelValues(updateType, status).Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
