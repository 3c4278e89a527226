package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Business
	InitiationsTotal *prometheus.CounterVec
	CallbacksTotal   *prometheus.CounterVec
	GatewayDuration  prometheus.Histogram
	EventsPublished  prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paymentrelay_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paymentrelay_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "paymentrelay_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),
		InitiationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paymentrelay_stk_initiations_total",
				Help: "STK push initiation attempts by outcome",
			},
			[]string{"outcome"},
		),
		CallbacksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paymentrelay_callbacks_total",
				Help: "Gateway callback deliveries by processing outcome",
			},
			[]string{"outcome"},
		),
		GatewayDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "paymentrelay_gateway_push_duration_seconds",
				Help:    "Duration of STK push calls to the gateway in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		EventsPublished: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "paymentrelay_completed_events_published_total",
				Help: "Completed-payment events published to the queue",
			},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
}

func (m *Metrics) RecordInitiation(outcome string) {
	m.InitiationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCallback(outcome string) {
	m.CallbacksTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordGatewayPush(duration time.Duration) {
	m.GatewayDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordEventPublished() {
	m.EventsPublished.Inc()
}
