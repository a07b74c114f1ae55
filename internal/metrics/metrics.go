package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewGatewayRetriesTotal returns a Prometheus counter for the number of retry attempts performed by gateways
func NewGatewayRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	})
}

// Delivery groups the delivery lifecycle metrics. A nil *Delivery records nothing.
type Delivery struct {
	statusChanges      *prometheus.CounterVec
	invalidTransitions prometheus.Counter
	timeUpdates        *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	overdue            prometheus.Gauge
}

// NewDelivery creates the delivery metrics and registers them with reg when it is not nil.
func NewDelivery(reg prometheus.Registerer) (*Delivery, error) {
	m := &Delivery{
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_status_changes_total",
			Help: "Total number of applied delivery status changes by target status",
		}, []string{"status"}),
		invalidTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delivery_invalid_transitions_total",
			Help: "Total number of rejected delivery status transitions",
		}),
		timeUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_time_updates_total",
			Help: "Total number of applied delivery time updates by field",
		}, []string{"field"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_notification_intents_total",
			Help: "Total number of customer notification intents by channel and outcome",
		}, []string{"channel", "outcome"}),
		overdue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "delivery_overdue",
			Help: "Number of open deliveries past their estimated delivery time",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.statusChanges, m.invalidTransitions, m.timeUpdates, m.notifications, m.overdue} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// StatusChanged counts an applied status change.
func (m *Delivery) StatusChanged(status string) {
	if m != nil {
		m.statusChanges.WithLabelValues(status).Inc()
	}
}

// InvalidTransition counts a rejected status change.
func (m *Delivery) InvalidTransition() {
	if m != nil {
		m.invalidTransitions.Inc()
	}
}

// TimeUpdated counts an applied time update.
func (m *Delivery) TimeUpdated(field string) {
	if m != nil {
		m.timeUpdates.WithLabelValues(field).Inc()
	}
}

// NotificationIntent counts a notification intent by outcome ("published" or "failed").
func (m *Delivery) NotificationIntent(channel, outcome string) {
	if m != nil {
		m.notifications.WithLabelValues(channel, outcome).Inc()
	}
}

// SetOverdue records the result of the last overdue sweep.
func (m *Delivery) SetOverdue(n int64) {
	if m != nil {
		m.overdue.Set(float64(n))
	}
}

// HTTP holds the request counter and latency histogram of the API server.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP creates the HTTP metrics and registers them with reg when it is not nil.
func NewHTTP(reg prometheus.Registerer) (*HTTP, error) {
	m := &HTTP{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one served request.
func (m *HTTP) Observe(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, status).Inc()
	m.duration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
