// Package metrics holds the Prometheus collectors of the order service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	OrderOperations        *prometheus.CounterVec
	OrderOperationDuration *prometheus.HistogramVec
	StockReservations      *prometheus.CounterVec
	StockShortages         prometheus.Counter
	StockAdjustments       prometheus.Counter
	EventsPublished        *prometheus.CounterVec
	EventsDropped          prometheus.Counter
	Notifications          *prometheus.CounterVec
	GRPCRequests           *prometheus.CounterVec
}

// New registers every collector on reg under prefix.
func New(reg prometheus.Registerer, prefix string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrderOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_order_operations_total",
				Help: "Order operations by kind and outcome",
			},
			[]string{"operation", "outcome"},
		),
		OrderOperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_order_operation_duration_seconds",
				Help:    "Duration of order operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		StockReservations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_stock_reservations_total",
				Help: "Stock reservations by outcome",
			},
			[]string{"outcome"},
		),
		StockShortages: f.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_stock_shortage_lines_total",
				Help: "Order lines rejected for insufficient stock",
			},
		),
		StockAdjustments: f.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_stock_adjustments_total",
				Help: "Manual stock adjustments applied",
			},
		),
		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_order_events_published_total",
				Help: "Order events handed to the broker by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		EventsDropped: f.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_order_events_dropped_total",
				Help: "Order events dropped because the emitter queue was full or closed",
			},
		),
		Notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_notifications_total",
				Help: "Notifications by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
		GRPCRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_grpc_requests_total",
				Help: "gRPC requests by method and status code",
			},
			[]string{"method", "code"},
		),
	}
}

func (m *Metrics) ObserveOrderOperation(operation string, err error, started time.Time) {
	if m == nil {
		return
	}
	m.OrderOperations.WithLabelValues(operation, Outcome(err)).Inc()
	m.OrderOperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveReservation(err error, shortLines int) {
	if m == nil {
		return
	}
	m.StockReservations.WithLabelValues(Outcome(err)).Inc()
	if shortLines > 0 {
		m.StockShortages.Add(float64(shortLines))
	}
}

func (m *Metrics) ObserveShortages(lines int) {
	if m == nil || lines == 0 {
		return
	}
	m.StockShortages.Add(float64(lines))
}

func (m *Metrics) ObserveAdjustment() {
	if m == nil {
		return
	}
	m.StockAdjustments.Inc()
}

func (m *Metrics) ObservePublish(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, Outcome(err)).Inc()
}

func (m *Metrics) ObserveDrop() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

func (m *Metrics) ObserveNotification(channel string, err error) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(channel, Outcome(err)).Inc()
}

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
