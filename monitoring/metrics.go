package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Monitor groups the application collectors. A nil *Monitor is valid and
// records nothing.
type Monitor struct {
	ticketsSold         *prometheus.CounterVec
	purchaseRejections  *prometheus.CounterVec
	statusTransitions   *prometheus.CounterVec
	notificationsSent   *prometheus.CounterVec
	realtimeFailures    prometheus.Counter
	purchaseLockWait    prometheus.Histogram
	paymentBreakerState prometheus.Gauge
	refundRequests      *prometheus.CounterVec
}

func NewMonitor(reg prometheus.Registerer) *Monitor {
	factory := promauto.With(reg)

	return &Monitor{
		ticketsSold: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventhub_tickets_sold_total",
				Help: "Tickets sold, by ticket type",
			},
			[]string{"type"},
		),
		purchaseRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventhub_purchase_rejections_total",
				Help: "Rejected purchase attempts, by reason",
			},
			[]string{"reason"},
		),
		statusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventhub_event_status_transitions_total",
				Help: "Event status changes",
			},
			[]string{"from", "to"},
		),
		notificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventhub_notification_recipients_total",
				Help: "Notification rows fanned out to users, by priority",
			},
			[]string{"priority"},
		),
		realtimeFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "eventhub_realtime_publish_failures_total",
				Help: "Failed realtime pushes",
			},
		),
		purchaseLockWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "eventhub_purchase_lock_wait_seconds",
				Help:    "Time spent waiting for the per-event purchase lock",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		paymentBreakerState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "eventhub_payment_breaker_state",
				Help: "Payment gateway breaker state (0 closed, 1 half-open, 2 open)",
			},
		),
		refundRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventhub_refund_requests_total",
				Help: "Refund requests, by resulting status",
			},
			[]string{"status"},
		),
	}
}

func (m *Monitor) TrackTicketsSold(ticketType string, quantity int) {
	if m == nil {
		return
	}
	m.ticketsSold.WithLabelValues(ticketType).Add(float64(quantity))
}

func (m *Monitor) TrackPurchaseRejected(reason string) {
	if m == nil {
		return
	}
	m.purchaseRejections.WithLabelValues(reason).Inc()
}

func (m *Monitor) TrackStatusTransition(from, to string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Monitor) TrackNotificationFanout(priority string, recipients int) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(priority).Add(float64(recipients))
}

func (m *Monitor) TrackRealtimeFailure() {
	if m == nil {
		return
	}
	m.realtimeFailures.Inc()
}

func (m *Monitor) TrackLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.purchaseLockWait.Observe(d.Seconds())
}

func (m *Monitor) SetPaymentBreakerState(state int) {
	if m == nil {
		return
	}
	m.paymentBreakerState.Set(float64(state))
}

func (m *Monitor) TrackRefundRequest(status string) {
	if m == nil {
		return
	}
	m.refundRequests.WithLabelValues(status).Inc()
}
