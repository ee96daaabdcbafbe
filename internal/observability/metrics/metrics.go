package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "landing"

// CalendarMetrics exposes counters for availability requests and the
// calendar busy-time source.
type CalendarMetrics struct {
	availabilityTotal *prometheus.CounterVec
	busySourceTotal   *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
}

func NewCalendarMetrics(reg prometheus.Registerer) *CalendarMetrics {
	m := &CalendarMetrics{
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "availability_requests_total",
			Help:      "Availability computations by whether any slot was open",
		}, []string{"has_open_slots"}),
		busySourceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "busy_source_total",
			Help:      "Busy-interval lookups by outcome (ready, unconfigured, unauthorized, refresh_failed, query_failed)",
		}, []string{"outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "booking_submissions_total",
			Help:      "Booking submissions by result (invalid, delivered, delivery_failed)",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityTotal, m.busySourceTotal, m.bookingsTotal)
	return m
}

func (m *CalendarMetrics) ObserveAvailability(hasOpenSlots bool) {
	if m == nil {
		return
	}
	label := "false"
	if hasOpenSlots {
		label = "true"
	}
	m.availabilityTotal.WithLabelValues(label).Inc()
}

func (m *CalendarMetrics) ObserveBusySource(outcome string) {
	if m == nil {
		return
	}
	m.busySourceTotal.WithLabelValues(outcome).Inc()
}

func (m *CalendarMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
}

// WebhookMetrics exposes delivery counters and latency for CRM webhooks.
type WebhookMetrics struct {
	deliveriesTotal *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "CRM webhook deliveries by event type and status",
		}, []string{"event_type", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "delivery_latency_seconds",
			Help:      "Latency of CRM webhook POSTs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.deliveriesTotal, m.latency)
	return m
}

func (m *WebhookMetrics) ObserveDelivery(eventType string, success bool, seconds float64) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "ok"
	}
	m.deliveriesTotal.WithLabelValues(eventType, status).Inc()
	m.latency.WithLabelValues(eventType).Observe(seconds)
}
