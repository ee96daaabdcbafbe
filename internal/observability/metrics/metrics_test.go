package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var metric dto.Metric
	if err := vec.WithLabelValues(labels...).Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func TestCalendarMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCalendarMetrics(reg)
	m.ObserveAvailability(true)
	m.ObserveAvailability(true)
	m.ObserveAvailability(false)
	m.ObserveBusySource("unconfigured")
	m.ObserveBooking("invalid")

	if got := counterValue(t, m.availabilityTotal, "true"); got != 2 {
		t.Fatalf("expected 2 open availability observations, got %v", got)
	}
	if got := counterValue(t, m.availabilityTotal, "false"); got != 1 {
		t.Fatalf("expected 1 closed availability observation, got %v", got)
	}
	if got := counterValue(t, m.busySourceTotal, "unconfigured"); got != 1 {
		t.Fatalf("expected busy source counter 1, got %v", got)
	}
	if got := counterValue(t, m.bookingsTotal, "invalid"); got != 1 {
		t.Fatalf("expected booking counter 1, got %v", got)
	}
}

func TestWebhookMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.ObserveDelivery("booking", true, 0.2)
	m.ObserveDelivery("booking", false, 1.5)

	if got := counterValue(t, m.deliveriesTotal, "booking", "ok"); got != 1 {
		t.Fatalf("expected 1 ok delivery, got %v", got)
	}
	if got := counterValue(t, m.deliveriesTotal, "booking", "failed"); got != 1 {
		t.Fatalf("expected 1 failed delivery, got %v", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var cm *CalendarMetrics
	cm.ObserveAvailability(true)
	cm.ObserveBusySource("ready")
	cm.ObserveBooking("delivered")

	var wm *WebhookMetrics
	wm.ObserveDelivery("contact", true, 0.1)
}
