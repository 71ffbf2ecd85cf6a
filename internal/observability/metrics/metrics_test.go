package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLeadMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)

	m.ObserveSubmission("accepted")
	m.ObserveSubmission("accepted")
	m.ObserveSubmission("error")
	m.ObserveIntroCall("queued")
	m.ObserveFallback("sms")
	m.ObserveBookingEvent("scheduled")

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("accepted")); got != 2 {
		t.Errorf("expected 2 accepted submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 errored submission, got %v", got)
	}
	if got := testutil.ToFloat64(m.introCallsTotal.WithLabelValues("queued")); got != 1 {
		t.Errorf("expected 1 queued call, got %v", got)
	}
	if got := testutil.ToFloat64(m.fallbackTotal.WithLabelValues("sms")); got != 1 {
		t.Errorf("expected 1 sms fallback, got %v", got)
	}
	if got := testutil.ToFloat64(m.bookingEventsTotal.WithLabelValues("scheduled")); got != 1 {
		t.Errorf("expected 1 scheduled booking event, got %v", got)
	}
}

func TestNilReceiverSafe(t *testing.T) {
	var m *LeadMetrics
	m.ObserveSubmission("accepted")
	m.ObserveIntroCall("queued")
	m.ObserveFallback("sms")
	m.ObserveBookingEvent("ignored")
}
