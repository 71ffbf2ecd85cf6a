package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters for the lead orchestration flows.
type LeadMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	introCallsTotal    *prometheus.CounterVec
	fallbackTotal      *prometheus.CounterVec
	bookingEventsTotal *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead submissions by outcome",
		}, []string{"outcome"}),
		introCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "outreach",
			Name:      "intro_calls_total",
			Help:      "Total intro calls by provider status",
		}, []string{"status"}),
		fallbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "outreach",
			Name:      "fallback_messages_total",
			Help:      "Total fallback messages by channel",
		}, []string{"channel"}),
		bookingEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "booking",
			Name:      "webhook_events_total",
			Help:      "Total booking webhook events by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.introCallsTotal, m.fallbackTotal, m.bookingEventsTotal)
	return m
}

func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveIntroCall(status string) {
	if m == nil {
		return
	}
	m.introCallsTotal.WithLabelValues(status).Inc()
}

func (m *LeadMetrics) ObserveFallback(channel string) {
	if m == nil {
		return
	}
	m.fallbackTotal.WithLabelValues(channel).Inc()
}

func (m *LeadMetrics) ObserveBookingEvent(result string) {
	if m == nil {
		return
	}
	m.bookingEventsTotal.WithLabelValues(result).Inc()
}
