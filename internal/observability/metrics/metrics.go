package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters for the appointment lifecycle and its side
// effects. All observe methods are nil-safe so callers can run unmetered.
type IntakeMetrics struct {
	transitionsTotal   *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	dashboardTotal     *prometheus.CounterVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carepulse",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Total appointment lifecycle operations",
		}, []string{"intent", "status"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carepulse",
			Subsystem: "notifications",
			Name:      "dispatched_total",
			Help:      "Total notification dispatch attempts",
		}, []string{"channel", "status"}),
		dashboardTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carepulse",
			Subsystem: "admin",
			Name:      "dashboard_requests_total",
			Help:      "Total admin dashboard reads by cache outcome",
		}, []string{"cache"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.notificationsTotal, m.dashboardTotal)
	return m
}

func (m *IntakeMetrics) ObserveTransition(intent, status string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(intent, status).Inc()
}

func (m *IntakeMetrics) ObserveNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(channel, status).Inc()
}

func (m *IntakeMetrics) ObserveDashboard(cacheOutcome string) {
	if m == nil {
		return
	}
	m.dashboardTotal.WithLabelValues(cacheOutcome).Inc()
}
