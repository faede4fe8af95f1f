package scheduling

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for scheduling outcomes. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	availabilityTotal *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
	transitionsTotal  *prometheus.CounterVec
	releasesTotal     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsphere",
			Subsystem: "scheduling",
			Name:      "availability_queries_total",
			Help:      "Availability queries by outcome",
		}, []string{"outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsphere",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsphere",
			Subsystem: "scheduling",
			Name:      "status_transitions_total",
			Help:      "Appointment status transitions by target status",
		}, []string{"status"}),
		releasesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsphere",
			Subsystem: "scheduling",
			Name:      "slot_releases_total",
			Help:      "Ledger releases by source and result",
		}, []string{"source", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityTotal, m.bookingsTotal, m.transitionsTotal, m.releasesTotal)
	return m
}

func (m *Metrics) ObserveAvailability(outcome string) {
	if m == nil {
		return
	}
	m.availabilityTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRelease(source string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.releasesTotal.WithLabelValues(source, result).Inc()
}
