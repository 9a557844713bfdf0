package metrics

import "github.com/prometheus/client_golang/prometheus"

// Booking outcomes recorded by ObserveBooking.
const (
	OutcomeBooked     = "booked"
	OutcomeConflict   = "conflict"
	OutcomeRejected   = "rejected"
	OutcomeStoreError = "store_error"
)

// SchedulingMetrics exposes counters/histograms for availability and booking flows.
type SchedulingMetrics struct {
	slotsOffered     prometheus.Histogram
	malformedEntries *prometheus.CounterVec
	bookingsTotal    *prometheus.CounterVec
	cancellations    prometheus.Counter
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		slotsOffered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eclinic",
			Subsystem: "availability",
			Name:      "slots_offered",
			Help:      "Number of free slots returned per availability request",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 200},
		}),
		malformedEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eclinic",
			Subsystem: "availability",
			Name:      "malformed_schedule_entries_total",
			Help:      "Schedule entries skipped because they are not HH:mm",
		}, []string{"weekday"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eclinic",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eclinic",
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Appointments moved to CANCELLED",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotsOffered, m.malformedEntries, m.bookingsTotal, m.cancellations)
	return m
}

func (m *SchedulingMetrics) ObserveSlotsOffered(n int) {
	if m == nil {
		return
	}
	m.slotsOffered.Observe(float64(n))
}

func (m *SchedulingMetrics) ObserveMalformedEntry(weekday string) {
	if m == nil {
		return
	}
	m.malformedEntries.WithLabelValues(weekday).Inc()
}

func (m *SchedulingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *SchedulingMetrics) ObserveCancellation() {
	if m == nil {
		return
	}
	m.cancellations.Inc()
}
