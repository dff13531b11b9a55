package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration gate.
type Metrics struct {
	Admitted         prometheus.Counter
	Rejected         *prometheus.CounterVec
	Cancelled        prometheus.Counter
	RegisterDuration prometheus.Histogram
}

// New creates a new Metrics instance with all gate metrics registered.
func New() *Metrics {
	return &Metrics{
		Admitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemocamp_registrations_admitted_total",
			Help: "Total number of donors admitted to a camp",
		}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hemocamp_registrations_rejected_total",
			Help: "Total number of rejected registration attempts, by gate reason",
		}, []string{"reason"}),
		Cancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemocamp_registrations_cancelled_total",
			Help: "Total number of cancelled registrations",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hemocamp_register_duration_seconds",
			Help:    "Duration of the registration gate including its transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementAdmitted records a successful admission.
func (m *Metrics) IncrementAdmitted() { m.Admitted.Inc() }

// IncrementRejected records a gate rejection for the given reason.
func (m *Metrics) IncrementRejected(reason string) {
	m.Rejected.WithLabelValues(reason).Inc()
}

// IncrementCancelled records a cancellation.
func (m *Metrics) IncrementCancelled() { m.Cancelled.Inc() }

// ObserveRegister records the duration of a Register call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}
