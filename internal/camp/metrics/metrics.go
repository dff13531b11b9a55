package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for camp lifecycle operations.
type Metrics struct {
	Created     prometheus.Counter
	Transitions *prometheus.CounterVec
}

// New creates a new Metrics instance with all camp metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemocamp_camps_created_total",
			Help: "Total number of camps submitted by organizers",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hemocamp_camp_transitions_total",
			Help: "Total number of camp lifecycle transitions, by target status",
		}, []string{"status"}),
	}
}

// IncrementCreated records a camp submission.
func (m *Metrics) IncrementCreated() { m.Created.Inc() }

// IncrementTransition records a lifecycle transition into the given status.
func (m *Metrics) IncrementTransition(status string) {
	m.Transitions.WithLabelValues(status).Inc()
}
