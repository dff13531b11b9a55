package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification pipeline.
type Metrics struct {
	Started            prometheus.Counter
	Rejected           *prometheus.CounterVec
	Completed          prometheus.Counter
	DuplicateBloodBags prometheus.Counter
	CertificateResults *prometheus.CounterVec
	CompleteDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		Started: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemocamp_verifications_started_total",
			Help: "Total number of verifications started",
		}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hemocamp_verifications_rejected_total",
			Help: "Total number of verifications rejected, by pipeline stage",
		}, []string{"stage"}),
		Completed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemocamp_verifications_completed_total",
			Help: "Total number of verifications completed",
		}),
		DuplicateBloodBags: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hemocamp_duplicate_blood_bags_total",
			Help: "Total number of rejected duplicate blood-bag submissions",
		}),
		CertificateResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hemocamp_certificate_requests_total",
			Help: "Total certificate issuance attempts, by outcome",
		}, []string{"outcome"}),
		CompleteDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hemocamp_verification_complete_duration_seconds",
			Help:    "Duration of the Complete transition including side effects",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementStarted records a started verification.
func (m *Metrics) IncrementStarted() { m.Started.Inc() }

// IncrementRejected records a rejection at the given pipeline stage.
func (m *Metrics) IncrementRejected(stage string) {
	m.Rejected.WithLabelValues(stage).Inc()
}

// IncrementCompleted records a completed verification.
func (m *Metrics) IncrementCompleted() { m.Completed.Inc() }

// IncrementDuplicateBloodBag records a refused duplicate bag number.
func (m *Metrics) IncrementDuplicateBloodBag() { m.DuplicateBloodBags.Inc() }

// IncrementCertificate records the outcome of an issuance attempt.
func (m *Metrics) IncrementCertificate(outcome string) {
	m.CertificateResults.WithLabelValues(outcome).Inc()
}

// ObserveComplete records the duration of a Complete call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveComplete(start time.Time) {
	m.CompleteDuration.Observe(time.Since(start).Seconds())
}
