package models

// VerificationStatus is the pipeline state. Rejected and completed are
// terminal and never reopened.
type VerificationStatus string

const (
	StatusPending   VerificationStatus = "pending"
	StatusApproved  VerificationStatus = "approved"
	StatusRejected  VerificationStatus = "rejected"
	StatusCompleted VerificationStatus = "completed"
)

var verificationTransitions = map[VerificationStatus][]VerificationStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

// CanTransitionTo reports whether the edge from s to target is legal.
func (s VerificationStatus) CanTransitionTo(target VerificationStatus) bool {
	for _, allowed := range verificationTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s admits no further transitions.
func (s VerificationStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// CertificateStatus tracks the best-effort issuance outcome. It never gates a
// pipeline transition.
type CertificateStatus string

const (
	CertificateNone    CertificateStatus = "none"
	CertificatePending CertificateStatus = "pending"
	CertificateIssued  CertificateStatus = "issued"
	CertificateFailed  CertificateStatus = "failed"
)
