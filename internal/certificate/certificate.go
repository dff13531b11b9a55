// Package certificate is the boundary to the external certificate
// generation service. The pipeline treats it as best-effort: issuance
// failures never fail the completion transition, they only leave the
// verification's certificate flag unset for an out-of-band retry.
package certificate

import (
	"context"
	"time"

	id "hemocamp/pkg/domain"
)

// IssueRequest identifies the completed donation to certify.
type IssueRequest struct {
	DonorID        id.DonorID        `json:"donor_id"`
	CampID         id.CampID         `json:"camp_id"`
	VerificationID id.VerificationID `json:"verification_id"`
	DonationDate   time.Time         `json:"donation_date"`
}

// IssueResult is the generated artifact reference.
type IssueResult struct {
	URL string `json:"url"`
}

// Issuer requests certificate generation. Implementations must bound the
// call with their own timeout; callers treat any error as failed-but-non-fatal.
type Issuer interface {
	Issue(ctx context.Context, req IssueRequest) (IssueResult, error)
}

// Prober is implemented by issuers that can attempt issuance even while
// degraded (circuit open). Administrator-driven retries prefer it so a
// recovered backend gets probed.
type Prober interface {
	Probe(ctx context.Context, req IssueRequest) (IssueResult, error)
}
