package models

import (
	"time"

	domainerrors "hemocamp/pkg/domain-errors"
)

// EffectKind tags a cross-record side effect produced by a transition.
type EffectKind string

const (
	// EffectCancelDonation cancels the linked donation with the rejection
	// reason. Applied in the same unit of work as the rejection.
	EffectCancelDonation EffectKind = "cancel_donation"
	// EffectMarkDonationInProgress moves the linked donation to in_progress
	// and attaches the blood-bag number.
	EffectMarkDonationInProgress EffectKind = "mark_donation_in_progress"
	// EffectCompleteDonation completes the linked donation at the given time.
	EffectCompleteDonation EffectKind = "complete_donation"
	// EffectAppendActualDonor adds the donor to the camp's actual-donor set.
	// Set semantics; re-adding is a no-op.
	EffectAppendActualDonor EffectKind = "append_actual_donor"
	// EffectUpdateDonorLastDonation stamps the donor profile with the
	// completion time.
	EffectUpdateDonorLastDonation EffectKind = "update_donor_last_donation"
	// EffectRequestCertificate asks the external issuer for a certificate.
	// Best-effort, applied after commit.
	EffectRequestCertificate EffectKind = "request_certificate"
	// EffectQueueRejectionNotice queues a rejection notification for the
	// donor. Best-effort, applied after commit.
	EffectQueueRejectionNotice EffectKind = "queue_rejection_notice"
	// EffectQueueCompletionNotice queues a completion notification for the
	// donor. Best-effort, applied after commit.
	EffectQueueCompletionNotice EffectKind = "queue_completion_notice"
)

// Effect is one side effect a transition requires. The pipeline itself never
// touches other records; the service applies effects so every transition's
// footprint is visible in one place.
type Effect struct {
	Kind           EffectKind
	Reason         string
	BloodBagNumber string
	At             time.Time
}

func errTerminal(status VerificationStatus) error {
	return domainerrors.New(domainerrors.CodeInvalidState, "verification is "+string(status)).
		WithDetail("status", string(status))
}

// ApplyMedicalChecks merges the supplied vitals and re-evaluates eligibility.
// An ineligible result rejects the verification and emits the donation
// cancellation and rejection notice; this is not an error, the caller gets
// the rejected state back. A submission against an already-rejected
// verification returns the rejected state with no effects, so retries are
// idempotent while the rejection stays irreversible. Legal only while
// pending.
func ApplyMedicalChecks(v Verification, input MedicalChecks, rule EligibilityRule, now time.Time) (Verification, []Effect, error) {
	if v.Status == StatusRejected {
		return v, nil, nil
	}
	if v.Status != StatusPending {
		return v, nil, errTerminal(v.Status)
	}
	v.MedicalChecks = v.MedicalChecks.Merge(input)
	v.UpdatedAt = now
	return evaluate(v, rule, now)
}

// ApplyHealthScreening merges the questionnaire answers and re-evaluates
// eligibility, with the same reject-on-ineligible and idempotent
// already-rejected behavior as ApplyMedicalChecks. Legal only while pending.
func ApplyHealthScreening(v Verification, input HealthScreening, rule EligibilityRule, now time.Time) (Verification, []Effect, error) {
	if v.Status == StatusRejected {
		return v, nil, nil
	}
	if v.Status != StatusPending {
		return v, nil, errTerminal(v.Status)
	}
	v.HealthScreening = v.HealthScreening.Merge(input)
	v.UpdatedAt = now
	return evaluate(v, rule, now)
}

func evaluate(v Verification, rule EligibilityRule, now time.Time) (Verification, []Effect, error) {
	decision := rule.Evaluate(v.MedicalChecks, v.HealthScreening)
	if decision.Eligible {
		return v, nil, nil
	}
	v.Status = StatusRejected
	v.RejectionReason = decision.Reason
	effects := []Effect{
		{Kind: EffectCancelDonation, Reason: decision.Reason, At: now},
		{Kind: EffectQueueRejectionNotice, Reason: decision.Reason, At: now},
	}
	return v, effects, nil
}

// ApplyDonationDetails records the draw and approves the verification,
// moving the donation to in_progress with the bag attached. The caller must
// have reserved the blood-bag number for global uniqueness before invoking
// this. Legal only while pending.
func ApplyDonationDetails(v Verification, bloodBagNumber string, now time.Time) (Verification, []Effect, error) {
	if bloodBagNumber == "" {
		return v, nil, domainerrors.New(domainerrors.CodeValidation, "blood bag number is required")
	}
	if v.Status != StatusPending {
		return v, nil, errTerminal(v.Status)
	}
	v.Status = StatusApproved
	v.DonationDetails = &DonationDetails{
		BloodBagNumber: bloodBagNumber,
		StartedAt:      now,
	}
	v.UpdatedAt = now
	effects := []Effect{
		{Kind: EffectMarkDonationInProgress, BloodBagNumber: bloodBagNumber, At: now},
	}
	return v, effects, nil
}

// ApplyCompletion closes out an approved verification. Re-invoking it on an
// already-completed verification returns the current state with no effects,
// so retried requests cannot double-apply side effects.
func ApplyCompletion(v Verification, care PostDonationCare, complications []string, now time.Time) (Verification, []Effect, error) {
	if v.Status == StatusCompleted {
		return v, nil, nil
	}
	if v.Status != StatusApproved {
		return v, nil, errTerminal(v.Status)
	}
	v.Status = StatusCompleted
	v.PostDonationCare = &care
	v.CompletedAt = &now
	v.UpdatedAt = now
	v.CertificateStatus = CertificatePending
	if v.DonationDetails != nil {
		details := *v.DonationDetails
		ended := now
		details.EndedAt = &ended
		details.Complications = append(append([]string(nil), details.Complications...), complications...)
		v.DonationDetails = &details
	}
	effects := []Effect{
		{Kind: EffectCompleteDonation, At: now},
		{Kind: EffectAppendActualDonor, At: now},
		{Kind: EffectUpdateDonorLastDonation, At: now},
		{Kind: EffectRequestCertificate, At: now},
		{Kind: EffectQueueCompletionNotice, At: now},
	}
	return v, effects, nil
}
