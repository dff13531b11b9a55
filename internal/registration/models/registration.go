// Package models defines the registration ledger entries.
package models

import (
	"time"

	id "hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
)

// EligibilityCooldown is the wait after a completed donation before the same
// donor may register again.
const EligibilityCooldown = 90 * 24 * time.Hour

// RegistrationStatus is the ledger entry state.
type RegistrationStatus string

const (
	StatusRegistered RegistrationStatus = "registered"
	StatusDonated    RegistrationStatus = "donated"
	StatusCancelled  RegistrationStatus = "cancelled"
)

// Registration is a donor's claim on a camp slot.
//
// Invariants:
//   - at most one non-cancelled registration per (donor, camp) pair
//   - at most one registered-status registration per donor across all camps
//   - NextEligibleAt is set exactly when the entry flips to donated
type Registration struct {
	ID             id.RegistrationID  `json:"id"`
	DonorID        id.DonorID         `json:"donor_id"`
	CampID         id.CampID          `json:"camp_id"`
	Status         RegistrationStatus `json:"status"`
	RegisteredAt   time.Time          `json:"registered_at"`
	DonatedAt      *time.Time         `json:"donated_at,omitempty"`
	NextEligibleAt *time.Time         `json:"next_eligible_at,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NewRegistration creates a ledger entry in the registered state.
func NewRegistration(regID id.RegistrationID, donorID id.DonorID, campID id.CampID, now time.Time) *Registration {
	return &Registration{
		ID:           regID,
		DonorID:      donorID,
		CampID:       campID,
		Status:       StatusRegistered,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
}

// IsActive reports whether the entry counts against camp capacity.
func (r *Registration) IsActive() bool {
	return r.Status != StatusCancelled
}

// CanCancel checks that the entry is still cancellable. A registration in
// verification (status donated) must be refused, not silently ignored.
func (r *Registration) CanCancel() error {
	switch r.Status {
	case StatusRegistered:
		return nil
	case StatusDonated:
		return dErrors.New(dErrors.CodeInvalidState, "registration is already in verification")
	default:
		return dErrors.New(dErrors.CodeInvalidState, "registration is already cancelled")
	}
}

// ApplyCancellation removes the entry from capacity accounting.
// Call CanCancel first to validate the transition.
func (r *Registration) ApplyCancellation(now time.Time) {
	r.Status = StatusCancelled
	r.UpdatedAt = now
}

// MarkDonated flips the entry when verification starts: the slot is consumed
// and the donor's cooldown window opens.
func (r *Registration) MarkDonated(now time.Time) {
	donatedAt := now
	nextEligible := now.Add(EligibilityCooldown)
	r.Status = StatusDonated
	r.DonatedAt = &donatedAt
	r.NextEligibleAt = &nextEligible
	r.UpdatedAt = now
}
