// Package models defines the camp aggregate.
//
// A camp's registration and actual-donor counts are projections over the
// registration ledger and the camp_donors set; they are never stored as
// independently mutable fields, so the ledger stays the single authority on
// capacity accounting.
package models

import (
	"time"

	id "hemocamp/pkg/domain"
	dErrors "hemocamp/pkg/domain-errors"
)

// Camp is a scheduled blood-donation event.
//
// Invariants:
//   - Capacity is a positive integer and immutable after approval
//   - Donors may register only while Status is approved
//   - actualDonorCount <= registrationCount <= Capacity
type Camp struct {
	ID          id.CampID  `json:"id"`
	Name        string     `json:"name"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at"`
	Capacity    int        `json:"capacity"`
	Status      CampStatus `json:"status"`
	OrganizerID id.StaffID `json:"organizer_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Counters is the read-time projection derived from the ledger.
type Counters struct {
	Registrations int `json:"registrations"`
	ActualDonors  int `json:"actual_donors"`
}

// NewCamp validates organizer input and returns a camp awaiting approval.
func NewCamp(campID id.CampID, name, location string, startsAt, endsAt time.Time, capacity int, organizer id.StaffID, now time.Time) (*Camp, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "camp name cannot be empty")
	}
	if capacity <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "camp capacity must be positive")
	}
	if !endsAt.After(startsAt) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "camp must end after it starts")
	}
	if startsAt.Before(now) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "camp cannot be scheduled in the past")
	}
	return &Camp{
		ID:          campID,
		Name:        name,
		Location:    location,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Capacity:    capacity,
		Status:      CampStatusPending,
		OrganizerID: organizer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AcceptsRegistrations reports whether donors may currently register.
func (c *Camp) AcceptsRegistrations() bool {
	return c.Status == CampStatusApproved
}

// DatePassed reports whether the camp's scheduled window has ended.
func (c *Camp) DatePassed(now time.Time) bool {
	return now.After(c.EndsAt)
}

// CanApprove checks the pending → approved transition.
// Use with ApplyApproval in Execute callbacks.
func (c *Camp) CanApprove() error {
	if !c.Status.CanTransitionTo(CampStatusApproved) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "camp in status %q cannot be approved", c.Status)
	}
	return nil
}

// ApplyApproval transitions the camp to approved.
// Call CanApprove first to validate the transition.
func (c *Camp) ApplyApproval(now time.Time) {
	c.Status = CampStatusApproved
	c.UpdatedAt = now
}

// CanCancel checks the transition to cancelled.
func (c *Camp) CanCancel() error {
	if !c.Status.CanTransitionTo(CampStatusCancelled) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "camp in status %q cannot be cancelled", c.Status)
	}
	return nil
}

// ApplyCancellation transitions the camp to cancelled.
// Call CanCancel first to validate the transition.
func (c *Camp) ApplyCancellation(now time.Time) {
	c.Status = CampStatusCancelled
	c.UpdatedAt = now
}
