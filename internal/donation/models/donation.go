// Package models defines the donation record, the account of a physical
// donation event as distinct from the registration that preceded it.
package models

import (
	"time"

	id "hemocamp/pkg/domain"
)

// DonationStatus is the donation lifecycle state.
type DonationStatus string

const (
	StatusPending    DonationStatus = "pending"
	StatusInProgress DonationStatus = "in_progress"
	StatusCompleted  DonationStatus = "completed"
	StatusCancelled  DonationStatus = "cancelled"
)

// donationTransitions lists the legal edges. Completed and cancelled are
// terminal.
var donationTransitions = map[DonationStatus][]DonationStatus{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether the edge from s to target is legal.
func (s DonationStatus) CanTransitionTo(target DonationStatus) bool {
	for _, allowed := range donationTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Donation is created when verification starts and only mutated by the
// verification pipeline. BloodType is a snapshot of the donor profile taken
// at creation, not a live reference.
type Donation struct {
	ID             id.DonationID  `json:"id"`
	DonorID        id.DonorID     `json:"donor_id"`
	CampID         id.CampID      `json:"camp_id"`
	BloodType      id.BloodType   `json:"blood_type"`
	QuantityUnits  int            `json:"quantity_units"`
	Status         DonationStatus `json:"status"`
	BloodBagNumber string         `json:"blood_bag_number,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewDonation creates a pending donation with the donor's current blood type.
func NewDonation(donationID id.DonationID, donorID id.DonorID, campID id.CampID, bloodType id.BloodType, now time.Time) *Donation {
	return &Donation{
		ID:            donationID,
		DonorID:       donorID,
		CampID:        campID,
		BloodType:     bloodType,
		QuantityUnits: 1,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
