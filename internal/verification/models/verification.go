// Package models defines the verification record and its pipeline, the staged
// clinical workflow that gates whether a registered donor's donation is
// accepted. Each stage is a pure transition over (verification, input) that
// returns the next state plus the cross-record effects the caller must apply
// in the same unit of work.
package models

import (
	"time"

	id "hemocamp/pkg/domain"
)

// Verification maps 1:1 to a Donation and is created atomically with it.
// Only the pipeline's own transitions mutate it.
type Verification struct {
	ID               id.VerificationID `json:"id"`
	DonationID       id.DonationID     `json:"donation_id"`
	DonorID          id.DonorID        `json:"donor_id"`
	CampID           id.CampID         `json:"camp_id"`
	VerifierID       id.StaffID        `json:"verifier_id"`
	Status           VerificationStatus `json:"status"`
	MedicalChecks    MedicalChecks     `json:"medical_checks"`
	HealthScreening  HealthScreening   `json:"health_screening"`
	DonationDetails  *DonationDetails  `json:"donation_details,omitempty"`
	PostDonationCare *PostDonationCare `json:"post_donation_care,omitempty"`
	RejectionReason  string            `json:"rejection_reason,omitempty"`

	CertificateStatus CertificateStatus `json:"certificate_status"`
	CertificateURL    string            `json:"certificate_url,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewVerification creates a pending verification for a freshly created
// donation.
func NewVerification(
	verificationID id.VerificationID,
	donationID id.DonationID,
	donorID id.DonorID,
	campID id.CampID,
	verifierID id.StaffID,
	now time.Time,
) *Verification {
	return &Verification{
		ID:                verificationID,
		DonationID:        donationID,
		DonorID:           donorID,
		CampID:            campID,
		VerifierID:        verifierID,
		Status:            StatusPending,
		CertificateStatus: CertificateNone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// CertificateOutstanding reports whether a completed verification still needs
// an issuance attempt.
func (v *Verification) CertificateOutstanding() bool {
	return v.Status == StatusCompleted && v.CertificateStatus != CertificateIssued
}
