// Package domain defines the typed identifiers shared across modules.
//
// Each entity gets its own UUID-backed type so a CampID can never be passed
// where a DonorID is expected. Parse helpers validate at trust boundaries:
// IDs must be valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "hemocamp/pkg/domain-errors"
)

type (
	// DonorID identifies a donor profile.
	DonorID uuid.UUID
	// CampID identifies a blood-donation camp.
	CampID uuid.UUID
	// RegistrationID identifies a donor's claim on a camp slot.
	RegistrationID uuid.UUID
	// DonationID identifies a physical donation event.
	DonationID uuid.UUID
	// VerificationID identifies the staged workflow gating a donation.
	VerificationID uuid.UUID
	// StaffID identifies an organizer or administrator.
	StaffID uuid.UUID
)

func (id DonorID) String() string        { return uuid.UUID(id).String() }
func (id CampID) String() string         { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id DonationID) String() string     { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }
func (id StaffID) String() string        { return uuid.UUID(id).String() }

func (id DonorID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CampID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DonationID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id VerificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id StaffID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

// NewDonorID returns a fresh random DonorID.
func NewDonorID() DonorID { return DonorID(uuid.New()) }

// NewCampID returns a fresh random CampID.
func NewCampID() CampID { return CampID(uuid.New()) }

// NewRegistrationID returns a fresh random RegistrationID.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// NewDonationID returns a fresh random DonationID.
func NewDonationID() DonationID { return DonationID(uuid.New()) }

// NewVerificationID returns a fresh random VerificationID.
func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }

// NewStaffID returns a fresh random StaffID.
func NewStaffID() StaffID { return StaffID(uuid.New()) }

func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseDonorID validates and converts a string into a DonorID.
func ParseDonorID(raw string) (DonorID, error) {
	parsed, err := parseUUID(raw, "donor")
	if err != nil {
		return DonorID{}, err
	}
	return DonorID(parsed), nil
}

// ParseCampID validates and converts a string into a CampID.
func ParseCampID(raw string) (CampID, error) {
	parsed, err := parseUUID(raw, "camp")
	if err != nil {
		return CampID{}, err
	}
	return CampID(parsed), nil
}

// ParseRegistrationID validates and converts a string into a RegistrationID.
func ParseRegistrationID(raw string) (RegistrationID, error) {
	parsed, err := parseUUID(raw, "registration")
	if err != nil {
		return RegistrationID{}, err
	}
	return RegistrationID(parsed), nil
}

// ParseDonationID validates and converts a string into a DonationID.
func ParseDonationID(raw string) (DonationID, error) {
	parsed, err := parseUUID(raw, "donation")
	if err != nil {
		return DonationID{}, err
	}
	return DonationID(parsed), nil
}

// ParseVerificationID validates and converts a string into a VerificationID.
func ParseVerificationID(raw string) (VerificationID, error) {
	parsed, err := parseUUID(raw, "verification")
	if err != nil {
		return VerificationID{}, err
	}
	return VerificationID(parsed), nil
}

// ParseStaffID validates and converts a string into a StaffID.
func ParseStaffID(raw string) (StaffID, error) {
	parsed, err := parseUUID(raw, "staff")
	if err != nil {
		return StaffID{}, err
	}
	return StaffID(parsed), nil
}
