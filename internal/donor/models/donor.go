// Package models defines donor profiles. The profile is the authority on a
// donor's blood type and last completed donation; donations snapshot the
// blood type at verification start rather than referencing it live.
package models

import (
	"time"

	"hemocamp/pkg/domain"
)

// Donor is a registered donor profile.
type Donor struct {
	ID             domain.DonorID
	FullName       string
	BloodType      domain.BloodType
	LastDonationAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
