// Package store persists verification records. Both implementations return
// sentinel errors; the service layer translates them into domain errors.
package store

import (
	"context"
	"sync"

	"hemocamp/internal/verification/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
)

// InMemory keeps verifications in a map. Blood-bag uniqueness is checked on
// every write, mirroring the postgres partial unique index.
type InMemory struct {
	mu      sync.RWMutex
	entries map[domain.VerificationID]models.Verification
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[domain.VerificationID]models.Verification)}
}

func (s *InMemory) Create(_ context.Context, v *models.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[v.ID]; ok {
		return sentinel.ErrConflict
	}
	s.entries[v.ID] = clone(*v)
	return nil
}

func (s *InMemory) Update(_ context.Context, v *models.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[v.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if bag := bagNumber(v); bag != "" {
		for otherID, other := range s.entries {
			if otherID != v.ID && bagNumber(&other) == bag {
				return sentinel.ErrAlreadyUsed
			}
		}
	}
	s.entries[v.ID] = clone(*v)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.VerificationID) (*models.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := clone(v)
	return &copied, nil
}

// FindByIDForUpdate matches the postgres row-locking read. The in-memory
// store needs no lock of its own: units of work run under the SerialRunner,
// which already admits one transaction at a time.
func (s *InMemory) FindByIDForUpdate(ctx context.Context, id domain.VerificationID) (*models.Verification, error) {
	return s.FindByID(ctx, id)
}

// FindByDonationID returns the verification paired with a donation. The
// pairing is 1:1.
func (s *InMemory) FindByDonationID(_ context.Context, donationID domain.DonationID) (*models.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.entries {
		if v.DonationID == donationID {
			copied := clone(v)
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func bagNumber(v *models.Verification) string {
	if v.DonationDetails == nil {
		return ""
	}
	return v.DonationDetails.BloodBagNumber
}

// clone deep-copies the pointer payloads so callers cannot alias stored state.
func clone(v models.Verification) models.Verification {
	if v.DonationDetails != nil {
		details := *v.DonationDetails
		details.Complications = append([]string(nil), details.Complications...)
		if details.EndedAt != nil {
			ended := *details.EndedAt
			details.EndedAt = &ended
		}
		v.DonationDetails = &details
	}
	if v.PostDonationCare != nil {
		care := *v.PostDonationCare
		v.PostDonationCare = &care
	}
	if v.CompletedAt != nil {
		completed := *v.CompletedAt
		v.CompletedAt = &completed
	}
	return v
}
