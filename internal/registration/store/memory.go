package store

import (
	"context"
	"sync"

	"hemocamp/internal/registration/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
)

// InMemory keeps ledger entries in a map. The registration gate's atomicity
// comes from the SerialRunner unit of work; the local mutex guards direct
// reads. Uniqueness checks here are the backstop for the service's
// precondition sequence, mirroring the postgres partial unique indexes.
type InMemory struct {
	mu      sync.RWMutex
	entries map[domain.RegistrationID]models.Registration
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[domain.RegistrationID]models.Registration)}
}

func (s *InMemory) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entries {
		if existing.DonorID == reg.DonorID && existing.CampID == reg.CampID && existing.IsActive() {
			return sentinel.ErrAlreadyUsed
		}
		if existing.DonorID == reg.DonorID && existing.Status == models.StatusRegistered {
			return sentinel.ErrConflict
		}
	}
	s.entries[reg.ID] = *reg
	return nil
}

func (s *InMemory) Update(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[reg.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.entries[reg.ID] = *reg
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.entries[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := reg
	return &copied, nil
}

// FindActiveByDonorAndCamp returns the non-cancelled entry for the pair.
func (s *InMemory) FindActiveByDonorAndCamp(_ context.Context, donorID domain.DonorID, campID domain.CampID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, reg := range s.entries {
		if reg.DonorID == donorID && reg.CampID == campID && reg.IsActive() {
			copied := reg
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// FindActiveByDonorAndCampForUpdate matches the postgres locking read. Under
// the SerialRunner the unit of work is already exclusive, so a plain read
// carries the same guarantee.
func (s *InMemory) FindActiveByDonorAndCampForUpdate(ctx context.Context, donorID domain.DonorID, campID domain.CampID) (*models.Registration, error) {
	return s.FindActiveByDonorAndCamp(ctx, donorID, campID)
}

// FindRegisteredByDonor returns the donor's single registered-status entry.
func (s *InMemory) FindRegisteredByDonor(_ context.Context, donorID domain.DonorID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, reg := range s.entries {
		if reg.DonorID == donorID && reg.Status == models.StatusRegistered {
			copied := reg
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// FindLatestDonatedByDonor returns the donor's most recent donated entry.
func (s *InMemory) FindLatestDonatedByDonor(_ context.Context, donorID domain.DonorID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Registration
	for _, reg := range s.entries {
		if reg.DonorID != donorID || reg.Status != models.StatusDonated || reg.DonatedAt == nil {
			continue
		}
		if latest == nil || reg.DonatedAt.After(*latest.DonatedAt) {
			copied := reg
			latest = &copied
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return latest, nil
}

// CountActiveByCamp counts non-cancelled entries, the camp's registration
// projection.
func (s *InMemory) CountActiveByCamp(_ context.Context, campID domain.CampID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, reg := range s.entries {
		if reg.CampID == campID && reg.IsActive() {
			count++
		}
	}
	return count, nil
}
