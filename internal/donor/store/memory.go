package store

import (
	"context"
	"sync"
	"time"

	"hemocamp/internal/donor/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
)

// InMemory keeps donor profiles in a map. Used in dev mode and unit tests.
type InMemory struct {
	mu     sync.RWMutex
	donors map[domain.DonorID]models.Donor
}

func NewInMemory() *InMemory {
	return &InMemory{donors: make(map[domain.DonorID]models.Donor)}
}

func (s *InMemory) Create(_ context.Context, donor *models.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.donors[donor.ID]; exists {
		return sentinel.ErrConflict
	}
	s.donors[donor.ID] = *donor
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.DonorID) (*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	donor, ok := s.donors[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := donor
	return &copied, nil
}

func (s *InMemory) SetLastDonation(_ context.Context, id domain.DonorID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	donor, ok := s.donors[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	donor.LastDonationAt = &at
	donor.UpdatedAt = at
	s.donors[id] = donor
	return nil
}
