package store

import (
	"context"
	"sync"

	"hemocamp/internal/donation/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
)

// InMemory keeps donation records in a map.
type InMemory struct {
	mu        sync.RWMutex
	donations map[domain.DonationID]models.Donation
}

func NewInMemory() *InMemory {
	return &InMemory{donations: make(map[domain.DonationID]models.Donation)}
}

func (s *InMemory) Create(_ context.Context, donation *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.donations[donation.ID]; exists {
		return sentinel.ErrConflict
	}
	s.donations[donation.ID] = *donation
	return nil
}

func (s *InMemory) Update(_ context.Context, donation *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donations[donation.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.donations[donation.ID] = *donation
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.DonationID) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	donation, ok := s.donations[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := donation
	return &copied, nil
}
