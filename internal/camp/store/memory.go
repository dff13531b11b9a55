package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"hemocamp/internal/camp/models"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/sentinel"
)

// InMemory keeps camps and the actual-donor sets in maps. Atomicity across
// stores comes from the SerialRunner unit of work; the local mutex guards
// direct (non-transactional) reads.
type InMemory struct {
	mu     sync.RWMutex
	camps  map[domain.CampID]models.Camp
	donors map[domain.CampID]map[domain.DonorID]time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		camps:  make(map[domain.CampID]models.Camp),
		donors: make(map[domain.CampID]map[domain.DonorID]time.Time),
	}
}

func (s *InMemory) Create(_ context.Context, camp *models.Camp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.camps[camp.ID]; exists {
		return sentinel.ErrConflict
	}
	s.camps[camp.ID] = *camp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CampID) (*models.Camp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	camp, ok := s.camps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := camp
	return &copied, nil
}

// FindByIDForUpdate matches the postgres store's row-locking read. In memory
// the SerialRunner already serializes the whole unit of work, so this is a
// plain read.
func (s *InMemory) FindByIDForUpdate(ctx context.Context, id domain.CampID) (*models.Camp, error) {
	return s.FindByID(ctx, id)
}

// Execute atomically validates and mutates a camp under the store lock.
func (s *InMemory) Execute(_ context.Context, id domain.CampID, validate func(*models.Camp) error, mutate func(*models.Camp)) (*models.Camp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	camp, ok := s.camps[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&camp); err != nil {
		return nil, err
	}
	mutate(&camp)
	s.camps[id] = camp
	copied := camp
	return &copied, nil
}

func (s *InMemory) ListByStatus(_ context.Context, status models.CampStatus) ([]*models.Camp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var camps []*models.Camp
	for _, camp := range s.camps {
		if camp.Status == status {
			copied := camp
			camps = append(camps, &copied)
		}
	}
	sort.Slice(camps, func(i, j int) bool { return camps[i].StartsAt.Before(camps[j].StartsAt) })
	return camps, nil
}

// AddActualDonor appends the donor to the camp's actual-donor set. Set
// semantics: adding an existing member is a no-op and reports false.
func (s *InMemory) AddActualDonor(_ context.Context, campID domain.CampID, donorID domain.DonorID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.camps[campID]; !ok {
		return false, sentinel.ErrNotFound
	}
	set, ok := s.donors[campID]
	if !ok {
		set = make(map[domain.DonorID]time.Time)
		s.donors[campID] = set
	}
	if _, member := set[donorID]; member {
		return false, nil
	}
	set[donorID] = at
	return true, nil
}

func (s *InMemory) CountActualDonors(_ context.Context, campID domain.CampID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.donors[campID]), nil
}

func (s *InMemory) IsActualDonor(_ context.Context, campID domain.CampID, donorID domain.DonorID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, member := s.donors[campID][donorID]
	return member, nil
}
