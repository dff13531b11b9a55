package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps queued notifications per recipient.
type InMemoryStore struct {
	mu    sync.RWMutex
	byRec map[uuid.UUID][]Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byRec: make(map[uuid.UUID][]Notification)}
}

func (s *InMemoryStore) Append(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byRec[n.RecipientID] = append(s.byRec[n.RecipientID], n)
	return nil
}

func (s *InMemoryStore) ListByRecipient(_ context.Context, recipientID uuid.UUID) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification{}, s.byRec[recipientID]...), nil
}
