// Package bloodbag implements the check-and-reserve step for blood-bag
// identifiers. Two organizers can submit the same bag number concurrently for
// different verifications; the reservation makes exactly one of them win
// before either touches the verification record. The database unique index is
// the final backstop.
package bloodbag

import (
	"context"
	"sync"

	"hemocamp/pkg/platform/sentinel"
)

// Reservations atomically claims bag numbers. Reserve returns
// sentinel.ErrAlreadyUsed when the number is already claimed; Release undoes
// a claim whose transaction failed to commit.
type Reservations interface {
	Reserve(ctx context.Context, bagNumber string) error
	Release(ctx context.Context, bagNumber string) error
}

// InMemory tracks reservations in a set.
type InMemory struct {
	mu   sync.Mutex
	used map[string]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{used: make(map[string]struct{})}
}

func (r *InMemory) Reserve(_ context.Context, bagNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.used[bagNumber]; ok {
		return sentinel.ErrAlreadyUsed
	}
	r.used[bagNumber] = struct{}{}
	return nil
}

func (r *InMemory) Release(_ context.Context, bagNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.used, bagNumber)
	return nil
}
