package domain

import (
	"errors"
	"sync"
)

// ErrNotLoggedIn is returned when a credit-affecting operation runs with no
// active player identity. This implies a caller bug and is never swallowed.
var ErrNotLoggedIn = errors.New("no active player")

// CreditStore is the player-credits collaborator. The engine never computes
// a balance itself, only reads it and requests changes.
type CreditStore interface {
	Credits(playerID string) (int, error)
	SetCredits(playerID string, amount int) error
}

// InMemoryCreditStore is an in-memory implementation of the CreditStore
// interface, used by the server in place of a remote profile service.
type InMemoryCreditStore struct {
	balances map[string]int
	mutex    sync.RWMutex
}

// NewInMemoryCreditStore creates a new in-memory credit store.
func NewInMemoryCreditStore() *InMemoryCreditStore {
	return &InMemoryCreditStore{
		balances: make(map[string]int),
	}
}

// Credits returns the player's balance.
func (s *InMemoryCreditStore) Credits(playerID string) (int, error) {
	if playerID == "" {
		return 0, ErrNotLoggedIn
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.balances[playerID], nil
}

// SetCredits replaces the player's balance.
func (s *InMemoryCreditStore) SetCredits(playerID string, amount int) error {
	if playerID == "" {
		return ErrNotLoggedIn
	}
	if amount < 0 {
		return errors.New("credits cannot go negative")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.balances[playerID] = amount
	return nil
}
