package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	storage map[string]Wallet
}

// NewMemoryStore constructs an in-memory store for unit tests.
func NewMemoryStore() Store {
	return &memoryStore{storage: make(map[string]Wallet)}
}

func memKey(userID, currency string) string {
	return userID + "/" + currency
}

func (s *memoryStore) FindOrCreate(_ context.Context, userID, currency string) (Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memKey(userID, currency)
	if w, ok := s.storage[key]; ok {
		return w, nil
	}
	now := time.Now().UTC()
	w := Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Currency:  currency,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.storage[key] = w
	return w, nil
}

func (s *memoryStore) ByUser(_ context.Context, userID, currency string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.storage[memKey(userID, currency)]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}
