package memory

import (
	"context"
	"sync"

	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
)

// LedgerStore is an in-process repository.LedgerStore. Contents are lost on
// restart.
type LedgerStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewLedgerStore creates an empty in-memory store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{data: make(map[string][]byte)}
}

func (s *LedgerStore) Get(_ context.Context, profileID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[profileID]
	if !ok {
		return nil, apperrors.NotFound("cart ledger", profileID)
	}
	return append([]byte(nil), payload...), nil
}

func (s *LedgerStore) Put(_ context.Context, profileID string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[profileID] = append([]byte(nil), payload...)
	return nil
}

func (s *LedgerStore) Delete(_ context.Context, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, profileID)
	return nil
}

func (s *LedgerStore) Ping(context.Context) error { return nil }

// Len returns the number of stored ledgers.
func (s *LedgerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
