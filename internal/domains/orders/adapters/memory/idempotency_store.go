package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps checkout keys in process memory.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *IdempotencyStore) Get(_ context.Context, userID, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[scopedKey(userID, key)]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := scopedKey(record.UserID, record.Key)
	if existing, ok := s.records[id]; ok {
		if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
			return &existing, ports.ErrIdempotencyConflict
		}
		return &existing, nil
	}

	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	s.records[id] = record
	return &record, nil
}

func scopedKey(userID, key string) string {
	return userID + "\x00" + key
}
