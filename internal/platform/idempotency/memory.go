package idempotency

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and local wiring. Insert is
// serialized by a mutex, which models the uniqueness constraint of the
// relational store within one process.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func compositeKey(tenantID uuid.UUID, key string, method string, path string) string {
	return tenantID.String() + "|" + strings.TrimSpace(key) + "|" + method + "|" + path
}

func (s *MemoryStore) Find(_ context.Context, tenantID uuid.UUID, key string, method string, path string, now time.Time) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[compositeKey(tenantID, key, method, path)]
	if !ok || !record.ExpiresAt.After(now) {
		return Record{}, false, nil
	}
	return record, true, nil
}

func (s *MemoryStore) Insert(_ context.Context, record Record) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := compositeKey(record.TenantID, record.Key, record.Method, record.Path)
	if existing, ok := s.records[id]; ok && existing.ExpiresAt.After(record.CreatedAt) {
		return existing, false, nil
	}
	s.records[id] = record
	return record, true, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, record := range s.records {
		if !record.ExpiresAt.After(now) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}
