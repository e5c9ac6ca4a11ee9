package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	audit "loanapproval/pkg/platform/audit"
	"loanapproval/pkg/platform/sentinel"
)

// InMemoryStore keeps audit records per table in process memory. Used for
// local development and tests; retention is enforced by DeleteExpired.
type InMemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]audit.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tables: make(map[string]map[string]audit.Record)}
}

func (s *InMemoryStore) Put(_ context.Context, table string, rec audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[table]
	if !ok {
		t = make(map[string]audit.Record)
		s.tables[table] = t
	}
	t[rec.LoanID] = rec
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, table, loanID string) (*audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.tables[table][loanID]
	if !ok {
		return nil, fmt.Errorf("audit record %s: %w", loanID, sentinel.ErrNotFound)
	}
	return &rec, nil
}

// ListAll returns every record in table, in no particular order.
func (s *InMemoryStore) ListAll(_ context.Context, table string) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Record, 0, len(s.tables[table]))
	for _, rec := range s.tables[table] {
		out = append(out, rec)
	}
	return out, nil
}

func (s *InMemoryStore) DeleteExpired(_ context.Context, table string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, rec := range s.tables[table] {
		if rec.Expired(now) {
			delete(s.tables[table], id)
			n++
		}
	}
	return n, nil
}
