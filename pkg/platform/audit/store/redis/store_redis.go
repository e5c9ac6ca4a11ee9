package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	audit "loanapproval/pkg/platform/audit"
	"loanapproval/pkg/platform/sentinel"
)

// Redis key prefix for audit records: audit:<table>:<loan_id>
const keyPrefix = "audit:"

// Store keeps each audit record as a JSON string whose key expires at the
// record's TTL, so Redis enforces retention itself.
type Store struct {
	client *redis.Client
}

// New constructs a Redis-backed audit store. The client lifecycle is managed
// by the caller.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(table, loanID string) string {
	return keyPrefix + table + ":" + loanID
}

// Put writes the record and sets its absolute expiry atomically.
func (s *Store) Put(ctx context.Context, table string, rec audit.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	k := key(table, rec.LoanID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, k, raw, 0)
	pipe.ExpireAt(ctx, k, rec.ExpiresAt())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis write %s: %w", k, err)
	}
	return nil
}

// Get returns sentinel.ErrNotFound once the key is missing or expired.
func (s *Store) Get(ctx context.Context, table, loanID string) (*audit.Record, error) {
	raw, err := s.client.Get(ctx, key(table, loanID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("audit record %s: %w", loanID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis read %s: %w", loanID, err)
	}
	var rec audit.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal audit record %s: %w", loanID, err)
	}
	return &rec, nil
}
