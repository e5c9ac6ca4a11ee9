package audit

import (
	"context"
	"time"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Writer,Reader,Sweeper

// Writer appends a decision record to the named table.
type Writer interface {
	Put(ctx context.Context, table string, rec Record) error
}

// Reader fetches the most recent record for a loan. Implementations return
// sentinel.ErrNotFound (wrapped) when nothing is stored.
type Reader interface {
	Get(ctx context.Context, table, loanID string) (*Record, error)
}

// Store is a backend that can both write and read.
type Store interface {
	Writer
	Reader
}

// Sweeper deletes records whose TTL has passed. Only backends without native
// expiry implement it.
type Sweeper interface {
	DeleteExpired(ctx context.Context, table string, now time.Time) (int64, error)
}
