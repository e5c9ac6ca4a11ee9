//go:generate mockgen -source=audit.go -destination=mocks/mocks.go -package=mocks AuditPort,AuditReader

package ports

import (
	"context"

	"loanapproval/pkg/platform/audit"
)

// AuditPort persists a decision. It matches audit.Recorder but is defined here
// to maintain hexagonal boundaries.
type AuditPort interface {
	Record(ctx context.Context, loanID string, request, response any) error
}

// AuditReader looks up persisted decisions.
type AuditReader interface {
	Get(ctx context.Context, table, loanID string) (*audit.Record, error)
}
