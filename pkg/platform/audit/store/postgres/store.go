// Package postgres persists audit records in a PostgreSQL table keyed by
// (loan_id, written_at). PostgreSQL has no native TTL, so expired rows are
// removed by DeleteExpired, driven by the audit pruner.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	audit "loanapproval/pkg/platform/audit"
	"loanapproval/pkg/platform/audit/numeric"
	"loanapproval/pkg/platform/sentinel"
)

var columns = []string{"loan_id", "written_at", "request_data", "response_data", "ttl"}

type dbExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements audit.Store and audit.Sweeper on a pgx pool.
type Store struct {
	db dbExecutor
	sb sq.StatementBuilderType
}

// New creates a PostgreSQL audit store.
func New(pool *pgxpool.Pool) *Store {
	return newStore(pool)
}

func newStore(db dbExecutor) *Store {
	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func ident(table string) string {
	return pgx.Identifier{table}.Sanitize()
}

// EnsureTable creates the audit table and its TTL index when missing.
func (s *Store) EnsureTable(ctx context.Context, table string) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			loan_id       TEXT        NOT NULL,
			written_at    TIMESTAMPTZ NOT NULL,
			request_data  JSONB       NOT NULL,
			response_data JSONB       NOT NULL,
			ttl           BIGINT      NOT NULL,
			PRIMARY KEY (loan_id, written_at)
		)`, ident(table))
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create audit table %s: %w", table, err)
	}

	idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (ttl)`, ident(table+"_ttl_idx"), ident(table))
	if _, err := s.db.Exec(ctx, idx); err != nil {
		return fmt.Errorf("create ttl index on %s: %w", table, err)
	}
	return nil
}

// Put inserts one record.
func (s *Store) Put(ctx context.Context, table string, rec audit.Record) error {
	reqJSON, err := json.Marshal(numeric.ToJSON(rec.Request))
	if err != nil {
		return fmt.Errorf("marshal request_data: %w", err)
	}
	respJSON, err := json.Marshal(numeric.ToJSON(rec.Response))
	if err != nil {
		return fmt.Errorf("marshal response_data: %w", err)
	}

	query, args, err := s.sb.Insert(ident(table)).
		Columns(columns...).
		Values(rec.LoanID, rec.Timestamp, reqJSON, respJSON, rec.TTL).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit record %s: %w", rec.LoanID, err)
	}
	return nil
}

// Get returns the most recent record for loanID. Rows past their TTL are
// treated as absent even before the pruner removes them.
func (s *Store) Get(ctx context.Context, table, loanID string) (*audit.Record, error) {
	query, args, err := s.sb.Select(columns...).
		From(ident(table)).
		Where(sq.Eq{"loan_id": loanID}).
		Where(sq.Gt{"ttl": time.Now().Unix()}).
		OrderBy("written_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		rec      audit.Record
		reqJSON  []byte
		respJSON []byte
	)
	err = s.db.QueryRow(ctx, query, args...).Scan(&rec.LoanID, &rec.Timestamp, &reqJSON, &respJSON, &rec.TTL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("audit record %s: %w", loanID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select audit record %s: %w", loanID, err)
	}

	if rec.Request, err = decodeTree(reqJSON); err != nil {
		return nil, fmt.Errorf("audit record %s request_data: %w", loanID, err)
	}
	if rec.Response, err = decodeTree(respJSON); err != nil {
		return nil, fmt.Errorf("audit record %s response_data: %w", loanID, err)
	}
	return &rec, nil
}

// DeleteExpired removes rows whose ttl is at or before now.
func (s *Store) DeleteExpired(ctx context.Context, table string, now time.Time) (int64, error) {
	query, args, err := s.sb.Delete(ident(table)).
		Where(sq.LtOrEq{"ttl": now.Unix()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired from %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

func decodeTree(raw []byte) (map[string]any, error) {
	tree, err := numeric.DecodeObject(raw)
	if err != nil {
		return nil, err
	}
	conv, err := numeric.ToDecimal(tree)
	if err != nil {
		return nil, err
	}
	out, _ := conv.(map[string]any)
	return out, nil
}
