// Package auditbackend opens the audit store selected by configuration and
// owns its connections.
package auditbackend

import (
	"context"
	"fmt"
	"log/slog"

	"loanapproval/internal/platform/config"
	platformdynamo "loanapproval/internal/platform/dynamodb"
	platformkafka "loanapproval/internal/platform/kafka"
	platformpg "loanapproval/internal/platform/postgres"
	platformredis "loanapproval/internal/platform/redis"
	"loanapproval/pkg/platform/audit"
	auditdynamo "loanapproval/pkg/platform/audit/store/dynamodb"
	auditkafka "loanapproval/pkg/platform/audit/store/kafka"
	"loanapproval/pkg/platform/audit/store/memory"
	auditpg "loanapproval/pkg/platform/audit/store/postgres"
	auditredis "loanapproval/pkg/platform/audit/store/redis"
	"loanapproval/pkg/platform/audit/worker"
)

// Backend is an opened audit store. Reader is nil for write-only backends and
// Sweeper is nil unless the store needs application-side expiry.
type Backend struct {
	Name    string
	Writer  audit.Writer
	Reader  audit.Reader
	Sweeper audit.Sweeper

	closers []func()
}

// Close releases the backend's connections.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// Pruner returns the expiry loop for backends without native TTL, or nil
// when the backend expires records itself or auditing is off.
func (b *Backend) Pruner(cfg config.AuditConfig, logger *slog.Logger, metrics *audit.Metrics) *worker.Pruner {
	if !cfg.Enabled() || b.Sweeper == nil {
		return nil
	}
	return worker.NewPruner(b.Sweeper, cfg.TableName, cfg.PruneInterval, logger, metrics)
}

// Open connects to cfg.Audit.Backend. With auditing disabled it returns an
// empty memory backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	a := cfg.Audit
	if !a.Enabled() {
		logger.Info("audit table not configured, decisions will not be recorded")
		return openMemory(), nil
	}

	var (
		b   *Backend
		err error
	)
	switch a.Backend {
	case config.BackendMemory:
		b = openMemory()
	case config.BackendRedis:
		b, err = openRedis(ctx, cfg.Redis)
	case config.BackendPostgres:
		b, err = openPostgres(ctx, cfg.Postgres, a.TableName)
	case config.BackendDynamoDB:
		b, err = openDynamoDB(ctx, cfg.DynamoDB)
	case config.BackendKafka:
		b, err = openKafka(ctx, cfg.Kafka)
	default:
		err = fmt.Errorf("unknown audit backend %q", a.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s audit backend: %w", a.Backend, err)
	}

	logger.Info("audit backend ready", "backend", b.Name, "table", a.TableName)
	return b, nil
}

func openMemory() *Backend {
	store := memory.NewInMemoryStore()
	return &Backend{Name: config.BackendMemory, Writer: store, Reader: store, Sweeper: store}
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (*Backend, error) {
	client, err := platformredis.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("redis URL is empty")
	}
	store := auditredis.New(client.Client)
	return &Backend{
		Name:    config.BackendRedis,
		Writer:  store,
		Reader:  store,
		closers: []func(){func() { _ = client.Close() }},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, table string) (*Backend, error) {
	pool, err := platformpg.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := auditpg.New(pool)
	if err := store.EnsureTable(ctx, table); err != nil {
		pool.Close()
		return nil, err
	}
	return &Backend{
		Name:    config.BackendPostgres,
		Writer:  store,
		Reader:  store,
		Sweeper: store,
		closers: []func(){pool.Close},
	}, nil
}

func openDynamoDB(ctx context.Context, cfg config.DynamoDBConfig) (*Backend, error) {
	client, err := platformdynamo.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := auditdynamo.New(client)
	return &Backend{Name: config.BackendDynamoDB, Writer: store, Reader: store}, nil
}

func openKafka(ctx context.Context, cfg config.KafkaConfig) (*Backend, error) {
	client, err := platformkafka.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Name:    config.BackendKafka,
		Writer:  auditkafka.New(client),
		closers: []func(){client.Close},
	}, nil
}
