package worker

import (
	"context"
	"log/slog"
	"time"

	audit "loanapproval/pkg/platform/audit"
)

// Pruner periodically deletes expired audit records from backends that have
// no native TTL. It stops when ctx is cancelled.
type Pruner struct {
	sweeper  audit.Sweeper
	table    string
	interval time.Duration
	logger   *slog.Logger
	metrics  *audit.Metrics
	now      func() time.Time
}

func NewPruner(sweeper audit.Sweeper, table string, interval time.Duration, logger *slog.Logger, metrics *audit.Metrics) *Pruner {
	return &Pruner{
		sweeper:  sweeper,
		table:    table,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run sweeps once immediately, then on every tick.
func (p *Pruner) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.Sweep(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep runs a single deletion pass. Failures are logged; the next tick retries.
func (p *Pruner) Sweep(ctx context.Context) {
	n, err := p.sweeper.DeleteExpired(ctx, p.table, p.now())
	if err != nil {
		p.logger.WarnContext(ctx, "audit prune failed", "table", p.table, "error", err)
		return
	}
	p.metrics.AddPruned(n)
	if n > 0 {
		p.logger.InfoContext(ctx, "pruned expired audit records", "table", p.table, "count", n)
	}
}
