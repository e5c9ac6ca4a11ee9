package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"loanapproval/pkg/requestcontext"
)

// Recorder turns decisions into audit records and hands them to a Writer.
// An empty table name disables auditing: Record returns nil without I/O.
type Recorder struct {
	writer    Writer
	table     string
	retention time.Duration
	logger    *slog.Logger
	metrics   *Metrics
	breaker   *Breaker
	tracer    trace.Tracer
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithRetention overrides DefaultRetention.
func WithRetention(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.retention = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics attaches write metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithBreaker stops write attempts while b is open.
func WithBreaker(b *Breaker) Option {
	return func(r *Recorder) {
		r.breaker = b
	}
}

// NewRecorder builds a Recorder writing to table through writer.
func NewRecorder(writer Writer, table string, opts ...Option) *Recorder {
	r := &Recorder{
		writer:    writer,
		table:     table,
		retention: DefaultRetention,
		logger:    slog.Default(),
		tracer:    otel.Tracer("loanapproval/audit"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Enabled reports whether records are persisted at all.
func (r *Recorder) Enabled() bool {
	return r != nil && r.writer != nil && r.table != ""
}

// Table returns the configured table name.
func (r *Recorder) Table() string {
	return r.table
}

// Record persists one decision keyed by loanID. The write time comes from the
// request-scoped clock so it matches the decision timestamp.
func (r *Recorder) Record(ctx context.Context, loanID string, request, response any) error {
	if r == nil {
		return nil
	}
	if !r.Enabled() {
		r.metrics.IncWrite(ResultSkipped)
		r.logger.DebugContext(ctx, "audit table not configured, skipping write", "loan_id", loanID)
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "audit.Record", trace.WithAttributes(
		attribute.String("audit.table", r.table),
		attribute.String("loan.id", loanID),
	))
	defer span.End()

	rec, err := NewRecord(loanID, requestcontext.Now(ctx), request, response, r.retention)
	if err != nil {
		r.fail(span, err)
		return fmt.Errorf("build audit record: %w", err)
	}

	if !r.breaker.Allow() {
		r.metrics.IncWrite(ResultDropped)
		span.SetStatus(codes.Error, ErrCircuitOpen.Error())
		return fmt.Errorf("put audit record into %s: %w", r.table, ErrCircuitOpen)
	}

	start := time.Now()
	err = r.writer.Put(ctx, r.table, rec)
	r.metrics.ObserveWriteLatency(time.Since(start))
	if err != nil {
		r.breaker.RecordFailure()
		r.fail(span, err)
		return fmt.Errorf("put audit record into %s: %w", r.table, err)
	}

	r.breaker.RecordSuccess()
	r.metrics.IncWrite(ResultWritten)
	return nil
}

func (r *Recorder) fail(span trace.Span, err error) {
	r.metrics.IncWrite(ResultFailed)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
