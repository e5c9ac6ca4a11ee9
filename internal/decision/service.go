package decision

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"loanapproval/internal/decision/metrics"
	"loanapproval/internal/decision/ports"
	dErrors "loanapproval/pkg/domain-errors"
	"loanapproval/pkg/platform/audit"
	"loanapproval/pkg/platform/sentinel"
	"loanapproval/pkg/requestcontext"
)

// Service scores applicants and records every decision. Audit failures are
// logged and never reach the caller.
type Service struct {
	audit      ports.AuditPort
	reader     ports.AuditReader
	auditTable string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	newLoanID  func(time.Time) string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches decision metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditReader enables LookupAudit against table.
func WithAuditReader(reader ports.AuditReader, table string) Option {
	return func(s *Service) {
		s.reader = reader
		s.auditTable = table
	}
}

// WithLoanIDGenerator replaces NewLoanID, mainly for tests.
func WithLoanIDGenerator(fn func(time.Time) string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newLoanID = fn
		}
	}
}

// NewService creates a decision service. A nil auditPort disables auditing.
func NewService(auditPort ports.AuditPort, opts ...Option) *Service {
	s := &Service{
		audit:     auditPort,
		logger:    slog.Default(),
		tracer:    otel.Tracer("loanapproval/decision"),
		newLoanID: NewLoanID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Evaluate scores the applicant, stamps a loan id and persists the decision.
// It cannot fail: audit errors are swallowed after logging.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) *Decision {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "decision.Evaluate")
	defer span.End()

	// Pin the clock so the decision and audit timestamps agree. Microseconds
	// are the finest precision every audit store keeps.
	now := requestcontext.Now(ctx).UTC().Truncate(time.Microsecond)
	ctx = requestcontext.WithTime(ctx, now)

	score := Score(req.Applicant)
	approved := Approve(score)
	result := &Decision{
		LoanID:    s.newLoanID(now),
		Approved:  approved,
		Score:     score,
		Reasoning: Explain(score, approved),
		Timestamp: now,
	}

	span.SetAttributes(
		attribute.String("loan.id", result.LoanID),
		attribute.Int("loan.score", score),
		attribute.Bool("loan.approved", approved),
	)
	s.metrics.IncrementOutcome(result.Outcome())
	s.metrics.ObserveScore(score)

	s.recordDecision(ctx, req, result)

	s.metrics.ObserveEvaluateLatency(time.Since(start))
	return result
}

func (s *Service) recordDecision(ctx context.Context, req EvaluateRequest, result *Decision) {
	if s.audit == nil {
		return
	}
	payload := req.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	if err := s.audit.Record(ctx, result.LoanID, payload, result); err != nil {
		s.logger.WarnContext(ctx, "failed to log decision",
			"request_id", requestcontext.RequestID(ctx),
			"loan_id", result.LoanID,
			"error", err,
		)
	}
}

// AuditLookupEnabled reports whether LookupAudit has a readable store.
func (s *Service) AuditLookupEnabled() bool {
	return s.reader != nil && s.auditTable != ""
}

// LookupAudit returns the stored record for loanID.
func (s *Service) LookupAudit(ctx context.Context, loanID string) (*audit.Record, error) {
	if !s.AuditLookupEnabled() {
		return nil, dErrors.New(dErrors.CodeNotFound, "audit lookup is not available")
	}
	id, err := ParseLoanID(loanID)
	if err != nil {
		return nil, err
	}

	rec, err := s.reader.Get(ctx, s.auditTable, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "audit record not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit record")
	}
	return rec, nil
}
