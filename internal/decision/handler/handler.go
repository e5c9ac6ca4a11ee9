package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"loanapproval/internal/decision"
	dErrors "loanapproval/pkg/domain-errors"
	"loanapproval/pkg/platform/audit"
	"loanapproval/pkg/platform/httputil"
	"loanapproval/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the interface for decision operations.
type Service interface {
	Evaluate(ctx context.Context, req decision.EvaluateRequest) *decision.Decision
	LookupAudit(ctx context.Context, loanID string) (*audit.Record, error)
	AuditLookupEnabled() bool
}

// DefaultMaxBodyBytes bounds POST /loan-approval bodies.
const DefaultMaxBodyBytes = 1 << 20

// DefaultPreflight matches the gateway's preflight configuration.
var DefaultPreflight = cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{http.MethodPost, http.MethodOptions},
	AllowedHeaders: []string{"Content-Type", "X-Amz-Date", "Authorization", "X-Api-Key"},
}

// Response is a transport-neutral result of Handle. HTTP and Lambda adapters
// copy it onto their own response types.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Handler wires loan approval endpoints to the decision service.
type Handler struct {
	service      Service
	logger       *slog.Logger
	allowOrigin  string
	corsOnError  bool
	maxBodyBytes int64
	preflight    cors.Options
}

// Option configures a Handler.
type Option func(*Handler)

// WithAllowOrigin sets Access-Control-Allow-Origin on decisions. Default "*".
func WithAllowOrigin(origin string) Option {
	return func(h *Handler) {
		h.allowOrigin = origin
	}
}

// WithCORSOnError adds the allow-origin header to 400 responses too.
func WithCORSOnError(enabled bool) Option {
	return func(h *Handler) {
		h.corsOnError = enabled
	}
}

// WithPreflight replaces DefaultPreflight for OPTIONS /loan-approval.
func WithPreflight(opts cors.Options) Option {
	return func(h *Handler) {
		h.preflight = opts
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// New constructs a loan approval handler with its dependencies.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		service:      service,
		logger:       logger,
		allowOrigin:  "*",
		maxBodyBytes: DefaultMaxBodyBytes,
		preflight:    DefaultPreflight,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Register mounts loan approval endpoints on the router. The audit lookup is
// only mounted when the service can read records back. CORS middleware is
// scoped to the preflight route; POST responses set their own headers.
func (h *Handler) Register(r chi.Router) {
	opts := h.preflight
	opts.OptionsPassthrough = true
	r.With(cors.Handler(opts)).Options("/loan-approval", handlePreflight)
	r.Post("/loan-approval", h.HandleLoanApproval)
	if h.service.AuditLookupEnabled() {
		r.Get("/loan-approval/{loanID}/audit", h.HandleGetAudit)
	}
}

// Handle decodes raw, evaluates it and builds the response envelope.
func (h *Handler) Handle(ctx context.Context, raw []byte) Response {
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, err := DecodeRequest(raw)
	if err != nil {
		h.logger.InfoContext(ctx, "rejected loan application",
			"request_id", requestID,
			"error", err,
		)
		return h.errorResponse(err)
	}

	result := h.service.Evaluate(ctx, req.ToDomain())

	body, err := json.Marshal(FromDecision(result))
	if err != nil {
		return h.errorResponse(err)
	}

	h.logger.InfoContext(ctx, "loan decision",
		"request_id", requestID,
		"loan_id", result.LoanID,
		"score", result.Score,
		"approved", result.Approved,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": h.allowOrigin,
		},
		Body: string(body),
	}
}

func (h *Handler) errorResponse(err error) Response {
	body, mErr := json.Marshal(ErrorResponse{Error: err.Error()})
	if mErr != nil {
		body = []byte(`{"error":"invalid request"}`)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if h.corsOnError {
		headers["Access-Control-Allow-Origin"] = h.allowOrigin
	}
	return Response{
		StatusCode: http.StatusBadRequest,
		Headers:    headers,
		Body:       string(body),
	}
}

// HandleLoanApproval handles POST /loan-approval requests.
func (h *Handler) HandleLoanApproval(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = dErrors.New(dErrors.CodeBadRequest, "request body too large")
		} else {
			err = dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read request body")
		}
		writeResponse(w, h.errorResponse(err))
		return
	}
	writeResponse(w, h.Handle(r.Context(), raw))
}

// HandleGetAudit handles GET /loan-approval/{loanID}/audit requests.
func (h *Handler) HandleGetAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loanID := chi.URLParam(r, "loanID")

	rec, err := h.service.LookupAudit(ctx, loanID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "audit lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"loan_id", loanID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

func handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
