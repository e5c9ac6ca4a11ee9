package handler_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"loanapproval/internal/decision"
	"loanapproval/internal/decision/handler"
	"loanapproval/internal/decision/handler/mocks"
	dErrors "loanapproval/pkg/domain-errors"
	"loanapproval/pkg/platform/audit"
	"loanapproval/pkg/platform/audit/store/memory"
	"loanapproval/pkg/requestcontext"
	"loanapproval/pkg/testutil"
)

// =============================================================================
// Loan Approval Handler Test Suite
// =============================================================================
// Justification for unit tests: the 200 and 400 envelopes differ in headers
// and the Lambda and HTTP adapters must produce identical results.

var fixedNow = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	logger  *slog.Logger
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *HandlerSuite) router(h *handler.Handler) chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func approved77() *decision.Decision {
	return &decision.Decision{
		LoanID:    "LN-20250601-abcdef12",
		Approved:  true,
		Score:     77,
		Reasoning: decision.ReasonMinimum,
		Timestamp: fixedNow,
	}
}

// =============================================================================
// Handle Tests
// =============================================================================

func (s *HandlerSuite) TestHandleSuccess() {
	s.service.EXPECT().Evaluate(gomock.Any(), decision.EvaluateRequest{
		Applicant: decision.Applicant{Income: 80000, CreditScore: 720, DebtToIncome: 0.25, EmploymentYears: 3},
		Payload: map[string]any{
			"income":           json.Number("80000"),
			"credit_score":     json.Number("720"),
			"debt_to_income":   json.Number("0.25"),
			"employment_years": json.Number("3"),
		},
	}).Return(approved77())

	h := handler.New(s.service, s.logger)
	resp := h.Handle(context.Background(), []byte(`{"income":80000,"credit_score":720,"debt_to_income":0.25,"employment_years":3}`))

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}, resp.Headers)
	s.JSONEq(`{
		"loan_id": "LN-20250601-abcdef12",
		"approved": true,
		"score": 77,
		"reasoning": "Meets minimum requirements for loan approval",
		"timestamp": "2025-06-01T12:30:00Z"
	}`, resp.Body)
}

func (s *HandlerSuite) TestHandleMalformedBody() {
	h := handler.New(s.service, s.logger)

	resp := h.Handle(context.Background(), []byte(`not json`))

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(map[string]string{"Content-Type": "application/json"}, resp.Headers)
	s.NotContains(resp.Headers, "Access-Control-Allow-Origin")

	var body map[string]string
	s.Require().NoError(json.Unmarshal([]byte(resp.Body), &body))
	s.Contains(body, "error")
	s.Contains(body["error"], "invalid JSON body")
}

func (s *HandlerSuite) TestHandleWrongFieldType() {
	h := handler.New(s.service, s.logger)

	resp := h.Handle(context.Background(), []byte(`{"income":"lots"}`))

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.JSONEq(`{"error":"income must be a number"}`, resp.Body)
}

func (s *HandlerSuite) TestHandleCORSOnError() {
	h := handler.New(s.service, s.logger,
		handler.WithCORSOnError(true),
		handler.WithAllowOrigin("https://loans.example.com"),
	)

	resp := h.Handle(context.Background(), []byte(`[]`))

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("https://loans.example.com", resp.Headers["Access-Control-Allow-Origin"])
}

func (s *HandlerSuite) TestHandleEmptyBody() {
	s.service.EXPECT().Evaluate(gomock.Any(), decision.EvaluateRequest{Payload: map[string]any{}}).
		Return(&decision.Decision{LoanID: "LN-20250601-00000000", Score: 25, Reasoning: decision.ReasonHighRisk, Timestamp: fixedNow})

	resp := handler.New(s.service, s.logger).Handle(context.Background(), nil)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Body, `"approved":false`)
}

// =============================================================================
// HTTP Tests
// =============================================================================

func (s *HandlerSuite) TestPostLoanApproval() {
	s.service.EXPECT().AuditLookupEnabled().Return(false)
	s.service.EXPECT().Evaluate(gomock.Any(), gomock.Any()).Return(approved77())
	r := s.router(handler.New(s.service, s.logger))

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/loan-approval", `{"credit_score":720}`)
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatusOK(s.T(), rr)
	s.Equal("*", rr.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("application/json", rr.Header().Get("Content-Type"))
	testutil.AssertJSONContains(s.T(), rr, "loan_id", "LN-20250601-abcdef12")
}

func (s *HandlerSuite) TestPostLoanApprovalBodyTooLarge() {
	s.service.EXPECT().AuditLookupEnabled().Return(false)
	r := s.router(handler.New(s.service, s.logger, handler.WithMaxBodyBytes(16)))

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/loan-approval", `{"income":`+strings.Repeat("1", 32)+`}`)
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	s.Empty(rr.Header().Get("Access-Control-Allow-Origin"))
	testutil.AssertErrorCode(s.T(), rr, "request body too large")
}

func (s *HandlerSuite) TestAuditRouteMountedOnlyWhenReadable() {
	s.service.EXPECT().AuditLookupEnabled().Return(false)
	r := s.router(handler.New(s.service, s.logger))

	rr := testutil.DoRequest(r, testutil.NewRequest(s.T(), http.MethodGet, "/loan-approval/LN-20250601-abcdef12/audit"))

	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
}

func (s *HandlerSuite) TestPreflight() {
	preflight := func(method, headers string) *http.Request {
		req := testutil.NewRequest(s.T(), http.MethodOptions, "/loan-approval")
		req.Header.Set("Origin", "https://loans.example.com")
		req.Header.Set("Access-Control-Request-Method", method)
		if headers != "" {
			req.Header.Set("Access-Control-Request-Headers", headers)
		}
		return req
	}

	s.Run("allowed method and headers", func() {
		s.service.EXPECT().AuditLookupEnabled().Return(false)
		r := s.router(handler.New(s.service, s.logger))

		rr := testutil.DoRequest(r, preflight(http.MethodPost, "Content-Type,X-Api-Key"))

		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
		s.Equal("*", rr.Header().Get("Access-Control-Allow-Origin"))
		s.Equal(http.MethodPost, rr.Header().Get("Access-Control-Allow-Methods"))
		s.Contains(rr.Header().Get("Access-Control-Allow-Headers"), "X-Api-Key")
	})

	s.Run("disallowed method gets no CORS headers", func() {
		s.service.EXPECT().AuditLookupEnabled().Return(false)
		r := s.router(handler.New(s.service, s.logger))

		rr := testutil.DoRequest(r, preflight(http.MethodDelete, ""))

		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
		s.Empty(rr.Header().Get("Access-Control-Allow-Origin"))
	})

	s.Run("custom options and max age", func() {
		s.service.EXPECT().AuditLookupEnabled().Return(false)
		r := s.router(handler.New(s.service, s.logger, handler.WithPreflight(cors.Options{
			AllowedOrigins: []string{"https://loans.example.com"},
			AllowedMethods: []string{http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         600,
		})))

		rr := testutil.DoRequest(r, preflight(http.MethodPost, "Content-Type"))

		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
		s.Equal("https://loans.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
		s.Equal("600", rr.Header().Get("Access-Control-Max-Age"))
	})
}

func (s *HandlerSuite) TestGetAudit() {
	s.service.EXPECT().AuditLookupEnabled().Return(true)
	r := s.router(handler.New(s.service, s.logger))

	s.Run("found", func() {
		rec, err := audit.NewRecord("LN-20250601-abcdef12", fixedNow,
			map[string]any{"income": 80000},
			approved77(),
			audit.DefaultRetention,
		)
		s.Require().NoError(err)
		s.service.EXPECT().LookupAudit(gomock.Any(), "LN-20250601-abcdef12").Return(&rec, nil)

		rr := testutil.DoRequest(r, testutil.NewRequest(s.T(), http.MethodGet, "/loan-approval/LN-20250601-abcdef12/audit"))

		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`{
			"loan_id": "LN-20250601-abcdef12",
			"timestamp": "2025-06-01T12:30:00Z",
			"request_data": {"income": 80000},
			"response_data": {
				"loan_id": "LN-20250601-abcdef12",
				"approved": true,
				"score": 77,
				"reasoning": "Meets minimum requirements for loan approval",
				"timestamp": "2025-06-01T12:30:00Z"
			},
			"ttl": 1780317000
		}`, rr.Body.String())
	})

	s.Run("not found", func() {
		s.service.EXPECT().LookupAudit(gomock.Any(), "LN-20250601-00000000").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "audit record not found"))

		rr := testutil.DoRequest(r, testutil.NewRequest(s.T(), http.MethodGet, "/loan-approval/LN-20250601-00000000/audit"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed id", func() {
		s.service.EXPECT().LookupAudit(gomock.Any(), "bogus").
			Return(nil, dErrors.New(dErrors.CodeValidation, "loan_id must match LN-YYYYMMDD-xxxxxxxx"))

		rr := testutil.DoRequest(r, testutil.NewRequest(s.T(), http.MethodGet, "/loan-approval/bogus/audit"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("store failure", func() {
		s.service.EXPECT().LookupAudit(gomock.Any(), "LN-20250601-0000beef").
			Return(nil, dErrors.Wrap(errors.New("connection refused"), dErrors.CodeInternal, "failed to read audit record"))

		rr := testutil.DoRequest(r, testutil.NewRequest(s.T(), http.MethodGet, "/loan-approval/LN-20250601-0000beef/audit"))

		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		s.NotContains(rr.Body.String(), "connection refused")
	})
}

// =============================================================================
// Lambda Tests
// =============================================================================

func (s *HandlerSuite) TestHandleAPIGateway() {
	h := handler.New(s.service, s.logger)

	s.Run("plain body", func() {
		s.service.EXPECT().Evaluate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ decision.EvaluateRequest) *decision.Decision {
				s.Equal("req-123", requestcontext.RequestID(ctx))
				return approved77()
			})

		resp, err := h.HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{
			Body:           `{"income":80000}`,
			RequestContext: events.APIGatewayProxyRequestContext{RequestID: "req-123"},
		})

		s.Require().NoError(err)
		s.Equal(http.StatusOK, resp.StatusCode)
		s.Equal("*", resp.Headers["Access-Control-Allow-Origin"])
	})

	s.Run("base64 body", func() {
		s.service.EXPECT().Evaluate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req decision.EvaluateRequest) *decision.Decision {
				s.Equal(720.0, req.Applicant.CreditScore)
				return approved77()
			})

		resp, err := h.HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{
			Body:            base64.StdEncoding.EncodeToString([]byte(`{"credit_score":720}`)),
			IsBase64Encoded: true,
		})

		s.Require().NoError(err)
		s.Equal(http.StatusOK, resp.StatusCode)
	})

	s.Run("bad base64", func() {
		resp, err := h.HandleAPIGateway(context.Background(), events.APIGatewayProxyRequest{
			Body:            "%%%",
			IsBase64Encoded: true,
		})

		s.Require().NoError(err)
		s.Equal(http.StatusBadRequest, resp.StatusCode)
		s.NotContains(resp.Headers, "Access-Control-Allow-Origin")
	})
}

// =============================================================================
// End-to-end with the real service
// =============================================================================

func TestAuditFailureStillApproves(t *testing.T) {
	svc := decision.NewService(audit.NewRecorder(failingWriter{}, "loan-approval-audit"),
		decision.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	h := handler.New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := requestcontext.WithTime(context.Background(), fixedNow)
	resp := h.Handle(ctx, []byte(`{"income":80000,"credit_score":720,"debt_to_income":0.25,"employment_years":3}`))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 despite audit failure, got %d", resp.StatusCode)
	}
	var body handler.DecisionResponse
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Score != 77 || !body.Approved || body.LoanID == "" {
		t.Fatalf("unexpected decision: %+v", body)
	}
}

func TestHandleWithMemoryAudit(t *testing.T) {
	store := memory.NewInMemoryStore()
	svc := decision.NewService(audit.NewRecorder(store, "loan-approval-audit"),
		decision.WithAuditReader(store, "loan-approval-audit"),
	)
	h := handler.New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)

	post := testutil.WithRequestTime(
		testutil.NewRequestWithBody(t, http.MethodPost, "/loan-approval", `{"income":120000,"credit_score":800,"debt_to_income":0.1,"employment_years":8}`),
		fixedNow,
	)
	rr := testutil.DoRequest(r, post)
	testutil.AssertStatusOK(t, rr)
	created := testutil.UnmarshalResponse[handler.DecisionResponse](t, rr)

	get := testutil.NewRequest(t, http.MethodGet, "/loan-approval/"+created.LoanID+"/audit")
	rr = testutil.DoRequest(r, get)
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "loan_id", created.LoanID)
}

type failingWriter struct{}

func (failingWriter) Put(context.Context, string, audit.Record) error {
	return errors.New("ProvisionedThroughputExceededException")
}
