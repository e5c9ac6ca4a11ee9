package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	audit "loanapproval/pkg/platform/audit"
	"loanapproval/pkg/platform/audit/mocks"
	"loanapproval/pkg/platform/audit/store/memory"
	"loanapproval/pkg/requestcontext"
)

type RecorderSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	logger  *slog.Logger
	metrics *audit.Metrics
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.metrics = audit.NewMetrics(prometheus.NewRegistry())
}

func (s *RecorderSuite) TestRecordWritesNormalizedRecord() {
	store := memory.NewInMemoryStore()
	rec := audit.NewRecorder(store, "loan-approval-audit", audit.WithLogger(s.logger), audit.WithMetrics(s.metrics))

	request := map[string]any{"income": 80000.0, "debt_to_income": 0.25}
	response := map[string]any{"loan_id": "LN-20250601-abcdef12", "score": 77, "approved": true}

	s.Require().NoError(rec.Record(s.ctx, "LN-20250601-abcdef12", request, response))

	got, err := store.Get(s.ctx, "loan-approval-audit", "LN-20250601-abcdef12")
	s.Require().NoError(err)
	s.Equal(s.now, got.Timestamp)
	s.Equal(s.now.Unix()+31_536_000, got.TTL)
	s.Equal("0.25", got.Request["debt_to_income"].(decimal.Decimal).String())
	s.Equal("77", got.Response["score"].(decimal.Decimal).String())
	s.Equal(true, got.Response["approved"])
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Writes.WithLabelValues(audit.ResultWritten)))
}

func (s *RecorderSuite) TestEmptyTableSkipsWrite() {
	ctrl := gomock.NewController(s.T())
	writer := mocks.NewMockWriter(ctrl)
	rec := audit.NewRecorder(writer, "", audit.WithLogger(s.logger), audit.WithMetrics(s.metrics))

	// no EXPECT: any Put call fails the test
	s.Require().NoError(rec.Record(s.ctx, "LN-20250601-abcdef12", map[string]any{}, map[string]any{}))
	s.False(rec.Enabled())
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Writes.WithLabelValues(audit.ResultSkipped)))
}

func (s *RecorderSuite) TestWriterErrorIsReturnedWrapped() {
	ctrl := gomock.NewController(s.T())
	writer := mocks.NewMockWriter(ctrl)
	boom := errors.New("ProvisionedThroughputExceededException")
	writer.EXPECT().Put(gomock.Any(), "loan-approval-audit", gomock.Any()).Return(boom)

	rec := audit.NewRecorder(writer, "loan-approval-audit", audit.WithLogger(s.logger), audit.WithMetrics(s.metrics))
	err := rec.Record(s.ctx, "LN-20250601-abcdef12", map[string]any{}, map[string]any{})

	s.Require().ErrorIs(err, boom)
	s.Contains(err.Error(), "loan-approval-audit")
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Writes.WithLabelValues(audit.ResultFailed)))
}

func (s *RecorderSuite) TestCustomRetention() {
	ctrl := gomock.NewController(s.T())
	writer := mocks.NewMockWriter(ctrl)
	writer.EXPECT().Put(gomock.Any(), "t", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, rec audit.Record) error {
			s.Equal(s.now.Add(24*time.Hour).Unix(), rec.TTL)
			return nil
		})

	rec := audit.NewRecorder(writer, "t", audit.WithRetention(24*time.Hour))
	s.Require().NoError(rec.Record(s.ctx, "LN-1", map[string]any{}, map[string]any{}))
}

func (s *RecorderSuite) TestOpenBreakerDropsWrites() {
	ctrl := gomock.NewController(s.T())
	writer := mocks.NewMockWriter(ctrl)
	writer.EXPECT().Put(gomock.Any(), "t", gomock.Any()).Return(errors.New("timeout")).Times(2)

	rec := audit.NewRecorder(writer, "t",
		audit.WithLogger(s.logger),
		audit.WithMetrics(s.metrics),
		audit.WithBreaker(audit.NewBreaker(2, time.Hour)),
	)
	for range 2 {
		s.Error(rec.Record(s.ctx, "LN-1", map[string]any{}, map[string]any{}))
	}

	err := rec.Record(s.ctx, "LN-1", map[string]any{}, map[string]any{})
	s.ErrorIs(err, audit.ErrCircuitOpen)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Writes.WithLabelValues(audit.ResultDropped)))
}

func TestNilRecorderIsDisabled(t *testing.T) {
	var rec *audit.Recorder
	assert.False(t, rec.Enabled())
	require.NoError(t, rec.Record(context.Background(), "LN-1", nil, nil))
}
