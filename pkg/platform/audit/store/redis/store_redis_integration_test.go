//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	audit "loanapproval/pkg/platform/audit"
	auditredis "loanapproval/pkg/platform/audit/store/redis"
	"loanapproval/pkg/platform/sentinel"
	"loanapproval/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *auditredis.Store
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = auditredis.New(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTripAndExpiry() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	rec, err := audit.NewRecord("LN-20250601-abcdef12", now,
		map[string]any{"income": 80000.0, "debt_to_income": 0.25},
		map[string]any{"score": 77, "approved": true},
		audit.DefaultRetention,
	)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Put(ctx, "loan-approval-audit", rec))

	got, err := s.store.Get(ctx, "loan-approval-audit", rec.LoanID)
	s.Require().NoError(err)
	s.Equal(rec.TTL, got.TTL)
	s.True(rec.Timestamp.Equal(got.Timestamp))
	s.True(decimal.RequireFromString("0.25").Equal(got.Request["debt_to_income"].(decimal.Decimal)))

	expireAt, err := s.redis.Client.ExpireTime(ctx, "audit:loan-approval-audit:"+rec.LoanID).Result()
	s.Require().NoError(err)
	s.Equal(time.Duration(rec.TTL)*time.Second, expireAt)
}

func (s *RedisStoreSuite) TestMissingRecord() {
	_, err := s.store.Get(context.Background(), "loan-approval-audit", "LN-20250601-00000000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestPastTTLIsNotReadable() {
	ctx := context.Background()
	rec, err := audit.NewRecord("LN-20200101-00000001", time.Now().Add(-2*time.Hour),
		map[string]any{}, map[string]any{}, time.Hour)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Put(ctx, "t", rec))

	_, err = s.store.Get(ctx, "t", rec.LoanID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
