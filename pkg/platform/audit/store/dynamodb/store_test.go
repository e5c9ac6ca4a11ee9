package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "loanapproval/pkg/platform/audit"
	"loanapproval/pkg/platform/sentinel"
)

type fakeAPI struct {
	puts     []*dynamodb.PutItemInput
	queries  []*dynamodb.QueryInput
	items    []map[string]types.AttributeValue
	putErr   error
	queryErr error
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &dynamodb.QueryOutput{Items: f.items}, nil
}

func sampleRecord(t *testing.T, at time.Time) audit.Record {
	t.Helper()
	rec, err := audit.NewRecord("LN-20250601-abcdef12", at,
		map[string]any{"income": 80000.5, "credit_score": 720, "tags": []any{"a", true, nil}},
		map[string]any{"loan_id": "LN-20250601-abcdef12", "approved": true, "score": 77, "reasoning": "ok"},
		audit.DefaultRetention,
	)
	require.NoError(t, err)
	return rec
}

func TestPutEncodesItem(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	rec := sampleRecord(t, at)

	require.NoError(t, store.Put(context.Background(), "loan-approval-audit", rec))
	require.Len(t, api.puts, 1)

	in := api.puts[0]
	assert.Equal(t, "loan-approval-audit", aws.ToString(in.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "LN-20250601-abcdef12"}, in.Item[AttrLoanID])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2025-06-01T12:30:00Z"}, in.Item[AttrTime])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "1780317000"}, in.Item[AttrTTL])

	req := in.Item[AttrRequest].(*types.AttributeValueMemberM).Value
	assert.Equal(t, &types.AttributeValueMemberN{Value: "80000.5"}, req["income"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "720"}, req["credit_score"])
	assert.Equal(t, &types.AttributeValueMemberL{Value: []types.AttributeValue{
		&types.AttributeValueMemberS{Value: "a"},
		&types.AttributeValueMemberBOOL{Value: true},
		&types.AttributeValueMemberNULL{Value: true},
	}}, req["tags"])

	resp := in.Item[AttrResponse].(*types.AttributeValueMemberM).Value
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, resp["approved"])
}

func TestPutWrapsClientError(t *testing.T) {
	api := &fakeAPI{putErr: errors.New("throttled")}
	err := New(api).Put(context.Background(), "t", sampleRecord(t, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestGetDecodesNewestItem(t *testing.T) {
	at := time.Now().UTC().Truncate(time.Millisecond)
	rec := sampleRecord(t, at)
	item, err := toItem(rec)
	require.NoError(t, err)

	api := &fakeAPI{items: []map[string]types.AttributeValue{item}}
	got, err := New(api).Get(context.Background(), "t", rec.LoanID)
	require.NoError(t, err)

	require.Len(t, api.queries, 1)
	q := api.queries[0]
	assert.False(t, aws.ToBool(q.ScanIndexForward))
	assert.Equal(t, &types.AttributeValueMemberS{Value: rec.LoanID}, q.ExpressionAttributeValues[":id"])

	assert.Equal(t, rec.LoanID, got.LoanID)
	assert.True(t, got.Timestamp.Equal(at))
	assert.Equal(t, rec.TTL, got.TTL)
	assert.True(t, decimal.RequireFromString("80000.5").Equal(got.Request["income"].(decimal.Decimal)))
	assert.Equal(t, []any{"a", true, nil}, got.Request["tags"])
	assert.Equal(t, true, got.Response["approved"])
}

func TestGetMissing(t *testing.T) {
	_, err := New(&fakeAPI{}).Get(context.Background(), "t", "LN-20250601-00000000")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPutRejectsFloats(t *testing.T) {
	rec := sampleRecord(t, time.Now())
	rec.Request = map[string]any{"x": 1.5}

	api := &fakeAPI{}
	err := New(api).Put(context.Background(), "t", rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_data: x:")
	assert.Empty(t, api.puts)
}

func TestGetRejectsItemWithoutLoanID(t *testing.T) {
	item, err := toItem(sampleRecord(t, time.Now()))
	require.NoError(t, err)
	delete(item, AttrLoanID)

	_, err = New(&fakeAPI{items: []map[string]types.AttributeValue{item}}).Get(context.Background(), "t", "LN-20250601-abcdef12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing loan_id")
}
