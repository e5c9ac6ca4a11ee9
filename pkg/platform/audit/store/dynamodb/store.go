// Package dynamodb persists audit records in a DynamoDB table with partition
// key loan_id, sort key timestamp and the table's TTL attribute set to ttl.
// Expiry is enforced by DynamoDB itself.
package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	audit "loanapproval/pkg/platform/audit"
	"loanapproval/pkg/platform/sentinel"
)

// Item attribute names.
const (
	AttrLoanID   = "loan_id"
	AttrTime     = "timestamp"
	AttrRequest  = "request_data"
	AttrResponse = "response_data"
	AttrTTL      = "ttl"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store implements audit.Store against DynamoDB.
type Store struct {
	api API
}

// New creates a DynamoDB audit store.
func New(api API) *Store {
	return &Store{api: api}
}

// Put writes one item. DynamoDB's own TTL sweeper removes it after rec.TTL.
func (s *Store) Put(ctx context.Context, table string, rec audit.Record) error {
	item, err := toItem(rec)
	if err != nil {
		return fmt.Errorf("encode audit item %s: %w", rec.LoanID, err)
	}
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put audit item %s: %w", rec.LoanID, err)
	}
	return nil
}

// Get returns the newest item for loanID. The TTL sweeper lags by up to a
// couple of days, so items already past ttl are filtered here.
func (s *Store) Get(ctx context.Context, table, loanID string) (*audit.Record, error) {
	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("#id = :id"),
		FilterExpression:       aws.String("#ttl > :now"),
		ExpressionAttributeNames: map[string]string{
			"#id":  AttrLoanID,
			"#ttl": AttrTTL,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id":  &types.AttributeValueMemberS{Value: loanID},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query audit item %s: %w", loanID, err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("audit record %s: %w", loanID, sentinel.ErrNotFound)
	}

	rec, err := fromItem(out.Items[0])
	if err != nil {
		return nil, fmt.Errorf("decode audit item %s: %w", loanID, err)
	}
	return rec, nil
}

func toItem(rec audit.Record) (map[string]types.AttributeValue, error) {
	req, err := wrapObject(AttrRequest, rec.Request)
	if err != nil {
		return nil, err
	}
	resp, err := wrapObject(AttrResponse, rec.Response)
	if err != nil {
		return nil, err
	}
	return attributevalue.MarshalMap(item{
		LoanID:    rec.LoanID,
		Timestamp: rec.Timestamp.UTC().Format(audit.TimestampLayout),
		Request:   req,
		Response:  resp,
		TTL:       rec.TTL,
	})
}

func fromItem(raw map[string]types.AttributeValue) (*audit.Record, error) {
	var it item
	if err := decoder.Decode(&types.AttributeValueMemberM{Value: raw}, &it); err != nil {
		return nil, err
	}
	if it.LoanID == "" {
		return nil, fmt.Errorf("missing %s", AttrLoanID)
	}

	t, err := time.Parse(audit.TimestampLayout, it.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", AttrTime, err)
	}
	rec := &audit.Record{LoanID: it.LoanID, Timestamp: t, TTL: it.TTL}

	if rec.Request, err = unwrapObject(AttrRequest, it.Request); err != nil {
		return nil, err
	}
	if rec.Response, err = unwrapObject(AttrResponse, it.Response); err != nil {
		return nil, err
	}
	return rec, nil
}
