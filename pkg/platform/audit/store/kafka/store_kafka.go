// Package kafka publishes audit records to a topic named after the audit
// table, keyed by loan id. It is write-only; retention belongs to the topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "loanapproval/pkg/platform/audit"
)

// Producer is satisfied by *kgo.Client.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Writer implements audit.Writer on a Kafka producer.
type Writer struct {
	producer Producer
}

// New creates a Kafka audit writer.
func New(producer Producer) *Writer {
	return &Writer{producer: producer}
}

// Put produces rec synchronously and returns the broker's first error.
func (w *Writer) Put(ctx context.Context, table string, rec audit.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record %s: %w", rec.LoanID, err)
	}

	r := &kgo.Record{
		Topic: table,
		Key:   []byte(rec.LoanID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "ttl", Value: []byte(strconv.FormatInt(rec.TTL, 10))},
		},
		Timestamp: rec.Timestamp,
	}

	if err := w.producer.ProduceSync(ctx, r).FirstErr(); err != nil {
		return fmt.Errorf("produce audit record %s to %s: %w", rec.LoanID, table, err)
	}
	return nil
}
