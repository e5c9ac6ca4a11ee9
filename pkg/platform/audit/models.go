package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"loanapproval/pkg/platform/audit/numeric"
)

// DefaultRetention keeps decisions for one year (31,536,000 seconds).
const DefaultRetention = 365 * 24 * time.Hour

// TimestampLayout is the ISO-8601 layout used for stored write timestamps.
const TimestampLayout = time.RFC3339Nano

// Record is one persisted loan decision. Request and Response are generic
// value trees whose numbers have been normalized to decimal.Decimal.
type Record struct {
	LoanID    string
	Timestamp time.Time
	Request   map[string]any
	Response  map[string]any
	// TTL is the expiry instant in epoch seconds.
	TTL int64
}

// NewRecord normalizes the request and response payloads and stamps the
// expiry relative to writtenAt.
func NewRecord(loanID string, writtenAt time.Time, request, response any, retention time.Duration) (Record, error) {
	req, err := numeric.DecimalObject(request)
	if err != nil {
		return Record{}, fmt.Errorf("normalize request: %w", err)
	}
	resp, err := numeric.DecimalObject(response)
	if err != nil {
		return Record{}, fmt.Errorf("normalize response: %w", err)
	}
	return Record{
		LoanID:    loanID,
		Timestamp: writtenAt,
		Request:   req,
		Response:  resp,
		TTL:       writtenAt.Add(retention).Unix(),
	}, nil
}

// ExpiresAt returns the TTL as a time.
func (r Record) ExpiresAt() time.Time {
	return time.Unix(r.TTL, 0)
}

// Expired reports whether the record is past its retention at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt())
}

// document is the wire shape shared by JSON-encoded stores and the lookup API.
type document struct {
	LoanID       string         `json:"loan_id"`
	Timestamp    string         `json:"timestamp"`
	RequestData  map[string]any `json:"request_data"`
	ResponseData map[string]any `json:"response_data"`
	TTL          int64          `json:"ttl"`
}

// MarshalJSON encodes decimals as bare JSON numbers.
func (r Record) MarshalJSON() ([]byte, error) {
	req, _ := numeric.ToJSON(r.Request).(map[string]any)
	resp, _ := numeric.ToJSON(r.Response).(map[string]any)
	return json.Marshal(document{
		LoanID:       r.LoanID,
		Timestamp:    r.Timestamp.Format(TimestampLayout),
		RequestData:  req,
		ResponseData: resp,
		TTL:          r.TTL,
	})
}

// UnmarshalJSON restores decimals from JSON numbers.
func (r *Record) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	ts, err := time.Parse(TimestampLayout, doc.Timestamp)
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	req, err := numeric.ToDecimal(doc.RequestData)
	if err != nil {
		return err
	}
	resp, err := numeric.ToDecimal(doc.ResponseData)
	if err != nil {
		return err
	}
	*r = Record{
		LoanID:    doc.LoanID,
		Timestamp: ts,
		Request:   asObject(req),
		Response:  asObject(resp),
		TTL:       doc.TTL,
	}
	return nil
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
