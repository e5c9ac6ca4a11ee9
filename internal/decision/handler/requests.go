package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"loanapproval/internal/decision"
	dErrors "loanapproval/pkg/domain-errors"
)

// Applicant fields on the wire.
const (
	FieldIncome          = "income"
	FieldCreditScore     = "credit_score"
	FieldDebtToIncome    = "debt_to_income"
	FieldEmploymentYears = "employment_years"
)

// EvaluateRequest is the decoded body of POST /loan-approval.
type EvaluateRequest struct {
	Income          float64
	CreditScore     float64
	DebtToIncome    float64
	EmploymentYears float64

	// Original body, numbers kept as json.Number.
	payload map[string]any
}

// DecodeRequest parses and validates a loan application body.
// An empty body is an empty application. Absent and null fields are zero;
// any other non-number value is rejected.
func DecodeRequest(raw []byte) (*EvaluateRequest, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body: unexpected data after top-level value")
	}

	payload, ok := body.(map[string]any)
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body must be a JSON object")
	}

	req := &EvaluateRequest{payload: payload}
	fields := []struct {
		name string
		dst  *float64
	}{
		{FieldIncome, &req.Income},
		{FieldCreditScore, &req.CreditScore},
		{FieldDebtToIncome, &req.DebtToIncome},
		{FieldEmploymentYears, &req.EmploymentYears},
	}
	for _, f := range fields {
		v, err := numberField(payload, f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return req, nil
}

func numberField(payload map[string]any, name string) (float64, error) {
	raw, ok := payload[name]
	if !ok || raw == nil {
		return 0, nil
	}
	n, ok := raw.(json.Number)
	if !ok {
		return 0, dErrors.New(dErrors.CodeValidation, name+" must be a number")
	}
	f, err := n.Float64()
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, name+" is out of range")
	}
	return f, nil
}

// ToDomain converts the request to the service input.
func (r *EvaluateRequest) ToDomain() decision.EvaluateRequest {
	return decision.EvaluateRequest{
		Applicant: decision.Applicant{
			Income:          r.Income,
			CreditScore:     r.CreditScore,
			DebtToIncome:    r.DebtToIncome,
			EmploymentYears: r.EmploymentYears,
		},
		Payload: r.payload,
	}
}
