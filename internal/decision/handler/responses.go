package handler

import (
	"time"

	"loanapproval/internal/decision"
)

// DecisionResponse is the HTTP response for POST /loan-approval.
type DecisionResponse struct {
	LoanID    string `json:"loan_id"`
	Approved  bool   `json:"approved"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the 400 body for POST /loan-approval.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromDecision converts a domain Decision to an HTTP response.
func FromDecision(d *decision.Decision) *DecisionResponse {
	return &DecisionResponse{
		LoanID:    d.LoanID,
		Approved:  d.Approved,
		Score:     d.Score,
		Reasoning: d.Reasoning,
		Timestamp: d.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}
