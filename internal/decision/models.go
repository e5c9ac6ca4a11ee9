package decision

import "time"

// Applicant is the scoring input. Absent fields are zero.
type Applicant struct {
	Income          float64
	CreditScore     float64
	DebtToIncome    float64
	EmploymentYears float64
}

// EvaluateRequest carries the applicant and the payload it was decoded from.
// Payload is what gets audited, exactly as the caller sent it.
type EvaluateRequest struct {
	Applicant Applicant
	Payload   map[string]any
}

// Decision is the outcome returned to the caller and persisted for audit.
type Decision struct {
	LoanID    string    `json:"loan_id"`
	Approved  bool      `json:"approved"`
	Score     int       `json:"score"`
	Reasoning string    `json:"reasoning"`
	Timestamp time.Time `json:"timestamp"`
}

// Outcome labels.
const (
	OutcomeApproved = "approved"
	OutcomeDeclined = "declined"
)

// Outcome returns the metric label for d.
func (d *Decision) Outcome() string {
	if d.Approved {
		return OutcomeApproved
	}
	return OutcomeDeclined
}
