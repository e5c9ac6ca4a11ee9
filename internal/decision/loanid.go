package decision

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	dErrors "loanapproval/pkg/domain-errors"
)

var loanIDPattern = regexp.MustCompile(`^LN-\d{8}-[0-9a-f]{8}$`)

// NewLoanID returns "LN-<YYYYMMDD>-<8 hex>" for the UTC date of now.
func NewLoanID(now time.Time) string {
	return "LN-" + now.UTC().Format("20060102") + "-" + uuid.NewString()[:8]
}

// ParseLoanID validates the loan id format.
func ParseLoanID(s string) (string, error) {
	if !loanIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeValidation, "loan_id must match LN-YYYYMMDD-xxxxxxxx")
	}
	return s, nil
}
