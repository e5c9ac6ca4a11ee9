package loan

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/cucumber/godog"
)

var loanIDPattern = regexp.MustCompile(`^LN-\d{8}-[0-9a-f]{8}$`)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	POSTRaw(path, body string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	SetLoanID(id string)
	GetLoanID() string
}

// RegisterSteps registers loan application and audit lookup steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &loanSteps{tc: tc}
	ctx.Step(`^I apply for a loan with:$`, steps.applyWithTable)
	ctx.Step(`^I apply for a loan with body '([^']*)'$`, steps.applyWithRawBody)
	ctx.Step(`^the response should contain a valid loan id$`, steps.responseContainsLoanID)
	ctx.Step(`^I fetch the audit record for that loan$`, steps.fetchAuditForLastLoan)
	ctx.Step(`^I fetch the audit record for loan "([^"]*)"$`, steps.fetchAudit)
}

type loanSteps struct {
	tc TestContext
}

// applyWithTable expects a two-column table of field/value rows.
func (s *loanSteps) applyWithTable(ctx context.Context, table *godog.Table) error {
	body := make(map[string]interface{}, len(table.Rows))
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected field | value rows, got %d cells", len(row.Cells))
		}
		field, raw := row.Cells[0].Value, row.Cells[1].Value
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			body[field] = n
		} else {
			body[field] = raw
		}
	}
	return s.tc.POST("/loan-approval", body)
}

func (s *loanSteps) applyWithRawBody(ctx context.Context, body string) error {
	return s.tc.POSTRaw("/loan-approval", body)
}

func (s *loanSteps) responseContainsLoanID(ctx context.Context) error {
	v, err := s.tc.GetResponseField("loan_id")
	if err != nil {
		return err
	}
	id, ok := v.(string)
	if !ok || !loanIDPattern.MatchString(id) {
		return fmt.Errorf("unexpected loan_id %v", v)
	}
	s.tc.SetLoanID(id)
	return nil
}

func (s *loanSteps) fetchAuditForLastLoan(ctx context.Context) error {
	id := s.tc.GetLoanID()
	if id == "" {
		return fmt.Errorf("no loan id captured from a previous response")
	}
	return s.fetchAudit(ctx, id)
}

func (s *loanSteps) fetchAudit(ctx context.Context, loanID string) error {
	return s.tc.GET("/loan-approval/"+loanID+"/audit", nil)
}
