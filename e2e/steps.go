package e2e

import (
	"github.com/cucumber/godog"

	"loanapproval/e2e/steps/common"
	"loanapproval/e2e/steps/loan"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register loan approval steps
	loan.RegisterSteps(ctx, tc)
}
