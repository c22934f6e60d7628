package e2e

import (
	"github.com/cucumber/godog"

	"presence/e2e/steps/attendance"
	"presence/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (health, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register attendance-specific steps
	attendance.RegisterSteps(ctx, tc)
}
