package e2e

import (
	"github.com/cucumber/godog"

	"registro/e2e/steps/common"
	"registro/e2e/steps/registration"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	registration.RegisterSteps(ctx, tc)
}
