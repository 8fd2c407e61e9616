package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	POSTRaw(path, body string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	ResponseContains(field string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers common step definitions used across features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background steps
	ctx.Step(`^the registration service is running$`, steps.serviceIsRunning)

	// Generic request steps
	ctx.Step(`^I POST to "([^"]*)" with empty body$`, steps.postWithEmptyBody)
	ctx.Step(`^I POST to "([^"]*)" with body '([^']*)'$`, steps.postWithBody)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)

	// Response assertion steps
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response should not contain "([^"]*)"$`, steps.responseShouldNotContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, steps.responseFieldShouldContain)
	ctx.Step(`^log "([^"]*)"$`, steps.logMessage)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health/live", nil); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("service not live: status %d", status)
	}
	return nil
}

func (s *commonSteps) postWithEmptyBody(ctx context.Context, path string) error {
	return s.tc.POST(path, map[string]any{})
}

func (s *commonSteps) postWithBody(ctx context.Context, path, body string) error {
	return s.tc.POSTRaw(path, body)
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := s.tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expectedStatus, actualStatus, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, field string) error {
	if !s.tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain field: %s\nResponse: %s", field, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseShouldNotContain(ctx context.Context, field string) error {
	if _, err := s.tc.GetResponseField(field); err == nil {
		return fmt.Errorf("response unexpectedly contains field: %s", field)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	actualValue, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldContain(ctx context.Context, field, expectedSubstring string) error {
	actualValue, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if !strings.Contains(fmt.Sprint(actualValue), expectedSubstring) {
		return fmt.Errorf("field %s: expected to contain %s but got %v", field, expectedSubstring, actualValue)
	}
	return nil
}

func (s *commonSteps) logMessage(ctx context.Context, message string) error {
	fmt.Println(message)
	return nil
}
