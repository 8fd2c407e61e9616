package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext is the subset of the shared context these steps use.
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers registration and stats step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrationSteps{tc: tc}

	ctx.Step(`^I submit a valid registration$`, steps.submitValid)
	ctx.Step(`^I submit a registration without "([^"]*)"$`, steps.submitWithout)
	ctx.Step(`^I submit a registration using the Spanish field names$`, steps.submitSpanish)
	ctx.Step(`^I remember the current stats$`, steps.rememberStats)
	ctx.Step(`^I fill every remaining slot$`, steps.fillRemaining)
	ctx.Step(`^the current count should have grown by (\d+)$`, steps.countGrewBy)
	ctx.Step(`^the response should report the limit as reached$`, steps.limitReached)
	ctx.Step(`^the stats should be consistent$`, steps.statsConsistent)
}

type registrationSteps struct {
	tc       TestContext
	baseline *stats
}

type stats struct {
	CurrentCount   int     `json:"currentCount"`
	MaxRecords     int     `json:"maxRecords"`
	RemainingSlots int     `json:"remainingSlots"`
	PercentUsed    float64 `json:"percentUsed"`
	IsNearLimit    bool    `json:"isNearLimit"`
	IsFull         bool    `json:"isFull"`
}

func validForm() map[string]any {
	return map[string]any{
		"names":    "Ana",
		"surname":  "Pérez",
		"email":    "ana@example.com",
		"phone":    "+51 999 111 222",
		"interest": "cloud",
	}
}

func (s *registrationSteps) fetchStats() (*stats, error) {
	if err := s.tc.GET("/stats", nil); err != nil {
		return nil, err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return nil, fmt.Errorf("GET /stats returned %d", status)
	}
	var st stats
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &st); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return &st, nil
}

func (s *registrationSteps) submitValid(ctx context.Context) error {
	return s.tc.POST("/registro", validForm())
}

func (s *registrationSteps) submitWithout(ctx context.Context, field string) error {
	form := validForm()
	delete(form, field)
	return s.tc.POST("/registro", form)
}

func (s *registrationSteps) submitSpanish(ctx context.Context) error {
	return s.tc.POST("/registro", map[string]any{
		"nombres":  "Ana",
		"apellido": "Pérez",
		"email":    "ana@example.com",
		"celular":  "999111222",
		"interes":  "data",
	})
}

func (s *registrationSteps) rememberStats(ctx context.Context) error {
	st, err := s.fetchStats()
	if err != nil {
		return err
	}
	s.baseline = st
	return nil
}

func (s *registrationSteps) fillRemaining(ctx context.Context) error {
	st, err := s.fetchStats()
	if err != nil {
		return err
	}
	for i := 0; i < st.RemainingSlots; i++ {
		if err := s.submitValid(ctx); err != nil {
			return err
		}
		if status := s.tc.GetLastResponseStatus(); status != 200 {
			return fmt.Errorf("registration %d of %d returned %d", i+1, st.RemainingSlots, status)
		}
	}
	return nil
}

func (s *registrationSteps) countGrewBy(ctx context.Context, n int) error {
	if s.baseline == nil {
		return fmt.Errorf("no stats remembered")
	}
	st, err := s.fetchStats()
	if err != nil {
		return err
	}
	if got := st.CurrentCount - s.baseline.CurrentCount; got != n {
		return fmt.Errorf("expected count to grow by %d, grew by %d", n, got)
	}
	return nil
}

func (s *registrationSteps) limitReached(ctx context.Context) error {
	current, err := s.tc.GetResponseField("currentCount")
	if err != nil {
		return err
	}
	limit, err := s.tc.GetResponseField("maxRecords")
	if err != nil {
		return err
	}
	c, _ := strconv.Atoi(fmt.Sprint(current))
	m, _ := strconv.Atoi(fmt.Sprint(limit))
	if c < m {
		return fmt.Errorf("expected currentCount >= maxRecords, got %d/%d", c, m)
	}
	return nil
}

func (s *registrationSteps) statsConsistent(ctx context.Context) error {
	var st stats
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &st); err != nil {
		return fmt.Errorf("decode stats: %w", err)
	}
	if want := max(0, st.MaxRecords-st.CurrentCount); st.RemainingSlots != want {
		return fmt.Errorf("remainingSlots %d, want %d", st.RemainingSlots, want)
	}
	if st.IsFull != (st.CurrentCount >= st.MaxRecords) {
		return fmt.Errorf("isFull %v inconsistent with %d/%d", st.IsFull, st.CurrentCount, st.MaxRecords)
	}
	return nil
}
