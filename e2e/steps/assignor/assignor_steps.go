package assignor

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"aprovame/pkg/testutil"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	Save(name, value string)
}

// RegisterSteps registers assignor step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &assignorSteps{tc: tc}

	ctx.Step(`^an assignor named "([^"]*)" exists$`, steps.assignorExists)
	ctx.Step(`^I save the response id as "([^"]*)"$`, steps.saveResponseID)
	ctx.Step(`^I generate a valid document as "([^"]*)"$`, steps.generateDocument)
}

type assignorSteps struct {
	tc TestContext
}

// assignorExists creates an assignor and saves its id as "assignorId".
func (s *assignorSteps) assignorExists(ctx context.Context, name string) error {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	err := s.tc.POST("/integrations/assignor", map[string]string{
		"document": testutil.UniqueCPF(),
		"email":    slug + "@example.com",
		"phone":    "+55 11 98888-7777",
		"name":     name,
	})
	if err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 201 {
		return fmt.Errorf("create assignor returned %d", status)
	}
	return s.saveResponseID(ctx, "assignorId")
}

func (s *assignorSteps) saveResponseID(ctx context.Context, name string) error {
	v, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save(name, fmt.Sprint(v))
	return nil
}

func (s *assignorSteps) generateDocument(ctx context.Context, name string) error {
	s.tc.Save(name, testutil.UniqueCPF())
	return nil
}
