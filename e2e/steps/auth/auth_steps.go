package auth

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// Credentials the in-process server is configured with.
const (
	DefaultLogin    = "aprovame"
	DefaultPassword = "aprovame"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetAccessToken() string
	SetAccessToken(token string)
}

// RegisterSteps registers authentication-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I am authenticated$`, steps.authenticate)
	ctx.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, steps.login)
	ctx.Step(`^I save the access token$`, steps.saveAccessToken)
	ctx.Step(`^I use the token "([^"]*)"$`, steps.useToken)
	ctx.Step(`^I am not authenticated$`, steps.clearToken)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) login(ctx context.Context, login, password string) error {
	return s.tc.POST("/auth", map[string]string{"login": login, "password": password})
}

func (s *authSteps) authenticate(ctx context.Context) error {
	s.tc.SetAccessToken("")
	if err := s.login(ctx, DefaultLogin, DefaultPassword); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("login failed with status %d", status)
	}
	return s.saveAccessToken(ctx)
}

func (s *authSteps) saveAccessToken(ctx context.Context) error {
	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	str, ok := token.(string)
	if !ok || str == "" {
		return fmt.Errorf("access_token is not a non-empty string: %v", token)
	}
	s.tc.SetAccessToken(str)
	return nil
}

func (s *authSteps) useToken(ctx context.Context, token string) error {
	s.tc.SetAccessToken(token)
	return nil
}

func (s *authSteps) clearToken(ctx context.Context) error {
	s.tc.SetAccessToken("")
	return nil
}
