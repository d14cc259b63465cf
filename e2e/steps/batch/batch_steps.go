package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"aprovame/internal/notify"
)

const reportWait = 5 * time.Second

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	Save(name, value string)
	Saved(name string) string
	SentEmails() ([]notify.Email, bool)
}

// RegisterSteps registers batch intake and report step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &batchSteps{tc: tc}

	ctx.Step(`^I submit a batch of (\d+) payables? for the assignor$`, steps.submitValid)
	ctx.Step(`^I submit a batch of (\d+) payables? for an unknown assignor$`, steps.submitUnknownAssignor)
	ctx.Step(`^I submit a batch for the assignor with values "([^"]*)"$`, steps.submitValues)
	ctx.Step(`^I submit a batch for the assignor dated tomorrow$`, steps.submitFuture)
	ctx.Step(`^I save the batch id$`, steps.saveBatchID)
	ctx.Step(`^a batch report should be sent to "([^"]*)"$`, steps.reportSentTo)
	ctx.Step(`^the batch report should show (\d+) succeeded and (\d+) failed$`, steps.reportCounts)
	ctx.Step(`^the batch report should not list errors$`, steps.reportWithoutErrors)
	ctx.Step(`^no batch report should be sent$`, steps.noReport)
}

type batchSteps struct {
	tc     TestContext
	report *notify.Email
}

func yesterday() string {
	return time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
}

func (s *batchSteps) submit(payables []map[string]any) error {
	return s.tc.POST("/integrations/payable/batch", map[string]any{"payables": payables})
}

func (s *batchSteps) items(n int, assignorID, date string) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"value":        fmt.Sprintf("%d.25", i+1),
			"emissionDate": date,
			"assignor":     assignorID,
		}
	}
	return out
}

func (s *batchSteps) submitValid(ctx context.Context, n int) error {
	return s.submit(s.items(n, s.tc.Saved("assignorId"), yesterday()))
}

func (s *batchSteps) submitUnknownAssignor(ctx context.Context, n int) error {
	return s.submit(s.items(n, "6f1c7a8e-2b1d-4c55-9a0e-3c2b1a0f9e8d", yesterday()))
}

func (s *batchSteps) submitValues(ctx context.Context, values string) error {
	var payables []map[string]any
	for v := range strings.SplitSeq(values, ",") {
		payables = append(payables, map[string]any{
			"value":        strings.TrimSpace(v),
			"emissionDate": yesterday(),
			"assignor":     s.tc.Saved("assignorId"),
		})
	}
	return s.submit(payables)
}

func (s *batchSteps) submitFuture(ctx context.Context) error {
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(time.DateOnly)
	return s.submit(s.items(1, s.tc.Saved("assignorId"), tomorrow))
}

func (s *batchSteps) saveBatchID(ctx context.Context) error {
	v, err := s.tc.GetResponseField("batchId")
	if err != nil {
		return err
	}
	s.tc.Save("batchId", fmt.Sprint(v))
	return nil
}

func (s *batchSteps) reportSentTo(ctx context.Context, recipient string) error {
	subject := "Batch processing completed - " + s.tc.Saved("batchId")
	deadline := time.Now().Add(reportWait)
	for {
		sent, ok := s.tc.SentEmails()
		if !ok {
			return godog.ErrSkip
		}
		for i := range sent {
			if sent[i].Subject == subject {
				if sent[i].To != recipient {
					return fmt.Errorf("report sent to %s, expected %s", sent[i].To, recipient)
				}
				s.report = &sent[i]
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no report with subject %q after %s", subject, reportWait)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (s *batchSteps) reportCounts(ctx context.Context, succeeded, failed int) error {
	if s.report == nil {
		return fmt.Errorf("no report captured")
	}
	for _, want := range []string{
		fmt.Sprintf(`<p class="count">%d</p>`, succeeded),
		fmt.Sprintf(`<p class="count">%d</p>`, failed),
	} {
		if !strings.Contains(s.report.HTML, want) {
			return fmt.Errorf("report does not contain %s", want)
		}
	}
	return nil
}

func (s *batchSteps) reportWithoutErrors(ctx context.Context) error {
	if s.report == nil {
		return fmt.Errorf("no report captured")
	}
	if strings.Contains(s.report.HTML, "<h3>Errors</h3>") {
		return fmt.Errorf("report lists errors")
	}
	return nil
}

func (s *batchSteps) noReport(ctx context.Context) error {
	// Give the worker a moment in case something was queued.
	time.Sleep(100 * time.Millisecond)
	sent, ok := s.tc.SentEmails()
	if !ok {
		return godog.ErrSkip
	}
	if len(sent) != 0 {
		return fmt.Errorf("expected no reports, got %d", len(sent))
	}
	return nil
}
