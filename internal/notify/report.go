package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"aprovame/internal/batch/models"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; }
    .header { background-color: #f8f9fa; padding: 20px; border-radius: 5px; }
    .stats { display: flex; gap: 20px; margin: 20px 0; }
    .stat-box { background-color: #e9ecef; padding: 15px; border-radius: 5px; flex: 1; }
    .success { border-left: 4px solid #28a745; }
    .failure { border-left: 4px solid #dc3545; }
    .errors { background-color: #f8d7da; padding: 15px; border-radius: 5px; margin-top: 20px; }
    .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #dee2e6; color: #6c757d; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Batch processing completed</h1>
    <p><strong>Batch ID:</strong> {{.BatchID}}</p>
    <p><strong>Processed at:</strong> {{.ProcessedAt}}</p>
  </div>
  <div class="content">
    <h2>Summary</h2>
    <div class="stats">
      <div class="stat-box">
        <h3>Total payables</h3>
        <p class="total">{{.Total}}</p>
      </div>
      <div class="stat-box success">
        <h3>Succeeded</h3>
        <p class="count">{{.SuccessCount}}</p>
        <p class="rate">{{.SuccessRate}}%</p>
      </div>
      <div class="stat-box failure">
        <h3>Failed</h3>
        <p class="count">{{.FailureCount}}</p>
        <p class="rate">{{.FailureRate}}%</p>
      </div>
    </div>
{{- if .Errors}}
    <div class="errors">
      <h3>Errors</h3>
      <ul>
{{- range .Errors}}
        <li>{{.}}</li>
{{- end}}
      </ul>
    </div>
{{- end}}
  </div>
  <div class="footer">
    <p>This is an automatic notification from the Bankme payables service.</p>
  </div>
</body>
</html>
`))

type reportView struct {
	BatchID      string
	ProcessedAt  string
	Total        int
	SuccessCount int
	FailureCount int
	SuccessRate  string
	FailureRate  string
	Errors       []string
}

// Subject is the mail subject for a finished batch.
func Subject(result *models.Result) string {
	return "Batch processing completed - " + result.BatchID.String()
}

// RenderReport renders the HTML completion report. Error messages are escaped.
func RenderReport(result *models.Result) (string, error) {
	view := reportView{
		BatchID:      result.BatchID.String(),
		ProcessedAt:  result.ProcessedAt.UTC().Format(time.RFC1123),
		Total:        result.TotalPayables,
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
		SuccessRate:  Percentage(result.SuccessCount, result.TotalPayables),
		FailureRate:  Percentage(result.FailureCount, result.TotalPayables),
		Errors:       result.Errors,
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render batch report: %w", err)
	}
	return buf.String(), nil
}

// Percentage returns part/total×100 with two decimals, "0.00" when total is zero.
func Percentage(part, total int) string {
	if total <= 0 {
		return "0.00"
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2).
		StringFixed(2)
}
