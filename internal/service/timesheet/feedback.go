package timesheet

import (
	"bytes"
	"fmt"
	"text/template"

	"timesheet/internal/model"
)

var feedbackTemplate = template.Must(template.New("feedback").Parse(`Hi {{.Recipient}},

Here’s your time performance summary for {{.Scope}}:

- Total Hours Logged: {{printf "%.2f" .Report.TotalHours}} hrs
- Average per Period: {{printf "%.2f" .Report.AveragePerPeriod}} hrs across {{.Report.Periods}} period(s)
- Utilization of {{printf "%g" .Report.BaselineHours}}-hour Workday: {{printf "%.2f" .Report.UtilizationPct}}%

Observations:
{{.Observation}}
{{.Banner}}

Recommendations:
- {{.Recommendation}}

Let’s aim for at least {{printf "%g" .TargetHours}} productive hours/day next week!
`))

// FeedbackOptions 反馈文本参数
type FeedbackOptions struct {
	Recipient   string
	TargetHours float64
}

// DefaultFeedbackOptions 默认参数
func DefaultFeedbackOptions() FeedbackOptions {
	return FeedbackOptions{Recipient: "[Employee]", TargetHours: 6}
}

type feedbackData struct {
	Recipient      string
	Scope          string
	Report         model.UtilizationReport
	Observation    string
	Recommendation string
	Banner         string
	TargetHours    float64
}

// RenderFeedback 由利用率报告生成纯文本反馈，scope 为空时表示整个统计区间
func RenderFeedback(report model.UtilizationReport, scope string, opts FeedbackOptions) (string, error) {
	if opts.Recipient == "" {
		opts.Recipient = "[Employee]"
	}
	if opts.TargetHours <= 0 {
		opts.TargetHours = 6
	}
	if scope == "" {
		scope = "the period reviewed"
	}

	data := feedbackData{
		Recipient:      opts.Recipient,
		Scope:          scope,
		Report:         report,
		Banner:         report.Classification.Message(),
		TargetHours:    opts.TargetHours,
		Observation:    "You’ve logged below-average work hours.",
		Recommendation: "Log your hours more consistently and take on more tasks.",
	}
	if report.AveragePerPeriod > opts.TargetHours {
		data.Observation = "Great job maintaining consistency!"
		data.Recommendation = "Maintain your focus and task momentum."
	}

	var buf bytes.Buffer
	if err := feedbackTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render feedback: %w", err)
	}
	return buf.String(), nil
}
