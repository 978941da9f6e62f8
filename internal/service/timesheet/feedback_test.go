package timesheet

import (
	"strings"
	"testing"

	"timesheet/internal/model"
)

func TestRenderFeedback_AboveTarget(t *testing.T) {
	t.Parallel()

	report := model.UtilizationReport{TotalHours: 35, AveragePerPeriod: 7, UtilizationPct: 87.5, BaselineHours: 8, Periods: 5, Classification: model.ClassificationHealthy}
	text, err := RenderFeedback(report, "Week 23", FeedbackOptions{Recipient: "Sam", TargetHours: 6})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"Hi Sam,",
		"summary for Week 23:",
		"Total Hours Logged: 35.00 hrs",
		"Average per Period: 7.00 hrs across 5 period(s)",
		"Utilization of 8-hour Workday: 87.50%",
		"Great job maintaining consistency!",
		"- Maintain your focus and task momentum.",
		"Utilization is within healthy range.",
		"at least 6 productive hours/day",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("feedback missing %q:\n%s", want, text)
		}
	}
}

func TestRenderFeedback_BelowTargetDefaults(t *testing.T) {
	t.Parallel()

	report := model.UtilizationReport{TotalHours: 3, AveragePerPeriod: 3, UtilizationPct: 37.5, BaselineHours: 8, Periods: 1, Classification: model.ClassificationLow}
	text, err := RenderFeedback(report, "", FeedbackOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"Hi [Employee],",
		"the period reviewed",
		"You’ve logged below-average work hours.",
		"- Log your hours more consistently and take on more tasks.",
		"Low utilization detected. Consider redistributing workload.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("feedback missing %q:\n%s", want, text)
		}
	}
}
