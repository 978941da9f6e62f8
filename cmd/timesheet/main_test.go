package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"timesheet/internal/model"
)

const weekCSV = "Task,Start Time,End Time\nWrite report,09:00,12:30\nReview,13:00,14:00\n"

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func writeFixture(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestAnalyzeCommand_JSONByDefault(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "week.csv", weekCSV)
	configPath := filepath.Join(dir, "config.toml")

	out, _, err := runCLI(t, []string{"analyze", src}, configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var report model.WorkbookReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if report.AnalyzedSheets != 1 || report.Sheets[0].Report.UtilizationPct != 56.25 {
		t.Fatalf("report got=%+v", report)
	}
}

func TestAnalyzeCommand_TableAndYAML(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "week.csv", weekCSV)
	configPath := filepath.Join(dir, "config.toml")

	out, _, err := runCLI(t, []string{"analyze", "--format", "table", src}, configPath)
	if err != nil {
		t.Fatalf("analyze table: %v", err)
	}
	requireContains(t, out, "week.csv")
	requireContains(t, out, "56.25%")
	requireContains(t, out, "Utilization is within healthy range.")

	out, _, err = runCLI(t, []string{"analyze", "-f", "yaml", src}, configPath)
	if err != nil {
		t.Fatalf("analyze yaml: %v", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if decoded["analyzedSheets"] != 1 {
		t.Fatalf("yaml analyzedSheets got=%v", decoded["analyzedSheets"])
	}

	if _, _, err := runCLI(t, []string{"analyze", "-f", "xml", src}, configPath); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestAnalyzeCommand_ExportAndFeedback(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "week.csv", weekCSV)
	exportPath := filepath.Join(dir, "out.xlsx")
	feedbackPath := filepath.Join(dir, "feedback.txt")

	_, _, err := runCLI(t, []string{"analyze", "--export", exportPath, "--feedback", feedbackPath, src}, filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	f, err := excelize.OpenFile(exportPath)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 3 {
		t.Fatalf("export sheets got=%v", got)
	}

	text, err := os.ReadFile(feedbackPath)
	if err != nil {
		t.Fatalf("read feedback: %v", err)
	}
	requireContains(t, string(text), "Total Hours Logged: 4.50 hrs")
}

func TestAnalyzeCommand_UnreadableFails(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, dir, "week.csv", weekCSV)
	bad := writeFixture(t, dir, "broken.xlsx", "not a workbook")

	out, stderr, err := runCLI(t, []string{"analyze", bad, good}, filepath.Join(dir, "config.toml"))
	if err == nil {
		t.Fatalf("expected error for unreadable workbook")
	}
	requireContains(t, stderr, "broken.xlsx")
	requireContains(t, out, "week.csv")
}

func TestAnalyzeCommand_StrategyOverride(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir, "week.csv", weekCSV)

	if _, _, err := runCLI(t, []string{"analyze", "--strategies", "magic", src}, filepath.Join(dir, "config.toml")); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
	if _, _, err := runCLI(t, []string{"analyze", "--strategies", "substring", "--scan-limit", "3", src}, filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("analyze with overrides: %v", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote default configuration")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatalf("expected error when config exists")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, target)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# config: "+target)
	requireContains(t, out, "scan_limit = 10")
}

func TestPerFilePath(t *testing.T) {
	t.Parallel()

	if got := perFilePath("out.xlsx", "a/week.csv", false); got != "out.xlsx" {
		t.Fatalf("single got=%s", got)
	}
	if got := perFilePath("out/report.xlsx", "a/week.csv", true); got != filepath.Join("out", "report-week.xlsx") && got != "out/report-week.xlsx" {
		t.Fatalf("multi got=%s", got)
	}
}
