package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"timesheet/internal/model"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// resolveFormat 未指定时终端输出表格，否则输出 JSON
func resolveFormat(flag string, w io.Writer) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(flag)); f {
	case "":
		if isTerminal(w) {
			return formatTable, nil
		}
		return formatJSON, nil
	case formatTable, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or yaml)", flag)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeReports(cmd *cobra.Command, format string, reports []*model.WorkbookReport) error {
	switch format {
	case formatJSON:
		if len(reports) == 1 {
			return writeJSON(cmd, reports[0])
		}
		return writeJSON(cmd, reports)
	case formatYAML:
		if len(reports) == 1 {
			return writeYAML(cmd, reports[0])
		}
		return writeYAML(cmd, reports)
	default:
		out := cmd.OutOrStdout()
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprint(out, renderReport(r))
		}
		return nil
	}
}

func renderReport(r *model.WorkbookReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  (%d sheet(s), %d analyzed, %d skipped)\n",
		r.Filename, r.TotalSheets, r.AnalyzedSheets, r.SkippedSheets)

	rows := make([][]string, 0, len(r.Sheets))
	for _, s := range r.Sheets {
		if !s.Analyzed() {
			note := ""
			if s.Diagnostic != nil {
				note = s.Diagnostic.Reason
			}
			rows = append(rows, []string{s.SheetName, string(s.Status), "", "", "", "", "", note})
			continue
		}
		rows = append(rows, []string{
			s.SheetName,
			string(s.Status),
			strconv.Itoa(len(s.Records)),
			hours(s.Report.TotalHours),
			hours(s.Report.AveragePerPeriod),
			fmt.Sprintf("%.2f%%", s.Report.UtilizationPct),
			string(s.Report.Classification),
			s.Message,
		})
	}
	b.WriteString(renderTable(
		[]string{"Sheet", "Status", "Records", "Total Hrs", "Avg/Period", "Utilization", "Class", "Note"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	))
	b.WriteString("\n")

	if r.Combined == nil {
		return b.String()
	}

	periodRows := make([][]string, 0, len(r.Combined.Periods))
	for _, p := range r.Combined.Periods {
		periodRows = append(periodRows, []string{p.Period, strconv.Itoa(p.Entries), hours(p.TotalHours)})
	}
	b.WriteString(renderTable([]string{"Period", "Entries", "Hours"}, periodRows,
		[]columnAlignment{alignLeft, alignRight, alignRight}))
	b.WriteString("\n")

	c := r.Combined.Report
	fmt.Fprintf(&b, "Total %s hrs over %d period(s), average %s hrs, utilization %.2f%% of %g h (%s)\n",
		hours(c.TotalHours), c.Periods, hours(c.AveragePerPeriod), c.UtilizationPct, c.BaselineHours, c.Classification)
	b.WriteString(r.Combined.Message)
	b.WriteString("\n")
	return b.String()
}

func hours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
