package excel

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"timesheet/internal/model"
)

const (
	sheetSummary = "Summary"
	sheetPeriods = "Periods"
	sheetRecords = "Records"

	timeLayout = "15:04"
)

// Exporter 分析报告导出器
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export 导出报告：Summary 每表一行，Periods 周期汇总，Records 明细
func (e *Exporter) Export(report *model.WorkbookReport) (*excelize.File, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{sheetPeriods, sheetRecords} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	// 设置表头样式
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	summary := [][]any{{"Sheet", "Status", "Total Hours", "Average / Period", "Utilization %", "Classification", "Message"}}
	periods := [][]any{{"Sheet", "Period", "Total Hours", "Entries"}}
	records := [][]any{{"Sheet", "Row", "Period", "Task", "Start", "End", "Duration (h)"}}

	for _, s := range report.Sheets {
		if !s.Analyzed() {
			reason := ""
			if s.Diagnostic != nil {
				reason = fmt.Sprintf("%s: %s", s.Diagnostic.Kind, s.Diagnostic.Reason)
			}
			summary = append(summary, []any{s.SheetName, string(s.Status), nil, nil, nil, nil, reason})
			continue
		}
		r := s.Report
		summary = append(summary, []any{s.SheetName, string(s.Status), r.TotalHours, r.AveragePerPeriod, r.UtilizationPct, string(r.Classification), s.Message})
		for _, p := range s.Periods {
			periods = append(periods, []any{s.SheetName, p.Period, p.TotalHours, p.Entries})
		}
		for _, rec := range s.Records {
			records = append(records, []any{rec.Sheet, rec.Row + 1, rec.Period, rec.Task, formatTime(rec.Start), formatTime(rec.End), durationCell(rec.DurationHours)})
		}
	}
	if c := report.Combined; c != nil {
		summary = append(summary, []any{"All sheets", "combined", c.Report.TotalHours, c.Report.AveragePerPeriod, c.Report.UtilizationPct, string(c.Report.Classification), c.Message})
	}

	for _, sheet := range []struct {
		name string
		rows [][]any
	}{{sheetSummary, summary}, {sheetPeriods, periods}, {sheetRecords, records}} {
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			_ = f.Close()
			return nil, err
		}
		_ = f.SetRowStyle(sheet.name, 1, 1, headerStyle)
		_ = f.SetColWidth(sheet.name, "A", "A", 24)
		_ = f.SetColWidth(sheet.name, "B", "G", 16)
	}
	_ = f.SetColWidth(sheetSummary, "G", "G", 60)
	_ = f.SetColWidth(sheetRecords, "D", "D", 40)

	return f, nil
}

// WriteTo 导出并写入 w
func (e *Exporter) WriteTo(report *model.WorkbookReport, w io.Writer) error {
	f, err := e.Export(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

// SaveAs 导出并保存到文件
func (e *Exporter) SaveAs(report *model.WorkbookReport, path string) error {
	f, err := e.Export(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// formatTime 仅含时刻的值只输出 HH:MM
func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	if t.Year() == 0 {
		return t.Format(timeLayout)
	}
	return t.Format("2006-01-02 " + timeLayout)
}

func durationCell(v *float64) any {
	if v == nil {
		return nil
	}
	return model.Round2(*v)
}
