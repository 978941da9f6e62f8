package parser

import (
	"testing"

	"timesheet/internal/model"
)

func newTestLocator() *HeaderLocator {
	return NewHeaderLocator(DefaultVocabulary(), DefaultScanLimit, []string{"reporting time"})
}

func TestHeaderLocator_HeaderAtRowZero(t *testing.T) {
	t.Parallel()

	sheet := model.RawSheet{Name: "Week 1", Rows: [][]string{
		{"Task", "Start Time", "End Time"},
		{"Write report", "09:00", "12:30"},
		{"Review", "13:00", "14:00"},
	}}
	got, ok := newTestLocator().Locate(sheet)
	if !ok {
		t.Fatalf("expected header")
	}
	if got.Row != 0 {
		t.Fatalf("header row got=%d want=0", got.Row)
	}
}

func TestHeaderLocator_SkipsReportingPreamble(t *testing.T) {
	t.Parallel()

	sheet := model.RawSheet{Name: "Week 2", Rows: [][]string{
		{"Reporting time: 9am-6pm"},
		{"Task", "Start Time", "End Time"},
		{"Write report", "09:00", "12:30"},
	}}
	got, ok := newTestLocator().Locate(sheet)
	if !ok {
		t.Fatalf("expected header")
	}
	if got.Row != 1 {
		t.Fatalf("header row got=%d want=1", got.Row)
	}
}

func TestHeaderLocator_DayNameDatesAreData(t *testing.T) {
	t.Parallel()

	sheet := model.RawSheet{Name: "June", Rows: [][]string{
		{"Week starting Monday"},
		{"Date", "Start", "End", "Task"},
		{"Monday 02 June", "09:00", "17:00", "Build"},
		{"Tuesday 03 June", "09:00", "13:00", "Test"},
	}}
	got, ok := newTestLocator().Locate(sheet)
	if !ok {
		t.Fatalf("expected header")
	}
	if got.Row != 1 {
		t.Fatalf("header row got=%d want=1", got.Row)
	}
}

func TestHeaderLocator_TitleAndBlankRowsBeforeHeader(t *testing.T) {
	t.Parallel()

	sheet := model.RawSheet{Name: "June", Rows: [][]string{
		{"Employee: Jane Doe"},
		{},
		{"", "Brand - Task Description", "Login", "Logout"},
		{"Monday 02 June"},
		{"", "Acme - onboarding", "08:30", "11:00"},
	}}
	got, ok := newTestLocator().Locate(sheet)
	if !ok || got.Row != 2 {
		t.Fatalf("header row got=%d ok=%v want=2", got.Row, ok)
	}
}

func TestHeaderLocator_FirstQualifyingRowWins(t *testing.T) {
	t.Parallel()

	sheet := model.RawSheet{Name: "Two tables", Rows: [][]string{
		{"Task", "Start", "End"},
		{"Build", "09:00", "10:00"},
		{},
		{"Activity", "Begin", "Finish"},
		{"Deploy", "11:00", "12:00"},
	}}
	got, ok := newTestLocator().Locate(sheet)
	if !ok || got.Row != 0 {
		t.Fatalf("header row got=%d ok=%v want=0", got.Row, ok)
	}
}

func TestHeaderLocator_NoHeader(t *testing.T) {
	t.Parallel()

	sheet := model.RawSheet{Name: "Notes", Rows: [][]string{
		{"random", "values"},
		{"1.5", "2.5"},
		{"foo", "bar"},
	}}
	if got, ok := newTestLocator().Locate(sheet); ok {
		t.Fatalf("expected no header, got row=%d", got.Row)
	}
}

func TestHeaderLocator_RespectsScanLimit(t *testing.T) {
	t.Parallel()

	rows := make([][]string, 0, 8)
	for i := 0; i < 6; i++ {
		rows = append(rows, []string{"preamble"})
	}
	rows = append(rows, []string{"Task", "Start", "End"}, []string{"x", "09:00", "10:00"})
	sheet := model.RawSheet{Name: "Deep", Rows: rows}

	if _, ok := NewHeaderLocator(nil, 5, nil).Locate(sheet); ok {
		t.Fatalf("expected header outside scan window to be ignored")
	}
	if got, ok := NewHeaderLocator(nil, 10, nil).Locate(sheet); !ok || got.Row != 6 {
		t.Fatalf("header row got=%d ok=%v want=6", got.Row, ok)
	}
}

func TestHeaderLocator_SelectedRowAlwaysHasKeyword(t *testing.T) {
	t.Parallel()

	sheets := []model.RawSheet{
		{Rows: [][]string{{"a", "b"}, {"Task", "In", "Out"}, {"x", "9:00", "10:00"}}},
		{Rows: [][]string{{"Reporting time"}, {"c", "d"}}},
		{Rows: [][]string{{"Duty", "Check-In", "Checkout"}}},
	}
	loc := newTestLocator()
	for i, sheet := range sheets {
		got, ok := loc.Locate(sheet)
		if !ok {
			continue
		}
		if len(got.Keywords) == 0 {
			t.Fatalf("sheet %d: selected row %d has no keywords", i, got.Row)
		}
		hits := 0
		for _, cell := range sheet.Rows[got.Row] {
			hits += len(ContainsAny(cell, loc.keywords))
		}
		if hits == 0 {
			t.Fatalf("sheet %d: row %d does not match vocabulary", i, got.Row)
		}
	}
}
