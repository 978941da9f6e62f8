package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"timesheet/internal/embedding"
	"timesheet/internal/model"
)

func resolveIndexes(m model.ColumnRoleMap) map[model.Role]int {
	out := make(map[model.Role]int, len(m))
	for role, match := range m {
		out[role] = match.Index
	}
	return out
}

func TestRoleResolver_SubstringCommonCase(t *testing.T) {
	t.Parallel()

	r := NewRoleResolver(nil, nil, zap.NewNop())
	got := r.Resolve(context.Background(), []string{"Date", "Task", "Start Time", "End Time"})

	want := map[model.Role]int{
		model.RolePeriod: 0,
		model.RoleTask:   1,
		model.RoleStart:  2,
		model.RoleEnd:    3,
	}
	if diff := cmp.Diff(want, resolveIndexes(got)); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
	if got[model.RoleStart].Strategy != StrategySubstring {
		t.Fatalf("start strategy got=%s want=%s", got[model.RoleStart].Strategy, StrategySubstring)
	}
}

func TestRoleResolver_StartTimeAlwaysWins(t *testing.T) {
	t.Parallel()

	r := NewRoleResolver(nil, nil, zap.NewNop())
	layouts := [][]string{
		{"Start Date", "Start Time", "End Time"},
		{"Login", "Start Time", "Finish"},
		{"Reporting", "Begin", "Start Time", "Out"},
	}
	for _, cols := range layouts {
		got := r.Resolve(context.Background(), cols)
		start, ok := got[model.RoleStart]
		if !ok || cols[start.Index] != "Start Time" {
			t.Fatalf("columns %v: start got=%v want Start Time", cols, start)
		}
	}
}

func TestRoleResolver_ShortKeywords(t *testing.T) {
	t.Parallel()

	r := NewRoleResolver(nil, nil, zap.NewNop())
	got := r.Resolve(context.Background(), []string{"Training Topic", "Time In", "Time Out"})
	if idx, _ := got.Column(model.RoleStart); idx != 1 {
		t.Fatalf("start got=%d want=1", idx)
	}
	if idx, _ := got.Column(model.RoleEnd); idx != 2 {
		t.Fatalf("end got=%d want=2", idx)
	}
}

func TestRoleResolver_InflectedShortKeywords(t *testing.T) {
	t.Parallel()

	r := NewRoleResolver(nil, nil, zap.NewNop())
	got := r.Resolve(context.Background(), []string{"Task", "Starting", "Ending"})
	want := map[model.Role]int{
		model.RoleTask:  0,
		model.RoleStart: 1,
		model.RoleEnd:   2,
	}
	if diff := cmp.Diff(want, resolveIndexes(got)); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
	if got[model.RoleEnd].Strategy != StrategySubstring {
		t.Fatalf("end strategy got=%s want=%s", got[model.RoleEnd].Strategy, StrategySubstring)
	}
}

func TestRoleResolver_FuzzyFallback(t *testing.T) {
	t.Parallel()

	r := NewRoleResolver(nil, nil, zap.NewNop())
	got := r.Resolve(context.Background(), []string{"Tsk", "Strat", "Fnish"})

	start, ok := got[model.RoleStart]
	if !ok || start.Index != 1 || start.Strategy != StrategyFuzzy {
		t.Fatalf("start got=%+v ok=%v want fuzzy index 1", start, ok)
	}
	end, ok := got[model.RoleEnd]
	if !ok || end.Index != 2 || end.Strategy != StrategyFuzzy {
		t.Fatalf("end got=%+v ok=%v want fuzzy index 2", end, ok)
	}
	if !got.Usable() {
		t.Fatalf("expected usable map")
	}
}

func TestRoleResolver_MissingEndIsReported(t *testing.T) {
	t.Parallel()

	r := NewRoleResolver(nil, nil, zap.NewNop())
	got := r.Resolve(context.Background(), []string{"Task", "Start Time", "Notes"})
	role, missing := got.Missing()
	if !missing || role != model.RoleEnd {
		t.Fatalf("missing got=%s,%v want=end,true", role, missing)
	}
}

func TestRoleResolver_ColumnNotClaimedTwice(t *testing.T) {
	t.Parallel()

	r := NewRoleResolver(nil, nil, zap.NewNop())
	got := r.Resolve(context.Background(), []string{"Start/End", "Task"})
	start, okStart := got[model.RoleStart]
	end, okEnd := got[model.RoleEnd]
	if okStart && okEnd && start.Index == end.Index {
		t.Fatalf("column %d claimed by both start and end", start.Index)
	}
}

// stubEngine 把文本映射到预设向量
type stubEngine struct {
	vectors map[string][]float32
	err     error
}

func (s stubEngine) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := s.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, nil
}

func (s stubEngine) Name() string { return "stub" }

func TestRoleResolver_SemanticFallback(t *testing.T) {
	t.Parallel()

	engine := stubEngine{vectors: map[string][]float32{
		"arrival":    {1, 0, 0},
		"departure":  {0, 1, 0},
		"start time": {1, 0.1, 0},
		"end time":   {0.1, 1, 0},
	}}
	strategies, err := BuildStrategies(
		[]string{StrategySubstring, StrategyFuzzy, StrategySemantic},
		StrategyOptions{Engine: engine, SemanticMinSimilarity: 0.5},
	)
	if err != nil {
		t.Fatalf("build strategies: %v", err)
	}
	r := NewRoleResolver(nil, strategies, zap.NewNop())
	got := r.Resolve(context.Background(), []string{"Arrival", "Departure"})

	if m := got[model.RoleStart]; m.Index != 0 || m.Strategy != StrategySemantic {
		t.Fatalf("start got=%+v want semantic index 0", m)
	}
	if m := got[model.RoleEnd]; m.Index != 1 || m.Strategy != StrategySemantic {
		t.Fatalf("end got=%+v want semantic index 1", m)
	}
}

func TestRoleResolver_SemanticFailureDegrades(t *testing.T) {
	t.Parallel()

	strategies, err := BuildStrategies(
		[]string{StrategySubstring, StrategySemantic},
		StrategyOptions{Engine: stubEngine{err: errors.New("model offline")}},
	)
	if err != nil {
		t.Fatalf("build strategies: %v", err)
	}
	r := NewRoleResolver(nil, strategies, zap.NewNop())
	got := r.Resolve(context.Background(), []string{"Start Time", "Arrival"})
	if _, ok := got[model.RoleStart]; !ok {
		t.Fatalf("substring match should survive semantic failure")
	}
	if _, ok := got[model.RoleEnd]; ok {
		t.Fatalf("end should stay unresolved")
	}
}

func TestBuildStrategies(t *testing.T) {
	t.Parallel()

	got, err := BuildStrategies([]string{"substring", "semantic", "fuzzy"}, StrategyOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Name()
	}
	if diff := cmp.Diff([]string{StrategySubstring, StrategyFuzzy}, names); diff != "" {
		t.Fatalf("semantic without engine should be skipped (-want +got):\n%s", diff)
	}

	if _, err := BuildStrategies([]string{"telepathy"}, StrategyOptions{}); err == nil {
		t.Fatalf("expected unknown strategy error")
	}

	lexical, err := BuildStrategies([]string{"semantic"}, StrategyOptions{Engine: embedding.NewLexicalEngine(0)})
	if err != nil || len(lexical) != 1 {
		t.Fatalf("lexical semantic strategy: n=%d err=%v", len(lexical), err)
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	if got := Similarity("start", "start"); got != 1 {
		t.Fatalf("identical got=%v want=1", got)
	}
	if got := Similarity("start", "strat"); got != 0.6 {
		t.Fatalf("transposed got=%v want=0.6", got)
	}
	if got := Similarity("", ""); got != 1 {
		t.Fatalf("empty got=%v want=1", got)
	}
}
