package parser

import (
	"slices"

	"timesheet/internal/model"
)

// Vocabulary 各角色关键词表，按优先级排列
type Vocabulary map[model.Role][]string

// DefaultVocabulary 默认词表
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		model.RoleStart:    {"start", "begin", "login", "check-in", "report", "in"},
		model.RoleEnd:      {"end", "finish", "close", "logout", "checkout", "out"},
		model.RoleTask:     {"task", "desc", "activity", "duty"},
		model.RolePeriod:   {"date", "day", "week", "period", "month"},
		model.RoleDuration: {"duration", "hours", "hrs"},
	}
}

// headerRoles 参与表头定位的角色
var headerRoles = []model.Role{model.RoleStart, model.RoleEnd, model.RoleTask}

// HeaderKeywords 表头定位使用的关键词（开始/结束/任务类）
func (v Vocabulary) HeaderKeywords() []string {
	var out []string
	for _, role := range headerRoles {
		for _, kw := range v[role] {
			if !slices.Contains(out, kw) {
				out = append(out, kw)
			}
		}
	}
	return out
}

// Merge 用 override 中非空的角色覆盖默认值
func (v Vocabulary) Merge(override map[model.Role][]string) Vocabulary {
	out := make(Vocabulary, len(v))
	for role, kws := range v {
		out[role] = slices.Clone(kws)
	}
	for role, kws := range override {
		if len(kws) > 0 {
			out[role] = slices.Clone(kws)
		}
	}
	return out
}

// Column 参与匹配的列
type Column struct {
	Index      int
	Name       string
	Normalized string
	Tokens     []string
}

// NewColumns 由表头行构造列，空列名跳过
func NewColumns(names []string) []Column {
	cols := make([]Column, 0, len(names))
	for i, name := range names {
		normalized := NormalizeColumnName(name)
		if normalized == "" {
			continue
		}
		cols = append(cols, Column{
			Index:      i,
			Name:       name,
			Normalized: normalized,
			Tokens:     Tokenize(name),
		})
	}
	return cols
}

// match 构造匹配结果
func (c Column) match(strategy string, score float64) model.ColumnMatch {
	return model.ColumnMatch{
		Index:    c.Index,
		Name:     c.Name,
		Strategy: strategy,
		Score:    model.Round2(score),
	}
}
