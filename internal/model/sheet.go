package model

import "strings"

// RawSheet 工作表原始网格（只读）
// 单元格保留读取时的文本形式，数字和日期可能是格式化后的文本或 Excel 序列号
type RawSheet struct {
	Name string     `json:"name" yaml:"name"`
	Rows [][]string `json:"rows" yaml:"rows"`
}

// RowCount 行数
func (s RawSheet) RowCount() int {
	return len(s.Rows)
}

// Cell 获取单元格，越界返回空字符串
func (s RawSheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Row 获取整行，越界返回 nil
func (s RawSheet) Row(row int) []string {
	if row < 0 || row >= len(s.Rows) {
		return nil
	}
	return s.Rows[row]
}

// IsBlankRow 判断整行是否为空
func (s RawSheet) IsBlankRow(row int) bool {
	return IsBlank(s.Row(row))
}

// IsBlank 判断单元格切片是否全部为空白
func IsBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// FirstContent 返回行内第一个非空单元格
func FirstContent(cells []string) string {
	for _, c := range cells {
		if v := strings.TrimSpace(c); v != "" {
			return v
		}
	}
	return ""
}

// HeaderCandidate 表头候选行
type HeaderCandidate struct {
	Row      int      `json:"row" yaml:"row"`           // 0 基行号
	Keywords []string `json:"keywords" yaml:"keywords"` // 命中的词表关键词
}

// Role 列角色
type Role string

const (
	RoleTask   Role = "task"
	RoleStart  Role = "start"
	RoleEnd    Role = "end"
	RolePeriod Role = "period"

	// RoleDuration 显式时长列，仅在起止时间无法得出时长时兜底
	RoleDuration Role = "duration"
)

// ResolveOrder 角色解析顺序，靠前的角色先占用列
var ResolveOrder = []Role{RoleStart, RoleEnd, RoleTask, RolePeriod, RoleDuration}

// Required 是否必需角色
func (r Role) Required() bool {
	return r == RoleStart || r == RoleEnd
}

// ColumnMatch 列匹配结果
type ColumnMatch struct {
	Index    int     `json:"index" yaml:"index"`       // 原始列索引
	Name     string  `json:"name" yaml:"name"`         // 原始列名
	Strategy string  `json:"strategy" yaml:"strategy"` // substring/fuzzy/semantic
	Score    float64 `json:"score" yaml:"score"`
}

// ColumnRoleMap 角色 -> 列，未解析的角色不存在
type ColumnRoleMap map[Role]ColumnMatch

// Column 获取角色对应的列索引
func (m ColumnRoleMap) Column(role Role) (int, bool) {
	match, ok := m[role]
	if !ok {
		return -1, false
	}
	return match.Index, true
}

// Missing 返回第一个缺失的必需角色
func (m ColumnRoleMap) Missing() (Role, bool) {
	for _, role := range ResolveOrder {
		if !role.Required() {
			continue
		}
		if _, ok := m[role]; !ok {
			return role, true
		}
	}
	return "", false
}

// Usable 起止列均已解析
func (m ColumnRoleMap) Usable() bool {
	_, missing := m.Missing()
	return !missing
}
