package model

import "time"

// SheetStatus 工作表分析状态
type SheetStatus string

const (
	SheetStatusAnalyzed SheetStatus = "analyzed"
	SheetStatusSkipped  SheetStatus = "skipped"
)

// DiagnosticKind 诊断类型
type DiagnosticKind string

const (
	DiagnosticHeaderNotFound   DiagnosticKind = "header_not_found"
	DiagnosticRoleUnresolved   DiagnosticKind = "role_unresolved"
	DiagnosticTimeParseFailure DiagnosticKind = "time_parse_failure"
	DiagnosticSheetFailure     DiagnosticKind = "sheet_failure"
)

// Diagnostic 工作表被跳过的原因
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind" yaml:"kind"`
	Reason string         `json:"reason" yaml:"reason"`
	Role   Role           `json:"role,omitempty" yaml:"role,omitempty"`
}

// SheetResult 单个工作表的分析结果
type SheetResult struct {
	SheetName  string             `json:"sheetName" yaml:"sheetName"`
	Status     SheetStatus        `json:"status" yaml:"status"`
	HeaderRow  int                `json:"headerRow" yaml:"headerRow"` // 未找到时为 -1
	Roles      ColumnRoleMap      `json:"roles,omitempty" yaml:"roles,omitempty"`
	Records    []TimeRecord       `json:"records,omitempty" yaml:"records,omitempty"`
	Periods    []PeriodSummary    `json:"periods,omitempty" yaml:"periods,omitempty"`
	Report     *UtilizationReport `json:"report,omitempty" yaml:"report,omitempty"`
	Message    string             `json:"message,omitempty" yaml:"message,omitempty"`
	Feedback   string             `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	Diagnostic *Diagnostic        `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
	Duration   time.Duration      `json:"duration" yaml:"duration"`
}

// Analyzed 是否成功产出报告
func (r SheetResult) Analyzed() bool {
	return r.Status == SheetStatusAnalyzed && r.Report != nil
}

// CombinedSummary 全部可用工作表合并后的汇总
type CombinedSummary struct {
	Periods []PeriodSummary   `json:"periods" yaml:"periods"`
	Report  UtilizationReport `json:"report" yaml:"report"`
	Message string            `json:"message" yaml:"message"`
}

// WorkbookReport 工作簿分析报告
type WorkbookReport struct {
	ID             string           `json:"id" yaml:"id"`
	Filename       string           `json:"filename" yaml:"filename"`
	TotalSheets    int              `json:"totalSheets" yaml:"totalSheets"`
	AnalyzedSheets int              `json:"analyzedSheets" yaml:"analyzedSheets"`
	SkippedSheets  int              `json:"skippedSheets" yaml:"skippedSheets"`
	TotalRecords   int              `json:"totalRecords" yaml:"totalRecords"`
	Sheets         []SheetResult    `json:"sheets" yaml:"sheets"`
	Combined       *CombinedSummary `json:"combined,omitempty" yaml:"combined,omitempty"`
	CreatedAt      time.Time        `json:"createdAt" yaml:"createdAt"`
	Duration       time.Duration    `json:"duration" yaml:"duration"`
}

// Sheet 按名称查找工作表结果
func (r *WorkbookReport) Sheet(name string) (SheetResult, bool) {
	for _, s := range r.Sheets {
		if s.SheetName == name {
			return s, true
		}
	}
	return SheetResult{}, false
}

// AllRecords 所有已分析工作表的记录，按工作表顺序
func (r *WorkbookReport) AllRecords() []TimeRecord {
	var out []TimeRecord
	for _, s := range r.Sheets {
		if s.Analyzed() {
			out = append(out, s.Records...)
		}
	}
	return out
}
