package analysis

import (
	"errors"
	"fmt"

	"timesheet/internal/model"
)

// 工作表级错误，均不影响其他工作表
var (
	ErrHeaderNotFound   = errors.New("header not found")
	ErrRoleUnresolved   = errors.New("role unresolved")
	ErrTimeParseFailure = errors.New("time parse failure")
	ErrSheetFailure     = errors.New("sheet failure")
)

// SheetError 工作表被跳过的原因
type SheetError struct {
	Kind   model.DiagnosticKind
	Sheet  string
	Role   model.Role
	Reason string
	Err    error
}

// Error 实现 error
func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %s", e.Sheet, e.Reason)
}

// Unwrap 返回对应的哨兵错误
func (e *SheetError) Unwrap() error {
	return e.Err
}

// Diagnostic 转换为报告中的诊断
func (e *SheetError) Diagnostic() *model.Diagnostic {
	return &model.Diagnostic{Kind: e.Kind, Reason: e.Reason, Role: e.Role}
}

func headerNotFound(sheet string, scanLimit int) *SheetError {
	return &SheetError{
		Kind:   model.DiagnosticHeaderNotFound,
		Sheet:  sheet,
		Reason: fmt.Sprintf("no header row found in the first %d rows", scanLimit),
		Err:    ErrHeaderNotFound,
	}
}

func roleUnresolved(sheet string, role model.Role, headerRow int) *SheetError {
	return &SheetError{
		Kind:   model.DiagnosticRoleUnresolved,
		Sheet:  sheet,
		Role:   role,
		Reason: fmt.Sprintf("%s column could not be resolved from header row %d", role, headerRow+1),
		Err:    ErrRoleUnresolved,
	}
}

func timeParseFailure(sheet string, records int) *SheetError {
	reason := "no usable rows: no data rows found below the header"
	if records > 0 {
		reason = fmt.Sprintf("no usable rows: start/end times failed to parse for all %d data rows", records)
	}
	return &SheetError{
		Kind:   model.DiagnosticTimeParseFailure,
		Sheet:  sheet,
		Reason: reason,
		Err:    ErrTimeParseFailure,
	}
}

func sheetFailure(sheet string, cause any) *SheetError {
	return &SheetError{
		Kind:   model.DiagnosticSheetFailure,
		Sheet:  sheet,
		Reason: fmt.Sprintf("unexpected failure: %v", cause),
		Err:    ErrSheetFailure,
	}
}
