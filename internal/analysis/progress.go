package analysis

import (
	"context"
	"fmt"
	"io"
	"time"

	"timesheet/internal/service/excel"
)

// 事件类型
const (
	EventStart      = "start"
	EventInfo       = "info"
	EventSheetStart = "sheet_start"
	EventSheetDone  = "sheet_done"
	EventWarning    = "warning"
	EventError      = "error"
	EventDone       = "done"
)

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string    `json:"type"`           // start/info/sheet_start/sheet_done/warning/error/done
	Message   string    `json:"message"`        // 事件消息
	Data      any       `json:"data,omitempty"` // 附加数据，done 事件为 *model.WorkbookReport
	Timestamp time.Time `json:"timestamp"`
}

func newEvent(typ, message string, data any) ProgressEvent {
	return ProgressEvent{Type: typ, Message: message, Data: data, Timestamp: time.Now()}
}

// AnalyzeOptions 流式分析输入
type AnalyzeOptions struct {
	Reader   io.Reader
	Filename string
}

// Analyze 执行分析，返回进度通道；最后一个事件为 done 或 error
func (c *Coordinator) Analyze(ctx context.Context, opts AnalyzeOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doAnalyze(ctx, opts, progressChan)
	}()

	return progressChan
}

func (c *Coordinator) doAnalyze(ctx context.Context, opts AnalyzeOptions, progressChan chan ProgressEvent) {
	emit := func(evt ProgressEvent) { sendProgress(ctx, progressChan, evt) }

	emit(newEvent(EventStart, "analyzing workbook", map[string]string{
		"filename": opts.Filename,
	}))

	sheets, err := excel.LoadWorkbook(opts.Reader, opts.Filename)
	if err != nil {
		emit(newEvent(EventError, fmt.Sprintf("failed to read workbook: %v", err), nil))
		return
	}

	report := c.run(ctx, opts.Filename, sheets, emit)
	emit(newEvent(EventDone, "analysis complete", report))
}

// sendProgress 发送进度事件，调用方取消后放弃发送
func sendProgress(ctx context.Context, ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
	}
}
