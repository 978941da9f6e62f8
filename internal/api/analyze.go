package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timesheet/internal/analysis"
	"timesheet/internal/model"
	"timesheet/internal/service/excel"
)

// Analyze 上传并分析工作簿
// POST /api/analyze?stream=true 时以 SSE 推送进度
func (h *Handler) Analyze(c *gin.Context) {
	if h.cfg.Server.MaxUploadMB > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.cfg.Server.MaxUploadMB)<<20)
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload field \"file\""})
		return
	}
	filename := filepath.Base(header.Filename)
	if !excel.IsSupported(filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename))})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open upload"})
		return
	}
	defer file.Close()

	if c.Query("stream") == "true" {
		h.analyzeStream(c, analysis.AnalyzeOptions{Reader: file, Filename: filename})
		return
	}

	report, err := h.coordinator.AnalyzeReader(c.Request.Context(), file, filename)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, excel.ErrUnreadableWorkbook) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.reports.put(report)
	c.JSON(http.StatusOK, report)
}

func (h *Handler) analyzeStream(c *gin.Context, opts analysis.AnalyzeOptions) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	for event := range h.coordinator.Analyze(c.Request.Context(), opts) {
		if event.Type == analysis.EventDone {
			if report, ok := event.Data.(*model.WorkbookReport); ok {
				h.reports.put(report)
			}
		}

		eventData, err := json.Marshal(event)
		if err != nil {
			h.logger.Warn("encode progress event", zap.String("type", event.Type), zap.Error(err))
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// GetAnalysis 获取缓存的分析结果
// GET /api/analyses/:id
func (h *Handler) GetAnalysis(c *gin.Context) {
	report, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) lookup(c *gin.Context) (*model.WorkbookReport, bool) {
	id := c.Param("id")
	report, ok := h.reports.get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found or expired"})
		return nil, false
	}
	return report, true
}
