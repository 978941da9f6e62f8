package api

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timesheet/internal/service/excel"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DownloadFeedback 下载反馈文本，sheet 为空时使用合并汇总
// GET /api/analyses/:id/feedback?sheet=
func (h *Handler) DownloadFeedback(c *gin.Context) {
	report, ok := h.lookup(c)
	if !ok {
		return
	}

	sheet := c.Query("sheet")
	text, err := h.coordinator.Feedback(report, sheet)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	name := baseName(report.Filename) + "-feedback"
	if sheet != "" {
		name += "-" + sheet
	}
	c.Header("Content-Disposition", contentDisposition(name+".txt"))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// DownloadExport 下载 Excel 格式的分析结果
// GET /api/analyses/:id/export
func (h *Handler) DownloadExport(c *gin.Context) {
	report, ok := h.lookup(c)
	if !ok {
		return
	}

	file, err := excel.NewExporter().Export(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed: " + err.Error()})
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", contentDisposition(baseName(report.Filename)+"-utilization.xlsx"))
	c.Header("Content-Type", xlsxContentType)
	if err := file.Write(c.Writer); err != nil {
		h.logger.Warn("write export", zap.String("id", report.ID), zap.Error(err))
	}
}

func baseName(filename string) string {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if name == "" || name == "." {
		return "timesheet"
	}
	return name
}

// contentDisposition 带 ASCII 回退名的附件头
func contentDisposition(filename string) string {
	fallback := strings.Map(func(r rune) rune {
		if r > 0x7e || r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", fallback, url.PathEscape(filename))
}
