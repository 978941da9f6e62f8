package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Status        string   `json:"status"`
	Strategies    []string `json:"strategies"`    // 角色解析策略链
	CachedReports int      `json:"cachedReports"` // 缓存中的报告数
	UptimeSeconds int64    `json:"uptimeSeconds"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:        "ok",
		Strategies:    h.coordinator.Strategies(),
		CachedReports: h.reports.len(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}
