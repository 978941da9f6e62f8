package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timesheet/internal/analysis"
	"timesheet/internal/config"
)

// Handler API 处理器
type Handler struct {
	coordinator *analysis.Coordinator
	cfg         *config.AppConfig
	reports     *reportStore
	logger      *zap.Logger
	startedAt   time.Time
}

// NewHandler 创建 API 处理器
func NewHandler(coordinator *analysis.Coordinator, cfg *config.AppConfig, logger *zap.Logger) *Handler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := time.Duration(cfg.Server.ReportTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Handler{
		coordinator: coordinator,
		cfg:         cfg,
		reports:     newReportStore(ttl),
		logger:      logger,
		startedAt:   time.Now(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.GET("/config", h.GetConfig)

	// 分析
	router.POST("/analyze", h.Analyze)
	router.GET("/analyses/:id", h.GetAnalysis)

	// 下载
	router.GET("/analyses/:id/feedback", h.DownloadFeedback)
	router.GET("/analyses/:id/export", h.DownloadExport)
}
