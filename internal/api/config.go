package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConfigResponse 配置响应，不含密钥
type ConfigResponse struct {
	ScanLimit             int                 `json:"scanLimit"`
	BaselineHours         float64             `json:"baselineHours"`
	FuzzyThreshold        float64             `json:"fuzzyThreshold"`
	SemanticMinSimilarity float64             `json:"semanticMinSimilarity"`
	Strategies            []string            `json:"strategies"`
	DefaultTask           string              `json:"defaultTask"`
	DefaultPeriod         string              `json:"defaultPeriod"`
	EmbeddingProvider     string              `json:"embeddingProvider"`
	Vocabulary            map[string][]string `json:"vocabulary"`
	MaxUploadMB           int                 `json:"maxUploadMb"`
}

// GetConfig 获取当前分析配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	vocab := make(map[string][]string)
	for role, words := range h.cfg.Vocab() {
		vocab[string(role)] = words
	}

	c.JSON(http.StatusOK, ConfigResponse{
		ScanLimit:             h.cfg.Analysis.ScanLimit,
		BaselineHours:         h.cfg.Analysis.BaselineHours,
		FuzzyThreshold:        h.cfg.Analysis.FuzzyThreshold,
		SemanticMinSimilarity: h.cfg.Analysis.SemanticMinSimilarity,
		Strategies:            h.coordinator.Strategies(),
		DefaultTask:           h.cfg.Analysis.DefaultTask,
		DefaultPeriod:         h.cfg.Analysis.DefaultPeriod,
		EmbeddingProvider:     h.cfg.Embedding.Provider,
		Vocabulary:            vocab,
		MaxUploadMB:           h.cfg.Server.MaxUploadMB,
	})
}
