package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"timesheet/internal/embedding"
	"timesheet/internal/parser"
)

// Validate 校验配置是否可用
func (c *AppConfig) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateFeedback(); err != nil {
		return err
	}
	return nil
}

func (c *AppConfig) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReportTTLMinutes <= 0 {
		return errors.New("server.report_ttl_minutes must be positive")
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be positive")
	}
	return nil
}

func (c *AppConfig) validateAnalysis() error {
	a := c.Analysis
	if a.ScanLimit <= 0 {
		return errors.New("analysis.scan_limit must be positive")
	}
	if a.BaselineHours <= 0 {
		return errors.New("analysis.baseline_hours must be positive")
	}
	if a.FuzzyThreshold <= 0 || a.FuzzyThreshold > 1 {
		return errors.New("analysis.fuzzy_threshold must be within (0, 1]")
	}
	if a.SemanticMinSimilarity < -1 || a.SemanticMinSimilarity > 1 {
		return errors.New("analysis.semantic_min_similarity must be within [-1, 1]")
	}
	known := []string{parser.StrategySubstring, parser.StrategyFuzzy, parser.StrategySemantic}
	for _, s := range a.Strategies {
		if !slices.Contains(known, strings.ToLower(strings.TrimSpace(s))) {
			return fmt.Errorf("analysis.strategies: unknown strategy %q (use %s)", s, strings.Join(known, ", "))
		}
	}
	return nil
}

func (c *AppConfig) validateEmbedding() error {
	switch c.Embedding.Provider {
	case embedding.ProviderNone, embedding.ProviderLexical, embedding.ProviderOllama, "":
		return nil
	case embedding.ProviderGenAI:
		if c.Embedding.GenAIAPIKey == "" && c.UsesSemantic() {
			return errors.New("embedding.genai_api_key is required for provider genai. Set GEMINI_API_KEY or TIMESHEET_GENAI_API_KEY")
		}
		return nil
	default:
		return fmt.Errorf("embedding.provider must be one of none, lexical, ollama, genai, got %q", c.Embedding.Provider)
	}
}

func (c *AppConfig) validateFeedback() error {
	if c.Feedback.TargetHours < 0 {
		return errors.New("feedback.target_hours must not be negative")
	}
	return nil
}

// UsesSemantic 策略链中是否启用语义匹配
func (c *AppConfig) UsesSemantic() bool {
	for _, s := range c.Analysis.Strategies {
		if strings.EqualFold(strings.TrimSpace(s), parser.StrategySemantic) {
			return true
		}
	}
	return false
}
