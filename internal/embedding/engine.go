// Package embedding 提供列名语义匹配所需的向量化能力
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Engine 文本向量化
type Engine interface {
	// Embed 批量生成向量，顺序与输入一致
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Name 引擎名称
	Name() string
}

// Provider 取值
const (
	ProviderNone    = "none"
	ProviderLexical = "lexical"
	ProviderOllama  = "ollama"
	ProviderGenAI   = "genai"
)

// ErrDisabled 未配置语义引擎
var ErrDisabled = errors.New("embedding provider disabled")

// Config 向量化引擎配置
type Config struct {
	Provider       string `toml:"provider" json:"provider"`
	OllamaEndpoint string `toml:"ollama_endpoint" json:"ollamaEndpoint"`
	OllamaModel    string `toml:"ollama_model" json:"ollamaModel"`
	GenAIAPIKey    string `toml:"genai_api_key" json:"-"`
	GenAIModel     string `toml:"genai_model" json:"genaiModel"`
	TaskType       string `toml:"task_type" json:"taskType"`
	TimeoutSeconds int    `toml:"timeout_seconds" json:"timeoutSeconds"`
}

// DefaultConfig 默认使用无模型的字符级比较器
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderLexical,
		OllamaEndpoint: "http://localhost:11434",
		OllamaModel:    "embeddinggemma",
		GenAIModel:     "gemini-embedding-001",
		TaskType:       "SEMANTIC_SIMILARITY",
		TimeoutSeconds: 30,
	}
}

// NewEngine 按配置创建引擎
func NewEngine(ctx context.Context, cfg Config) (Engine, error) {
	switch cfg.Provider {
	case ProviderNone, "":
		return nil, ErrDisabled
	case ProviderLexical:
		return NewLexicalEngine(0), nil
	case ProviderOllama:
		return NewOllamaEngine(cfg.OllamaEndpoint, cfg.OllamaModel, cfg.TimeoutSeconds), nil
	case ProviderGenAI:
		return NewGenAIEngine(ctx, cfg.GenAIAPIKey, cfg.GenAIModel, cfg.TaskType)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// CosineSimilarity 余弦相似度，零向量返回 0
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}
	var dot, aMag, bMag float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		aMag += float64(a[i]) * float64(a[i])
		bMag += float64(b[i]) * float64(b[i])
	}
	if aMag == 0 || bMag == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag)), nil
}
