package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"timesheet/internal/embedding"
	"timesheet/internal/model"
)

// 策略名称
const (
	StrategySubstring = "substring"
	StrategyFuzzy     = "fuzzy"
	StrategySemantic  = "semantic"
)

// DefaultFuzzyThreshold 模糊匹配接受阈值
const DefaultFuzzyThreshold = 0.6

// DefaultSemanticMinSimilarity 语义匹配最低余弦相似度
const DefaultSemanticMinSimilarity = 0.35

// MatchStrategy 按角色关键词给列打分并选出最佳列
type MatchStrategy interface {
	Name() string
	Match(ctx context.Context, role model.Role, keywords []string, columns []Column) (model.ColumnMatch, bool, error)
}

// SubstringStrategy 关键词子串匹配，按关键词优先级逐个尝试
type SubstringStrategy struct{}

// Name 策略名称
func (SubstringStrategy) Name() string { return StrategySubstring }

// Match 对每个关键词，列名恰为 "关键词" 或 "关键词time" 的列优先，其次取第一个包含关键词的列
func (SubstringStrategy) Match(_ context.Context, _ model.Role, keywords []string, columns []Column) (model.ColumnMatch, bool, error) {
	for _, kw := range keywords {
		norm := NormalizeColumnName(kw)
		if norm == "" {
			continue
		}
		for _, col := range columns {
			if col.Normalized == norm || col.Normalized == norm+"time" {
				return col.match(StrategySubstring, 1), true, nil
			}
		}
		for _, col := range columns {
			if MatchKeyword(col.Normalized, col.Tokens, kw) {
				return col.match(StrategySubstring, 1), true, nil
			}
		}
	}
	return model.ColumnMatch{}, false, nil
}

// FuzzyStrategy 编辑距离相似度匹配
type FuzzyStrategy struct {
	Threshold float64
}

// Name 策略名称
func (FuzzyStrategy) Name() string { return StrategyFuzzy }

// Match 取所有关键词与列（整名及各词）的最高相似度，相同分数取靠前的列
func (s FuzzyStrategy) Match(_ context.Context, _ model.Role, keywords []string, columns []Column) (model.ColumnMatch, bool, error) {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}

	best := -1
	bestScore := 0.0
	for i, col := range columns {
		score := 0.0
		for _, kw := range keywords {
			score = max(score, columnSimilarity(NormalizeColumnName(kw), col))
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore < threshold {
		return model.ColumnMatch{}, false, nil
	}
	return columns[best].match(StrategyFuzzy, bestScore), true, nil
}

func columnSimilarity(kw string, col Column) float64 {
	if kw == "" {
		return 0
	}
	score := Similarity(kw, col.Normalized)
	for _, tok := range col.Tokens {
		score = max(score, Similarity(kw, tok))
	}
	return score
}

// Similarity 1 - 编辑距离 / 较长字符串长度，范围 0-1
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// semanticPhrases 语义匹配时在关键词之外补充的描述
var semanticPhrases = map[model.Role][]string{
	model.RoleStart:    {"start time", "time in", "clock in", "shift start"},
	model.RoleEnd:      {"end time", "time out", "clock out", "shift end"},
	model.RoleTask:     {"task description", "work item", "activity performed"},
	model.RolePeriod:   {"date", "work day", "week"},
	model.RoleDuration: {"hours worked", "total time"},
}

// SemanticStrategy 向量相似度匹配
type SemanticStrategy struct {
	Engine        embedding.Engine
	MinSimilarity float64
}

// Name 策略名称
func (SemanticStrategy) Name() string { return StrategySemantic }

// Match 列名与角色关键词变体分别向量化，取与任一变体余弦相似度最高的列
func (s SemanticStrategy) Match(ctx context.Context, role model.Role, keywords []string, columns []Column) (model.ColumnMatch, bool, error) {
	if s.Engine == nil {
		return model.ColumnMatch{}, false, embedding.ErrDisabled
	}
	if len(columns) == 0 {
		return model.ColumnMatch{}, false, nil
	}

	variants := append(append([]string{}, keywords...), semanticPhrases[role]...)
	texts := make([]string, 0, len(columns)+len(variants))
	for _, col := range columns {
		texts = append(texts, strings.ToLower(CollapseSpace(col.Name)))
	}
	texts = append(texts, variants...)

	vecs, err := s.Engine.Embed(ctx, texts)
	if err != nil {
		return model.ColumnMatch{}, false, fmt.Errorf("embed columns: %w", err)
	}
	colVecs, variantVecs := vecs[:len(columns)], vecs[len(columns):]

	best := -1
	bestScore := 0.0
	for i, cv := range colVecs {
		for _, vv := range variantVecs {
			sim, err := embedding.CosineSimilarity(cv, vv)
			if err != nil {
				return model.ColumnMatch{}, false, err
			}
			if sim > bestScore {
				best, bestScore = i, sim
			}
		}
	}
	if best < 0 || bestScore < s.MinSimilarity {
		return model.ColumnMatch{}, false, nil
	}
	return columns[best].match(StrategySemantic, bestScore), true, nil
}

// StrategyOptions 策略链构造参数
type StrategyOptions struct {
	FuzzyThreshold        float64
	SemanticMinSimilarity float64
	Engine                embedding.Engine
}

// BuildStrategies 按名称顺序构造策略链；未提供引擎时跳过 semantic
func BuildStrategies(names []string, opts StrategyOptions) ([]MatchStrategy, error) {
	if len(names) == 0 {
		names = []string{StrategySubstring, StrategyFuzzy}
	}
	out := make([]MatchStrategy, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case StrategySubstring:
			out = append(out, SubstringStrategy{})
		case StrategyFuzzy:
			out = append(out, FuzzyStrategy{Threshold: opts.FuzzyThreshold})
		case StrategySemantic:
			if opts.Engine == nil {
				continue
			}
			out = append(out, SemanticStrategy{Engine: opts.Engine, MinSimilarity: opts.SemanticMinSimilarity})
		default:
			return nil, fmt.Errorf("unknown match strategy: %s", name)
		}
	}
	return out, nil
}
