package parser

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"timesheet/internal/model"
)

// RoleResolver 列角色解析器
type RoleResolver struct {
	vocab      Vocabulary
	strategies []MatchStrategy
	logger     *zap.Logger
}

// NewRoleResolver 创建解析器，strategies 为空时使用 substring + fuzzy
func NewRoleResolver(vocab Vocabulary, strategies []MatchStrategy, logger *zap.Logger) *RoleResolver {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if len(strategies) == 0 {
		strategies = []MatchStrategy{SubstringStrategy{}, FuzzyStrategy{}}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleResolver{vocab: vocab, strategies: strategies, logger: logger}
}

// Strategies 当前策略名称
func (r *RoleResolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve 按 start/end/task/period/duration 顺序解析角色
// 每个角色依次尝试策略链，先命中者胜出；已被占用的列不再参与后续角色
func (r *RoleResolver) Resolve(ctx context.Context, columnNames []string) model.ColumnRoleMap {
	roles := make(model.ColumnRoleMap)
	available := NewColumns(columnNames)

	for _, role := range model.ResolveOrder {
		keywords := r.vocab[role]
		if len(keywords) == 0 {
			continue
		}
		match, ok := r.resolveRole(ctx, role, keywords, available)
		if !ok {
			continue
		}
		roles[role] = match
		available = slices.DeleteFunc(available, func(c Column) bool { return c.Index == match.Index })
	}
	return roles
}

func (r *RoleResolver) resolveRole(ctx context.Context, role model.Role, keywords []string, columns []Column) (model.ColumnMatch, bool) {
	for _, s := range r.strategies {
		match, ok, err := s.Match(ctx, role, keywords, columns)
		if err != nil {
			// 策略不可用时降级为未命中
			r.logger.Debug("match strategy failed",
				zap.String("strategy", s.Name()),
				zap.String("role", string(role)),
				zap.Error(err))
			continue
		}
		if ok {
			return match, true
		}
	}
	return model.ColumnMatch{}, false
}
