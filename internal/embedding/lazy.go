package embedding

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Factory 引擎构造函数
type Factory func(ctx context.Context) (Engine, error)

// Lazy 首次使用时加载引擎，之后在进程内复用，不会重新加载
// 已计算过的文本向量会被缓存
type Lazy struct {
	factory Factory
	logger  *zap.Logger

	once   sync.Once
	engine Engine
	err    error

	mu   sync.Mutex
	memo map[string][]float32
}

// NewLazy 创建延迟加载的引擎
func NewLazy(factory Factory, logger *zap.Logger) *Lazy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lazy{
		factory: factory,
		logger:  logger,
		memo:    make(map[string][]float32),
	}
}

// NewLazyFromConfig 按配置延迟创建引擎
func NewLazyFromConfig(cfg Config, logger *zap.Logger) *Lazy {
	return NewLazy(func(ctx context.Context) (Engine, error) {
		return NewEngine(ctx, cfg)
	}, logger)
}

func (l *Lazy) load(ctx context.Context) (Engine, error) {
	l.once.Do(func() {
		engine, err := l.factory(ctx)
		l.mu.Lock()
		l.engine, l.err = engine, err
		l.mu.Unlock()
		if err != nil {
			l.logger.Warn("embedding engine unavailable", zap.Error(err))
			return
		}
		l.logger.Info("embedding engine loaded", zap.String("engine", engine.Name()))
	})
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine, l.err
}

// Embed 先查缓存，只对未命中的文本调用引擎
func (l *Lazy) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	engine, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	l.mu.Lock()
	for i, text := range texts {
		if vec, ok := l.memo[text]; ok {
			out[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	l.mu.Unlock()

	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := engine.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("%s returned %d vectors for %d texts", engine.Name(), len(vecs), len(missing))
	}

	l.mu.Lock()
	for j, vec := range vecs {
		l.memo[missing[j]] = vec
		out[missingIdx[j]] = vec
	}
	l.mu.Unlock()
	return out, nil
}

// Name 已加载时返回底层引擎名称
func (l *Lazy) Name() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.engine != nil {
		return l.engine.Name()
	}
	return "lazy"
}

// Loaded 是否已尝试加载且成功
func (l *Lazy) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engine != nil
}
