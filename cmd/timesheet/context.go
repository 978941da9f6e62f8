package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timesheet/internal/analysis"
	"timesheet/internal/config"
	"timesheet/internal/embedding"
)

type commandContext struct {
	configFlag *string
	logger     *zap.Logger

	configOnce sync.Once
	config     *config.AppConfig
	configInfo config.LoadConfigInfo
	configErr  error

	engineOnce sync.Once
	engine     *embedding.Lazy
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logger:     zap.NewNop(),
	}
}

func (c *commandContext) ensureConfig() (*config.AppConfig, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, info, err := config.LoadConfigWithInfo(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configInfo = info
	})
	return c.config, c.configErr
}

// embeddingEngine 进程内共享的延迟加载引擎，未启用语义匹配时为 nil
func (c *commandContext) embeddingEngine(cfg *config.AppConfig) embedding.Engine {
	if !cfg.UsesSemantic() || cfg.Embedding.Provider == embedding.ProviderNone {
		return nil
	}
	c.engineOnce.Do(func() {
		c.engine = embedding.NewLazyFromConfig(cfg.Embedding, c.logger)
	})
	return c.engine
}

func (c *commandContext) newCoordinator(cfg *config.AppConfig) (*analysis.Coordinator, error) {
	return analysis.NewFromConfig(cfg, c.embeddingEngine(cfg), c.logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
