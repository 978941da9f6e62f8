package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"timesheet/internal/embedding"
	"timesheet/internal/model"
	"timesheet/internal/parser"
)

// ConfigFileName 默认配置文件名
const ConfigFileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Vocabulary VocabularyConfig `toml:"vocabulary"`
	Embedding  embedding.Config `toml:"embedding"`
	Watch      WatchConfig      `toml:"watch"`
	Feedback   FeedbackConfig   `toml:"feedback"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port             int  `toml:"port"`
	DevMode          bool `toml:"dev_mode"`
	ReportTTLMinutes int  `toml:"report_ttl_minutes"`
	MaxUploadMB      int  `toml:"max_upload_mb"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// AnalysisConfig 分析参数
type AnalysisConfig struct {
	ScanLimit             int      `toml:"scan_limit"`
	BaselineHours         float64  `toml:"baseline_hours"`
	FuzzyThreshold        float64  `toml:"fuzzy_threshold"`
	SemanticMinSimilarity float64  `toml:"semantic_min_similarity"`
	Strategies            []string `toml:"strategies"`
	DefaultTask           string   `toml:"default_task"`
	DefaultPeriod         string   `toml:"default_period"`
	MetadataPrefixes      []string `toml:"metadata_prefixes"`
	SectionLabelPeriods   bool     `toml:"section_label_periods"`
	CarryForwardPeriods   bool     `toml:"carry_forward_periods"`
}

// VocabularyConfig 各角色关键词，留空使用内置词表
type VocabularyConfig struct {
	Start    []string `toml:"start"`
	End      []string `toml:"end"`
	Task     []string `toml:"task"`
	Period   []string `toml:"period"`
	Duration []string `toml:"duration"`
}

// WatchConfig 目录监听配置
type WatchConfig struct {
	Dir       string `toml:"dir"`
	OutputDir string `toml:"output_dir"`
	Backfill  bool   `toml:"backfill"`
}

// FeedbackConfig 反馈文本配置
type FeedbackConfig struct {
	Recipient   string  `toml:"recipient"`
	TargetHours float64 `toml:"target_hours"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	Found         bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:             20262,
			DevMode:          false,
			ReportTTLMinutes: 30,
			MaxUploadMB:      32,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Analysis: AnalysisConfig{
			ScanLimit:             parser.DefaultScanLimit,
			BaselineHours:         model.DefaultBaselineHours,
			FuzzyThreshold:        parser.DefaultFuzzyThreshold,
			SemanticMinSimilarity: parser.DefaultSemanticMinSimilarity,
			Strategies:            []string{parser.StrategySubstring, parser.StrategyFuzzy},
			DefaultTask:           "N/A",
			DefaultPeriod:         "Unknown",
			MetadataPrefixes:      []string{"reporting time"},
			SectionLabelPeriods:   false,
			CarryForwardPeriods:   false,
		},
		Embedding: embedding.DefaultConfig(),
		Watch: WatchConfig{
			Dir:       "inbox",
			OutputDir: "reports",
			Backfill:  true,
		},
		Feedback: FeedbackConfig{
			Recipient:   "[Employee]",
			TargetHours: 6,
		},
	}
}

// Vocab 合并配置词表与内置词表
func (c *AppConfig) Vocab() parser.Vocabulary {
	return parser.DefaultVocabulary().Merge(map[model.Role][]string{
		model.RoleStart:    c.Vocabulary.Start,
		model.RoleEnd:      c.Vocabulary.End,
		model.RoleTask:     c.Vocabulary.Task,
		model.RolePeriod:   c.Vocabulary.Period,
		model.RoleDuration: c.Vocabulary.Duration,
	})
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 默认配置路径：可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, ConfigFileName)
}

// LoadConfigWithInfo 加载配置并返回元信息
// path 为空时读取默认路径；文件不存在时使用默认配置；随后应用 .env 与环境变量覆盖
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.Found = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	applyEnvOverrides(config, &info)
	return config, info, nil
}

// LoadConfig 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// applyEnvOverrides 环境变量覆盖
func applyEnvOverrides(config *AppConfig, info *LoadConfigInfo) {
	if v := getenvInt("TIMESHEET_PORT", 0); v > 0 {
		config.Server.Port = v
		info.PortSpecified = true
	}
	if v := os.Getenv("TIMESHEET_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := getenvInt("TIMESHEET_SCAN_LIMIT", 0); v > 0 {
		config.Analysis.ScanLimit = v
	}
	if v := os.Getenv("TIMESHEET_EMBEDDING_PROVIDER"); v != "" {
		config.Embedding.Provider = v
	}
	if v := os.Getenv("TIMESHEET_OLLAMA_ENDPOINT"); v != "" {
		config.Embedding.OllamaEndpoint = v
	}
	if config.Embedding.GenAIAPIKey == "" {
		config.Embedding.GenAIAPIKey = getenv("TIMESHEET_GENAI_API_KEY", os.Getenv("GEMINI_API_KEY"))
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// SaveConfig 保存配置，path 为空时写入默认路径
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// resolveDataDir 相对路径基于可执行文件目录
func resolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := resolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"uploads", "exports", "reports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(resolveDataDir(config), subdir, filename)
}
