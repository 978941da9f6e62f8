package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timesheet/internal/config"
	"timesheet/internal/embedding"
	"timesheet/internal/model"
	"timesheet/internal/parser"
	"timesheet/internal/service/excel"
	"timesheet/internal/service/timesheet"
)

// Options 分析参数
type Options struct {
	ScanLimit     int
	Vocabulary    parser.Vocabulary
	Normalize     timesheet.Options
	BaselineHours float64
	Feedback      timesheet.FeedbackOptions
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		ScanLimit:     parser.DefaultScanLimit,
		Vocabulary:    parser.DefaultVocabulary(),
		Normalize:     timesheet.DefaultOptions(),
		BaselineHours: model.DefaultBaselineHours,
		Feedback:      timesheet.DefaultFeedbackOptions(),
	}
}

// Coordinator 分析协调器：表头定位 -> 角色解析 -> 归一化 -> 汇总
type Coordinator struct {
	opts       Options
	locator    *parser.HeaderLocator
	resolver   *parser.RoleResolver
	normalizer *timesheet.Normalizer
	summarizer *timesheet.Summarizer
	logger     *zap.Logger
}

// NewCoordinator 创建协调器，resolver 为 nil 时使用 substring + fuzzy
func NewCoordinator(opts Options, resolver *parser.RoleResolver, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = parser.DefaultScanLimit
	}
	if opts.Vocabulary == nil {
		opts.Vocabulary = parser.DefaultVocabulary()
	}
	if resolver == nil {
		resolver = parser.NewRoleResolver(opts.Vocabulary, nil, logger)
	}
	return &Coordinator{
		opts:       opts,
		locator:    parser.NewHeaderLocator(opts.Vocabulary, opts.ScanLimit, opts.Normalize.MetadataPrefixes),
		resolver:   resolver,
		normalizer: timesheet.NewNormalizer(opts.Normalize),
		summarizer: timesheet.NewSummarizer(opts.BaselineHours),
		logger:     logger,
	}
}

// NewFromConfig 按配置构造协调器，engine 为 nil 时不启用语义匹配
func NewFromConfig(cfg *config.AppConfig, engine embedding.Engine, logger *zap.Logger) (*Coordinator, error) {
	vocab := cfg.Vocab()
	strategies, err := parser.BuildStrategies(cfg.Analysis.Strategies, parser.StrategyOptions{
		FuzzyThreshold:        cfg.Analysis.FuzzyThreshold,
		SemanticMinSimilarity: cfg.Analysis.SemanticMinSimilarity,
		Engine:                engine,
	})
	if err != nil {
		return nil, err
	}
	opts := Options{
		ScanLimit:  cfg.Analysis.ScanLimit,
		Vocabulary: vocab,
		Normalize: timesheet.Options{
			DefaultTask:         cfg.Analysis.DefaultTask,
			DefaultPeriod:       cfg.Analysis.DefaultPeriod,
			MetadataPrefixes:    cfg.Analysis.MetadataPrefixes,
			SectionLabelPeriods: cfg.Analysis.SectionLabelPeriods,
			CarryForwardPeriods: cfg.Analysis.CarryForwardPeriods,
		},
		BaselineHours: cfg.Analysis.BaselineHours,
		Feedback: timesheet.FeedbackOptions{
			Recipient:   cfg.Feedback.Recipient,
			TargetHours: cfg.Feedback.TargetHours,
		},
	}
	return NewCoordinator(opts, parser.NewRoleResolver(vocab, strategies, logger), logger), nil
}

// Strategies 当前角色解析策略链
func (c *Coordinator) Strategies() []string {
	return c.resolver.Strategies()
}

// AnalyzeFile 读取并分析文件；无法读取时返回 excel.ErrUnreadableWorkbook
func (c *Coordinator) AnalyzeFile(ctx context.Context, path string) (*model.WorkbookReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", excel.ErrUnreadableWorkbook, err)
	}
	defer f.Close()
	return c.AnalyzeReader(ctx, f, filepath.Base(path))
}

// AnalyzeReader 读取并分析工作簿
func (c *Coordinator) AnalyzeReader(ctx context.Context, r io.Reader, filename string) (*model.WorkbookReport, error) {
	sheets, err := excel.LoadWorkbook(r, filename)
	if err != nil {
		c.logger.Warn("workbook unreadable", zap.String("file", filename), zap.Error(err))
		return nil, err
	}
	return c.AnalyzeWorkbook(ctx, filename, sheets), nil
}

// AnalyzeWorkbook 逐个分析工作表，单表失败只记录诊断
func (c *Coordinator) AnalyzeWorkbook(ctx context.Context, filename string, sheets []model.RawSheet) *model.WorkbookReport {
	return c.run(ctx, filename, sheets, func(ProgressEvent) {})
}

func (c *Coordinator) run(ctx context.Context, filename string, sheets []model.RawSheet, emit func(ProgressEvent)) *model.WorkbookReport {
	startTime := time.Now()
	report := &model.WorkbookReport{
		ID:          uuid.New().String(),
		Filename:    filename,
		TotalSheets: len(sheets),
		Sheets:      make([]model.SheetResult, 0, len(sheets)),
		CreatedAt:   startTime,
	}

	emit(newEvent(EventInfo, fmt.Sprintf("found %d sheet(s)", len(sheets)), map[string]any{
		"total_sheets": len(sheets),
	}))

	for _, sheet := range sheets {
		emit(newEvent(EventSheetStart, fmt.Sprintf("analyzing sheet %s", sheet.Name), map[string]string{
			"sheet_name": sheet.Name,
		}))

		result := c.AnalyzeSheet(ctx, sheet)
		c.recordSheetResult(report, result)

		if result.Diagnostic != nil {
			emit(newEvent(EventWarning, fmt.Sprintf("sheet %s skipped: %s", sheet.Name, result.Diagnostic.Reason), result))
		} else {
			emit(newEvent(EventSheetDone, fmt.Sprintf("sheet %s analyzed", sheet.Name), result))
		}
	}

	if report.AnalyzedSheets > 0 {
		periods, util := c.summarizer.Summarize(report.AllRecords())
		report.Combined = &model.CombinedSummary{
			Periods: periods,
			Report:  util,
			Message: util.Classification.Message(),
		}
	}
	report.Duration = time.Since(startTime)

	c.logger.Info("workbook analyzed",
		zap.String("id", report.ID),
		zap.String("file", filename),
		zap.Int("sheets", report.TotalSheets),
		zap.Int("analyzed", report.AnalyzedSheets),
		zap.Int("skipped", report.SkippedSheets),
		zap.Duration("duration", report.Duration))
	return report
}

// AnalyzeSheet 分析单个工作表；任何错误或 panic 都转换为诊断
func (c *Coordinator) AnalyzeSheet(ctx context.Context, sheet model.RawSheet) (result model.SheetResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("sheet analysis panicked", zap.String("sheet", sheet.Name), zap.Any("panic", r))
			result = skipped(sheet.Name, -1, sheetFailure(sheet.Name, r))
		}
		result.Duration = time.Since(start)
	}()

	result, err := c.analyzeSheet(ctx, sheet)
	if err != nil {
		var se *SheetError
		if !errors.As(err, &se) {
			se = sheetFailure(sheet.Name, err)
		}
		c.logger.Info("sheet skipped",
			zap.String("sheet", sheet.Name),
			zap.String("kind", string(se.Kind)),
			zap.String("reason", se.Reason))
		return skipped(sheet.Name, result.HeaderRow, se)
	}
	return result
}

func (c *Coordinator) analyzeSheet(ctx context.Context, sheet model.RawSheet) (model.SheetResult, error) {
	result := model.SheetResult{SheetName: sheet.Name, HeaderRow: -1}

	header, ok := c.locator.Locate(sheet)
	if !ok {
		return result, headerNotFound(sheet.Name, c.opts.ScanLimit)
	}
	result.HeaderRow = header.Row

	roles := c.resolver.Resolve(ctx, sheet.Row(header.Row))
	result.Roles = roles
	if role, missing := roles.Missing(); missing {
		return result, roleUnresolved(sheet.Name, role, header.Row)
	}

	records := c.normalizer.Normalize(sheet, header, roles)
	if timesheet.UsableCount(records) == 0 {
		return result, timeParseFailure(sheet.Name, len(records))
	}

	periods, util := c.summarizer.Summarize(records)
	result.Status = model.SheetStatusAnalyzed
	result.Records = records
	result.Periods = periods
	result.Report = &util
	result.Message = util.Classification.Message()
	if text, err := timesheet.RenderFeedback(util, sheet.Name, c.opts.Feedback); err == nil {
		result.Feedback = text
	} else {
		c.logger.Warn("feedback render failed", zap.String("sheet", sheet.Name), zap.Error(err))
	}

	c.logger.Debug("sheet analyzed",
		zap.String("sheet", sheet.Name),
		zap.Int("header_row", header.Row),
		zap.Int("records", len(records)),
		zap.Float64("utilization_pct", util.UtilizationPct))
	return result, nil
}

func skipped(sheet string, headerRow int, se *SheetError) model.SheetResult {
	return model.SheetResult{
		SheetName:  sheet,
		Status:     model.SheetStatusSkipped,
		HeaderRow:  headerRow,
		Diagnostic: se.Diagnostic(),
	}
}

// recordSheetResult 追加结果并更新计数
func (c *Coordinator) recordSheetResult(report *model.WorkbookReport, result model.SheetResult) {
	report.Sheets = append(report.Sheets, result)
	if result.Analyzed() {
		report.AnalyzedSheets++
		report.TotalRecords += len(result.Records)
	} else {
		report.SkippedSheets++
	}
}

// Feedback 生成反馈文本；sheetName 为空时使用全部工作表的合并汇总
func (c *Coordinator) Feedback(report *model.WorkbookReport, sheetName string) (string, error) {
	if report == nil {
		return "", errors.New("nil report")
	}
	if sheetName == "" {
		if report.Combined == nil {
			return "", fmt.Errorf("workbook %s has no analyzed sheets", report.Filename)
		}
		return timesheet.RenderFeedback(report.Combined.Report, "", c.opts.Feedback)
	}
	sheet, ok := report.Sheet(sheetName)
	if !ok {
		return "", fmt.Errorf("sheet %q not found", sheetName)
	}
	if !sheet.Analyzed() {
		return "", fmt.Errorf("sheet %q was not analyzed", sheetName)
	}
	return timesheet.RenderFeedback(*sheet.Report, sheetName, c.opts.Feedback)
}
