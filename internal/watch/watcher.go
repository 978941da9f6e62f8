package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"timesheet/internal/analysis"
	"timesheet/internal/config"
	"timesheet/internal/model"
	"timesheet/internal/service/excel"
)

// LockFileName 监听目录中的锁文件
const LockFileName = ".timesheet-watch.lock"

// DefaultSettleDelay 文件事件后的等待时间，避免读到写了一半的文件
const DefaultSettleDelay = 500 * time.Millisecond

// ErrAlreadyWatching 另一个进程正在监听同一目录
var ErrAlreadyWatching = errors.New("directory is already being watched")

// Result 单个文件的处理结果
type Result struct {
	Path         string
	Report       *model.WorkbookReport
	ReportPath   string
	FeedbackPath string
	Err          error
}

// Watcher 监听投递目录，新工作簿到达后自动分析
type Watcher struct {
	cfg         config.WatchConfig
	coordinator *analysis.Coordinator
	logger      *zap.Logger
	lock        *flock.Flock

	// SettleDelay 最后一次写事件后的等待时间
	SettleDelay time.Duration
	// OnResult 每个文件处理完成后回调
	OnResult func(Result)

	mu        sync.Mutex
	processed map[string]time.Time
}

// New 创建监听器
func New(cfg config.WatchConfig, coordinator *analysis.Coordinator, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		cfg:         cfg,
		coordinator: coordinator,
		logger:      logger,
		lock:        flock.New(filepath.Join(cfg.Dir, LockFileName)),
		SettleDelay: DefaultSettleDelay,
		processed:   make(map[string]time.Time),
	}
}

// Run 持有目录锁并监听直到 ctx 取消
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}
	if err := os.MkdirAll(w.outputDir(), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrAlreadyWatching, w.cfg.Dir)
	}
	defer func() {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("release watch lock", zap.Error(err))
		}
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}
	w.logger.Info("watching directory",
		zap.String("dir", w.cfg.Dir),
		zap.String("output", w.outputDir()))

	if w.cfg.Backfill {
		if err := w.Backfill(ctx); err != nil {
			w.logger.Warn("backfill failed", zap.Error(err))
		}
	}

	ready := make(chan string, 16)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 || !w.accepts(evt.Name) {
				continue
			}
			path := evt.Name
			if t, exists := timers[path]; exists {
				t.Reset(w.SettleDelay)
				continue
			}
			timers[path] = time.AfterFunc(w.SettleDelay, func() {
				select {
				case ready <- path:
				case <-ctx.Done():
				}
			})
		case path := <-ready:
			delete(timers, path)
			w.handle(ctx, path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// Backfill 处理目录中已有的工作簿
func (w *Watcher) Backfill(ctx context.Context) error {
	entries, err := filepath.Glob(filepath.Join(w.cfg.Dir, "*"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if w.accepts(e) {
			w.handle(ctx, e)
		}
	}
	return nil
}

func (w *Watcher) handle(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	last, seen := w.processed[path]
	if seen && !info.ModTime().After(last) {
		w.mu.Unlock()
		return
	}
	w.processed[path] = info.ModTime()
	w.mu.Unlock()

	res := w.Process(ctx, path)
	if res.Err != nil {
		w.logger.Warn("workbook failed", zap.String("file", path), zap.Error(res.Err))
	} else {
		w.logger.Info("workbook processed",
			zap.String("file", path),
			zap.String("report", res.ReportPath),
			zap.Int("analyzed", res.Report.AnalyzedSheets),
			zap.Int("skipped", res.Report.SkippedSheets))
	}
	if w.OnResult != nil {
		w.OnResult(res)
	}
}

// Process 分析单个文件并写出 JSON 报告与反馈文本
func (w *Watcher) Process(ctx context.Context, path string) Result {
	res := Result{Path: path}

	report, err := w.coordinator.AnalyzeFile(ctx, path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Report = report

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res.ReportPath = filepath.Join(w.outputDir(), base+".report.json")
	if err := writeJSONAtomic(res.ReportPath, report); err != nil {
		res.Err = fmt.Errorf("write report: %w", err)
		return res
	}

	if report.Combined == nil {
		return res
	}
	text, err := w.coordinator.Feedback(report, "")
	if err != nil {
		res.Err = err
		return res
	}
	res.FeedbackPath = filepath.Join(w.outputDir(), base+".feedback.txt")
	if err := writeFileAtomic(res.FeedbackPath, []byte(text)); err != nil {
		res.Err = fmt.Errorf("write feedback: %w", err)
	}
	return res
}

// accepts 只处理支持的格式，跳过隐藏文件与 Office 临时文件
func (w *Watcher) accepts(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	return excel.IsSupported(name)
}

func (w *Watcher) outputDir() string {
	if w.cfg.OutputDir == "" {
		return filepath.Join(w.cfg.Dir, "reports")
	}
	return w.cfg.OutputDir
}
