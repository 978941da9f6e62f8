package util

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"
)

// ErrNoLauncher 当前平台没有可用的浏览器命令
var ErrNoLauncher = errors.New("no browser launcher for platform")

// launcher 一条打开 URL 的系统命令，URL 追加在 args 之后
type launcher struct {
	name string
	args []string
}

// launchersFor 按平台列出依次尝试的命令
func launchersFor(goos string) []launcher {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return []launcher{
			{name: "rundll32", args: []string{"url.dll,FileProtocolHandler"}},
			{name: "explorer"},
		}
	case "darwin":
		return []launcher{{name: "open"}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []launcher{
			{name: "xdg-open"},
			{name: "sensible-browser"},
			{name: "google-chrome"},
			{name: "firefox"},
			{name: "chromium-browser"},
		}
	}
	return nil
}

// BrowserOpener 打开 serve 的状态页
type BrowserOpener struct {
	GOOS   string
	Start  func(name string, args ...string) error
	logger *zap.Logger
}

// NewBrowserOpener 使用当前平台与 exec 启动进程
func NewBrowserOpener(logger *zap.Logger) *BrowserOpener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserOpener{
		GOOS: runtime.GOOS,
		Start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
		logger: logger,
	}
}

// Open 依次尝试平台命令，任一启动成功即返回；全部失败时返回首个错误
func (o *BrowserOpener) Open(url string) error {
	launchers := launchersFor(o.GOOS)
	if len(launchers) == 0 {
		return fmt.Errorf("%w: %s", ErrNoLauncher, o.GOOS)
	}

	var first error
	for _, l := range launchers {
		args := append(append([]string{}, l.args...), url)
		err := o.Start(l.name, args...)
		if err == nil {
			o.logger.Debug("browser opened", zap.String("launcher", l.name), zap.String("url", url))
			return nil
		}
		o.logger.Debug("browser launcher failed", zap.String("launcher", l.name), zap.Error(err))
		if first == nil {
			first = fmt.Errorf("open %s with %s: %w", url, l.name, err)
		}
	}
	return first
}
