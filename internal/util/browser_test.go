package util

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func TestBrowserOpener_FallsBackUntilOneStarts(t *testing.T) {
	t.Parallel()

	var tried [][]string
	o := NewBrowserOpener(zap.NewNop())
	o.GOOS = "linux"
	o.Start = func(name string, args ...string) error {
		tried = append(tried, append([]string{name}, args...))
		if name == "google-chrome" {
			return nil
		}
		return errors.New("not found")
	}

	if err := o.Open("http://localhost:8080/api/status"); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	want := [][]string{
		{"xdg-open", "http://localhost:8080/api/status"},
		{"sensible-browser", "http://localhost:8080/api/status"},
		{"google-chrome", "http://localhost:8080/api/status"},
	}
	if diff := cmp.Diff(want, tried); diff != "" {
		t.Fatalf("launchers mismatch (-want +got):\n%s", diff)
	}
}

func TestBrowserOpener_WindowsArgsAndFirstError(t *testing.T) {
	t.Parallel()

	var tried [][]string
	o := NewBrowserOpener(nil)
	o.GOOS = "windows"
	o.Start = func(name string, args ...string) error {
		tried = append(tried, append([]string{name}, args...))
		return errors.New("denied")
	}

	err := o.Open("http://x")
	if err == nil || err.Error() != "open http://x with rundll32: denied" {
		t.Fatalf("error got=%v want first launcher error", err)
	}
	if len(tried) != 2 || tried[0][1] != "url.dll,FileProtocolHandler" || tried[1][0] != "explorer" {
		t.Fatalf("tried got=%v", tried)
	}
}

func TestBrowserOpener_UnknownPlatform(t *testing.T) {
	t.Parallel()

	o := NewBrowserOpener(zap.NewNop())
	o.GOOS = "plan9"
	if err := o.Open("http://x"); !errors.Is(err, ErrNoLauncher) {
		t.Fatalf("error got=%v want ErrNoLauncher", err)
	}
}
