package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

// redirect points *target at a pipe until the returned function is called,
// which restores it and returns everything written in between.
func redirect(t *testing.T, target **os.File) func() string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	orig := *target
	*target = w
	t.Cleanup(func() {
		*target = orig
		Nop()
	})

	return func() string {
		*target = orig
		w.Close()
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("failed to read pipe: %v", err)
		}
		return string(data)
	}
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(data)
}

func TestNop(t *testing.T) {
	Nop()
	for _, lvl := range []zapcore.Level{zapcore.DebugLevel, zapcore.ErrorLevel} {
		if Log.Core().Enabled(lvl) {
			t.Errorf("nop logger enabled at %s", lvl)
		}
	}
	// Helpers are safe to call before Init.
	Info("discarded")
	Sync()
}

func TestConsoleWritesToStderr(t *testing.T) {
	stdout := redirect(t, &os.Stdout)
	stderr := redirect(t, &os.Stderr)

	if err := Init("info", ""); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	Info("Writing save")
	Debug("Quadtree walked")
	Sync()

	errOut, out := stderr(), stdout()
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}
	if !strings.Contains(errOut, "Writing save") || !strings.Contains(errOut, "INFO") {
		t.Errorf("expected info entry on stderr, got %q", errOut)
	}
	if strings.Contains(errOut, "Quadtree walked") {
		t.Errorf("debug entry logged at info level: %q", errOut)
	}
}

func TestLevelParsing(t *testing.T) {
	tests := []struct {
		level string
		min   zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Cleanup(Nop)
			path := filepath.Join(t.TempDir(), "level.log")
			if err := InitWithFileConfig(tt.level, FileConfig{Path: path, MaxSizeMB: 1}, false); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}
			if !Log.Core().Enabled(tt.min) {
				t.Errorf("level %q: %s disabled", tt.level, tt.min)
			}
			if tt.min > zapcore.DebugLevel && Log.Core().Enabled(tt.min-1) {
				t.Errorf("level %q: %s enabled", tt.level, tt.min-1)
			}
		})
	}
}

func TestCallerIsHelperCaller(t *testing.T) {
	t.Cleanup(Nop)
	path := filepath.Join(t.TempDir(), "caller.log")
	if err := InitWithFileConfig("debug", FileConfig{Path: path, MaxSizeMB: 1}, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	Warn("Invalid owner id")
	Sync()

	content := readLog(t, path)
	if !strings.Contains(content, "logger/logger_test.go:") {
		t.Errorf("expected caller in logger_test.go, got %q", content)
	}
	if strings.Contains(content, "logger/logger.go:") {
		t.Errorf("caller points at the helper: %q", content)
	}
}

func TestInitWithLogFile(t *testing.T) {
	stderr := redirect(t, &os.Stderr)
	path := filepath.Join(t.TempDir(), "logs", "heightmap2brs.log")

	if err := Init("debug", path); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	Debug("Quadtree walked")
	Error("Removing partial output")
	Sync()
	console := stderr()

	content := readLog(t, path)
	for _, want := range []string{"DEBUG", "Quadtree walked", "ERROR", "Removing partial output"} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in log file, got %q", want, content)
		}
	}
	// The file encoder never colors levels.
	if strings.Contains(content, "\x1b[") {
		t.Errorf("unexpected color codes in log file: %q", content)
	}
	if !strings.Contains(console, "Removing partial output") {
		t.Errorf("expected entry mirrored to stderr, got %q", console)
	}
}
