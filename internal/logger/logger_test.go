package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/kobzarvs/qdoc/internal/config"
)

func TestHelpersBeforeInit(t *testing.T) {
	L, S = nil, nil
	Info("dropped", "k", 1)
	if Named("x") == nil {
		t.Fatalf("Named returned nil before Init")
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qdoc.log")
	if err := Init(config.LogOptions{Debug: true, File: path}); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	Debug("commit", "undo", 1)
	Named("document").Info("named entry")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"logger initialized", "commit", "document", "named entry"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
}

func TestLogPathEnv(t *testing.T) {
	t.Setenv("QDOC_LOG_FILE", "")
	t.Setenv("QDOC_CONFIG_HOME", "/tmp/qdoc-home")
	got, err := getLogPath()
	if err != nil {
		t.Fatalf("getLogPath error: %v", err)
	}
	if got != "/tmp/qdoc-home/qdoc.log" {
		t.Fatalf("getLogPath = %q", got)
	}
	t.Setenv("QDOC_LOG_FILE", "/tmp/explicit.log")
	if got, _ := getLogPath(); got != "/tmp/explicit.log" {
		t.Fatalf("getLogPath = %q, want explicit", got)
	}
}

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(zapcore.AddSync(&buf), false)
	l.Debug("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "WARN") {
		t.Fatalf("info logger output = %q, want only the warning", out)
	}

	buf.Reset()
	New(zapcore.AddSync(&buf), true).Debug("visible")
	if !strings.Contains(buf.String(), "DEBUG") {
		t.Fatalf("debug logger output = %q, want DEBUG entry", buf.String())
	}
}
