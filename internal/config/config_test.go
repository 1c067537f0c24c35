package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("QDOC_CONFIG_HOME", "/tmp/qdoc-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/qdoc-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/qdoc-config")
	}

	t.Setenv("QDOC_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/qdoc" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/qdoc")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("QDOC_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Render.BoldTag != "strong" {
		t.Fatalf("BoldTag = %q, want %q", cfg.Render.BoldTag, "strong")
	}
	if cfg.Insert.MentionID != "user123" {
		t.Fatalf("MentionID = %q, want %q", cfg.Insert.MentionID, "user123")
	}
}

func TestLoadWithThemeAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QDOC_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "test.toml"), `
foreground = "#111111"
background = "#222222"
mention-foreground = "#333333"
`)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[parser]
bold-tags = ["b", "strong", "bold"]
normalize = "none"

[render]
bold-tag = "b"

[insert]
mention-content = "@Ann"
mention-id = "u-1"

[theme]
theme = "test"
background = "#123456"

[keymap.normal]
x = "quit"

[log]
debug = true
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(cfg.Parser.BoldTags) != 3 {
		t.Fatalf("BoldTags = %v, want 3 entries", cfg.Parser.BoldTags)
	}
	if cfg.Parser.Normalize != "none" {
		t.Fatalf("Normalize = %q, want %q", cfg.Parser.Normalize, "none")
	}
	if cfg.Render.BoldTag != "b" {
		t.Fatalf("BoldTag = %q, want %q", cfg.Render.BoldTag, "b")
	}
	if cfg.Render.ItalicTag != "em" {
		t.Fatalf("ItalicTag = %q, want %q", cfg.Render.ItalicTag, "em")
	}
	if cfg.Insert.MentionContent != "@Ann" || cfg.Insert.MentionID != "u-1" {
		t.Fatalf("Insert = %+v", cfg.Insert)
	}
	if cfg.Insert.CustomData != "customData123" {
		t.Fatalf("CustomData = %q, want default", cfg.Insert.CustomData)
	}
	if cfg.Theme.Foreground != "#111111" {
		t.Fatalf("Foreground = %q, want %q", cfg.Theme.Foreground, "#111111")
	}
	if cfg.Theme.Background != "#123456" {
		t.Fatalf("Background = %q, want %q", cfg.Theme.Background, "#123456")
	}
	if cfg.Theme.MentionForeground != "#333333" {
		t.Fatalf("MentionForeground = %q, want %q", cfg.Theme.MentionForeground, "#333333")
	}
	if cfg.Keymap.Normal["x"] != "quit" {
		t.Fatalf("keymap x = %q, want %q", cfg.Keymap.Normal["x"], "quit")
	}
	if cfg.Keymap.Normal["ctrl+b"] != "bold" {
		t.Fatalf("keymap ctrl+b = %q, want %q", cfg.Keymap.Normal["ctrl+b"], "bold")
	}
	if !cfg.Log.Debug {
		t.Fatalf("Log.Debug = false, want true")
	}
}

func TestLoadRejectsUnparseableRenderTag(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QDOC_CONFIG_HOME", dir)
	writeFile(t, filepath.Join(dir, "config.toml"), `
[render]
bold-tag = "blink"
italic-tag = "cite"
`)
	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("errors = %d, want 2: %v", got, err)
	}
	if !strings.Contains(err.Error(), "blink") {
		t.Fatalf("error %q does not mention the bad tag", err)
	}
}

func TestValidateClasses(t *testing.T) {
	cfg := Default()
	cfg.Parser.CustomClass = cfg.Parser.MentionClass
	cfg.Parser.Normalize = "upper"
	if got := len(multierr.Errors(cfg.Validate())); got != 2 {
		t.Fatalf("errors = %d, want 2", got)
	}
}

func TestLoadThemeWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QDOC_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "wrapped.toml"), `
[theme]
foreground = "#aaaaaa"
background = "#bbbbbb"
`)

	theme, err := LoadTheme("wrapped")
	if err != nil {
		t.Fatalf("LoadTheme error: %v", err)
	}
	if theme.Foreground != "#aaaaaa" {
		t.Fatalf("Foreground = %q, want %q", theme.Foreground, "#aaaaaa")
	}
	if theme.Background != "#bbbbbb" {
		t.Fatalf("Background = %q, want %q", theme.Background, "#bbbbbb")
	}
}
