package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	writeConfig(t, `
[layout]
level_spacing = 120.0
font_size = 16.0
wrap = true

[cache]
redis_addr = "localhost:6379"

[serve]
addr = ":9900"
`)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Layout.LevelSpacing != 120 || cfg.Layout.FontSize != 16 || !cfg.Layout.Wrap {
		t.Errorf("layout config = %+v", cfg.Layout)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache config = %+v", cfg.Cache)
	}
	if cfg.Serve.Addr != ":9900" {
		t.Errorf("serve config = %+v", cfg.Serve)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("missing config should not error, got %v", err)
	}
	if cfg.Layout.LevelSpacing != 0 {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	writeConfig(t, "[layout\nbroken")

	cfg, err := LoadConfig()
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("err = %v, want parse error", err)
	}
	if cfg == nil {
		t.Fatal("malformed config should still return a usable zero config")
	}
}

func TestBaseOptionsSeedsFromConfig(t *testing.T) {
	c := &CLI{Config: &Config{}}
	c.Config.Layout.LevelSpacing = 99
	c.Config.Layout.Wrap = true

	opts := c.baseOptions()
	if opts.LevelSpacing != 99 {
		t.Errorf("LevelSpacing = %v, want 99", opts.LevelSpacing)
	}
	if !opts.WrapEnabled {
		t.Error("WrapEnabled not carried over")
	}
	// Unset values fall back to layout defaults.
	if opts.FontSize == 0 || opts.SiblingSpacing == 0 {
		t.Errorf("defaults missing: %+v", opts)
	}
}
