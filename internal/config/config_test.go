package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Curves.StdDev != nil || cfg.Log.Level != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[curves]
stddev = 1.5
alpha = 0.01
alt-mean = 2.0
show-alt = true
power = true

[simulate]
trials = 500
seed = 7

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Curves.StdDev == nil || *cfg.Curves.StdDev != 1.5 {
		t.Fatalf("unexpected stddev %v", cfg.Curves.StdDev)
	}
	if cfg.Curves.Alpha == nil || *cfg.Curves.Alpha != 0.01 {
		t.Fatalf("unexpected alpha %v", cfg.Curves.Alpha)
	}
	if cfg.Curves.ShowAlt == nil || !*cfg.Curves.ShowAlt {
		t.Fatalf("expected show-alt true")
	}
	if cfg.Curves.ShowTypeI != nil {
		t.Fatalf("expected type1 unset")
	}
	if cfg.Simulate.Trials == nil || *cfg.Simulate.Trials != 500 {
		t.Fatalf("unexpected trials %v", cfg.Simulate.Trials)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level %v", cfg.Log.Level)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[curves\nstddev = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "hypoviz", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "hypoviz", "snapshots.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "hypoviz", "hypoviz.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
