package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Errorf("expected default data_dir %q, got %q", "data", cfg.DataDir)
	}
	if cfg.Scheduler.MaxIdleDays != 30 {
		t.Errorf("expected default max_idle_days 30, got %d", cfg.Scheduler.MaxIdleDays)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.kisanmitra.yml")

	original := DefaultConfig()
	original.Port = 9090
	original.DataDir = "/var/lib/kisanmitra"
	original.RulePaths = []string{"rules/**/*.yml", "extra/*.yml"}
	original.Scheduler.MaxIdleDays = 7

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Port != original.Port {
		t.Errorf("port: got %d, want %d", loaded.Port, original.Port)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.Scheduler.MaxIdleDays != original.Scheduler.MaxIdleDays {
		t.Errorf("max_idle_days: got %d, want %d", loaded.Scheduler.MaxIdleDays, original.Scheduler.MaxIdleDays)
	}
	if len(loaded.RulePaths) != len(original.RulePaths) {
		t.Fatalf("rule_paths length: got %d, want %d", len(loaded.RulePaths), len(original.RulePaths))
	}
	for i, v := range loaded.RulePaths {
		if v != original.RulePaths[i] {
			t.Errorf("rule_paths[%d]: got %q, want %q", i, v, original.RulePaths[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected defaults, got port %d", cfg.Port)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	t.Setenv("KISANMITRA_PORT", "3000")
	t.Setenv("KISANMITRA_DATA_DIR", "/tmp/km")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 3000 {
		t.Errorf("port: got %d, want env override 3000", cfg.Port)
	}
	if cfg.DataDir != "/tmp/km" {
		t.Errorf("data_dir: got %q, want env override", cfg.DataDir)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("out-of-range port should fail validation")
	}

	cfg = DefaultConfig()
	cfg.DataDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty data_dir should fail validation")
	}

	cfg = DefaultConfig()
	cfg.Scheduler.MaxIdleDays = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative max_idle_days should fail validation")
	}
}
