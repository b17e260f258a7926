package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forkmate/forkmate/internal/model"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DefaultMergeStrategy != model.StrategyFastForward {
		t.Errorf("DefaultMergeStrategy = %q, want ff", cfg.DefaultMergeStrategy)
	}
	if cfg.SyncConcurrency != 8 {
		t.Errorf("SyncConcurrency = %d, want 8", cfg.SyncConcurrency)
	}
	if cfg.MaxScanDepth != 4 {
		t.Errorf("MaxScanDepth = %d, want 4", cfg.MaxScanDepth)
	}
	if cfg.GitTimeoutSecs != 600 {
		t.Errorf("GitTimeoutSecs = %d, want 600", cfg.GitTimeoutSecs)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.SyncConcurrency = 3
	cfg.ScanPaths = []string{"/src", "/work"}
	cfg.DefaultMergeStrategy = model.StrategyRebase
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.SyncConcurrency != 3 {
		t.Errorf("SyncConcurrency = %d, want 3", got.SyncConcurrency)
	}
	if len(got.ScanPaths) != 2 || got.ScanPaths[0] != "/src" {
		t.Errorf("ScanPaths = %v, want [/src /work]", got.ScanPaths)
	}
	if got.DefaultMergeStrategy != model.StrategyRebase {
		t.Errorf("DefaultMergeStrategy = %q, want rebase", got.DefaultMergeStrategy)
	}
}

func TestLoadFromNormalizesStrategyAlias(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "default_merge_strategy = \"fast-forward\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DefaultMergeStrategy != model.StrategyFastForward {
		t.Errorf("DefaultMergeStrategy = %q, want normalized ff", cfg.DefaultMergeStrategy)
	}
}

func TestLoadFromRejectsUnknownStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_merge_strategy = \"octopus\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for unknown merge strategy")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FORKMATE_SYNC_CONCURRENCY", "2")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.SyncConcurrency != 2 {
		t.Errorf("SyncConcurrency = %d, want env override 2", cfg.SyncConcurrency)
	}
}
