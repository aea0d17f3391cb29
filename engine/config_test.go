package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "engine.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	src := "max-points = 1024\nverbosity = 2\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxPoints != 1024 {
		t.Errorf("MaxPoints = %d, want 1024", cfg.MaxPoints)
	}
	if cfg.Verbosity != 2 {
		t.Errorf("Verbosity = %d, want 2", cfg.Verbosity)
	}
	// Unset fields keep their defaults.
	if cfg.MaxFragmentLines != 400 {
		t.Errorf("MaxFragmentLines = %d, want 400", cfg.MaxFragmentLines)
	}
	if cfg.MaxRecordBytes != 10000 {
		t.Errorf("MaxRecordBytes = %d, want 10000", cfg.MaxRecordBytes)
	}
}

func TestLoadConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	if err := os.WriteFile(path, []byte("max-points = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err == nil {
		t.Fatal("malformed file parsed without error")
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg after parse error = %+v, want defaults", cfg)
	}
}

func TestLoadConfigZeroValuesBackfilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	if err := os.WriteFile(path, []byte("max-points = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.MaxPoints != 768 {
		t.Errorf("MaxPoints = %d, want backfilled 768", cfg.MaxPoints)
	}
}
