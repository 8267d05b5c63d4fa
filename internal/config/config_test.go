package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Create a temporary YAML config file.
	yamlContent := []byte(`
storage:
  data_dir: "/tmp/quant/data"
  sqlite_path: "/tmp/quant/results.db"
  model_dir: "/tmp/quant/models"
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  data_url: "https://data.alpaca.markets"
logging:
  level: "debug"
  format: "text"
search:
  indicator: "RSI"
  values: [14, 21]
  fee: 0.13
  test_size: 0.5
  validation_split: 0.7
  drawdown_min_window: 365
  split:
    bins: 10
  high:
    bins: 5
    threshold: 0.5
    higher_than: true
  low:
    bins: 5
    threshold: 0.5
model:
  algorithm: "tree"
  max_depth: 8
  seed: 42
  save: true
`)

	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(tmpFile, yamlContent, 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	// Clear any environment overrides that might interfere.
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.DataDir != "/tmp/quant/data" {
		t.Errorf("DataDir = %q, want /tmp/quant/data", cfg.Storage.DataDir)
	}
	if cfg.Search.Fee != 0.13 {
		t.Errorf("Search.Fee = %v, want 0.13", cfg.Search.Fee)
	}
	if len(cfg.Search.Values) != 2 || cfg.Search.Values[0] != 14 {
		t.Errorf("Search.Values = %v, want [14 21]", cfg.Search.Values)
	}
	if cfg.Search.High.Bins != 5 || !cfg.Search.High.HigherThan {
		t.Errorf("Search.High = %+v, want bins=5 higher_than=true", cfg.Search.High)
	}
	if cfg.Model.Algorithm != "tree" || cfg.Model.MaxDepth != 8 {
		t.Errorf("Model = %+v, want tree/8", cfg.Model)
	}
	if !cfg.Model.Save {
		t.Error("Model.Save = false, want true")
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(tmpFile, []byte("storage:\n  data_dir: /tmp/d\n"), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v, want info/json", cfg.Logging)
	}
	if cfg.Search.ValidationSplit != 0.7 {
		t.Errorf("ValidationSplit default = %v, want 0.7", cfg.Search.ValidationSplit)
	}
	if cfg.Search.TestSize != 0.5 {
		t.Errorf("TestSize default = %v, want 0.5", cfg.Search.TestSize)
	}
	if cfg.Search.Split.Bins != 10 {
		t.Errorf("Split.Bins default = %v, want 10", cfg.Search.Split.Bins)
	}
	if cfg.Model.Seed != 42 {
		t.Errorf("Model.Seed default = %v, want 42", cfg.Model.Seed)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(tmpFile, []byte("storage:\n  data_dir: /tmp/d\n"), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	t.Setenv("DATA_DIR", "/override/data")
	t.Setenv("APCA_API_KEY_ID", "env-key")

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.DataDir != "/override/data" {
		t.Errorf("DataDir = %q, want env override", cfg.Storage.DataDir)
	}
	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.Alpaca.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Load should fail for a missing file")
	}
}
