package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the research toolkit.
type Config struct {
	Storage Storage      `yaml:"storage"`
	Alpaca  Alpaca       `yaml:"alpaca"`
	Logging Logging      `yaml:"logging"`
	Search  SearchConfig `yaml:"search"`
	Model   ModelConfig  `yaml:"model"`
}

// Storage holds paths for data and result persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	ModelDir   string `yaml:"model_dir"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API,
// used only for historical daily-bar downloads.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BinConfig holds one quantile-binning parameter set. The three named sets
// ("split", "high", "low") are forwarded verbatim to the interval binner.
type BinConfig struct {
	Bins       int     `yaml:"bins"`
	Threshold  float64 `yaml:"threshold"`
	HigherThan bool    `yaml:"higher_than"`
}

// SearchConfig controls the feature combination search.
type SearchConfig struct {
	Indicator         string    `yaml:"indicator"`
	Values            []int     `yaml:"values"`
	Fee               float64   `yaml:"fee"`
	TestSize          float64   `yaml:"test_size"`
	ValidationSplit   float64   `yaml:"validation_split"`
	DrawdownMinWindow int       `yaml:"drawdown_min_window"`
	ResultsColumn     string    `yaml:"results_column"`
	Split             BinConfig `yaml:"split"`
	High              BinConfig `yaml:"high"`
	Low               BinConfig `yaml:"low"`
}

// ModelConfig selects and parameterises the classifier.
type ModelConfig struct {
	Algorithm string  `yaml:"algorithm"` // "tree" or "logistic"
	MaxDepth  int     `yaml:"max_depth"`
	MinLeaf   int     `yaml:"min_leaf"`
	LearnRate float64 `yaml:"learn_rate"`
	Epochs    int     `yaml:"epochs"`
	Seed      int64   `yaml:"seed"`
	Save      bool    `yaml:"save"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides, and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("MODEL_DIR"); v != "" {
		cfg.Storage.ModelDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SEARCH_FEE"); v != "" {
		if fee, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.Fee = fee
		}
	}

	// Standard Alpaca env vars (canonical names used by the SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// applyDefaults fills zero-valued fields with the reference defaults.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Search.Indicator == "" {
		cfg.Search.Indicator = "RSI"
	}
	if len(cfg.Search.Values) == 0 {
		cfg.Search.Values = []int{14}
	}
	if cfg.Search.TestSize == 0 {
		cfg.Search.TestSize = 0.5
	}
	if cfg.Search.ValidationSplit == 0 {
		cfg.Search.ValidationSplit = 0.7
	}
	if cfg.Search.Fee == 0 {
		cfg.Search.Fee = 0.1
	}
	if cfg.Search.Split.Bins == 0 {
		cfg.Search.Split.Bins = 10
	}
	if cfg.Search.High.Bins == 0 {
		cfg.Search.High.Bins = 10
	}
	if cfg.Search.Low.Bins == 0 {
		cfg.Search.Low.Bins = 10
	}
	if cfg.Model.Algorithm == "" {
		cfg.Model.Algorithm = "tree"
	}
	if cfg.Model.MaxDepth == 0 {
		cfg.Model.MaxDepth = 6
	}
	if cfg.Model.MinLeaf == 0 {
		cfg.Model.MinLeaf = 5
	}
	if cfg.Model.LearnRate == 0 {
		cfg.Model.LearnRate = 0.1
	}
	if cfg.Model.Epochs == 0 {
		cfg.Model.Epochs = 200
	}
	if cfg.Model.Seed == 0 {
		cfg.Model.Seed = 42
	}
}
