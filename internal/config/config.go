package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/findid/internal/logger"
	"github.com/harrison/findid/internal/models"
)

// HistoryConfig represents search history configuration
type HistoryConfig struct {
	// Enabled records a summary row for every search
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database (empty = <home>/history.db)
	DBPath string `yaml:"db_path"`

	// KeepDays is the number of days of history kept (0 = forever)
	KeepDays int `yaml:"keep_days"`
}

// Config represents findid configuration options
type Config struct {
	// Workers is the number of files searched in parallel (0 = one per CPU)
	Workers int `yaml:"workers"`

	// Timeout bounds a single search (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty = <home>/logs)
	LogDir string `yaml:"log_dir"`

	// FileLogging enables per-run log files in LogDir
	FileLogging bool `yaml:"file_logging"`

	// MarkerExt is the extension of the file that marks a project root
	MarkerExt string `yaml:"marker_ext"`

	// DocumentExt is the extension of searchable documents
	DocumentExt string `yaml:"document_ext"`

	// DefaultMode is the search mode used when --mode is not given
	DefaultMode string `yaml:"default_mode"`

	// ExcludeDirs are directory names never descended into
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// SkipHidden skips directories whose name starts with "."
	SkipHidden bool `yaml:"skip_hidden"`

	// CaseSensitiveExt matches DocumentExt exactly; by default ".WWU" also matches ".wwu"
	CaseSensitiveExt bool `yaml:"case_sensitive_ext"`

	// History contains search history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Workers:          0,
		Timeout:          0,
		LogLevel:         "info",
		LogDir:           "",
		FileLogging:      false,
		MarkerExt:        ".wproj",
		DocumentExt:      ".wwu",
		DefaultMode:      "mediaid",
		ExcludeDirs:      nil,
		SkipHidden:       false,
		CaseSensitiveExt: false,
		History: HistoryConfig{
			Enabled:  true,
			DBPath:   "",
			KeepDays: 90,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are read as strings so "30s" style values work.
	type yamlConfig struct {
		Workers     int           `yaml:"workers"`
		Timeout     string        `yaml:"timeout"`
		LogLevel    string        `yaml:"log_level"`
		LogDir      string        `yaml:"log_dir"`
		FileLogging bool          `yaml:"file_logging"`
		MarkerExt   string        `yaml:"marker_ext"`
		DocumentExt string        `yaml:"document_ext"`
		DefaultMode string        `yaml:"default_mode"`
		ExcludeDirs []string      `yaml:"exclude_dirs"`
		SkipHidden  bool          `yaml:"skip_hidden"`
		CaseExt     bool          `yaml:"case_sensitive_ext"`
		History     HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A second pass tells "absent" apart from explicit zero values.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	has := func(key string) bool {
		_, ok := rawMap[key]
		return ok
	}

	if has("workers") {
		cfg.Workers = yamlCfg.Workers
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if has("file_logging") {
		cfg.FileLogging = yamlCfg.FileLogging
	}
	if yamlCfg.MarkerExt != "" {
		cfg.MarkerExt = yamlCfg.MarkerExt
	}
	if yamlCfg.DocumentExt != "" {
		cfg.DocumentExt = yamlCfg.DocumentExt
	}
	if yamlCfg.DefaultMode != "" {
		cfg.DefaultMode = yamlCfg.DefaultMode
	}
	if has("exclude_dirs") {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}
	if has("skip_hidden") {
		cfg.SkipHidden = yamlCfg.SkipHidden
	}
	if has("case_sensitive_ext") {
		cfg.CaseSensitiveExt = yamlCfg.CaseExt
	}

	if historySection, exists := rawMap["history"]; exists && historySection != nil {
		historyMap, _ := historySection.(map[string]interface{})
		if _, exists := historyMap["enabled"]; exists {
			cfg.History.Enabled = yamlCfg.History.Enabled
		}
		if _, exists := historyMap["db_path"]; exists {
			cfg.History.DBPath = yamlCfg.History.DBPath
		}
		if _, exists := historyMap["keep_days"]; exists {
			cfg.History.KeepDays = yamlCfg.History.KeepDays
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from config.yaml in the findid home dir
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(home string) (*Config, error) {
	return LoadConfig(filepath.Join(home, ConfigFileName))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(workers *int, timeout *time.Duration, logLevel *string, mode *string, history *bool) {
	if workers != nil {
		c.Workers = *workers
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if mode != nil {
		c.DefaultMode = *mode
	}
	if history != nil {
		c.History.Enabled = *history
	}
}

// ResolvePaths fills empty LogDir and History.DBPath with locations under home.
func (c *Config) ResolvePaths(home string) {
	if c.LogDir == "" {
		c.LogDir = filepath.Join(home, "logs")
	}
	if c.History.DBPath == "" {
		c.History.DBPath = filepath.Join(home, "history.db")
	}
}

// Mode parses DefaultMode.
func (c *Config) Mode() (models.SearchMode, error) {
	return models.ParseSearchMode(c.DefaultMode)
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}

	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if c.MarkerExt == "" {
		return fmt.Errorf("marker_ext cannot be empty")
	}
	if c.DocumentExt == "" {
		return fmt.Errorf("document_ext cannot be empty")
	}

	if _, err := c.Mode(); err != nil {
		return fmt.Errorf("invalid default_mode: %w", err)
	}

	if c.History.KeepDays < 0 {
		return fmt.Errorf("history.keep_days must be >= 0, got %d", c.History.KeepDays)
	}

	return nil
}
