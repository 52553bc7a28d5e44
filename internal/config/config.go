package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"awmcp/internal/errors"
	"awmcp/internal/paths"
)

// CurrentVersion is the config schema version this build reads and writes.
const CurrentVersion = 1

// Config represents the complete awmcp configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Server   ServerConfig   `json:"server" mapstructure:"server"`
	Defaults DefaultsConfig `json:"defaults" mapstructure:"defaults"`
	Metrics  MetricsConfig  `json:"metrics" mapstructure:"metrics"`
	Export   ExportConfig   `json:"export" mapstructure:"export"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`

	// Paths to the rule files; empty means the per-user default location.
	ClientsFile    string `json:"clientsFile,omitempty" mapstructure:"clientsFile"`
	CategoriesFile string `json:"categoriesFile,omitempty" mapstructure:"categoriesFile"`
	QueriesFile    string `json:"queriesFile,omitempty" mapstructure:"queriesFile"`
}

// ServerConfig describes how to reach the ActivityWatch server
type ServerConfig struct {
	URL            string `json:"url" mapstructure:"url"`
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	MaxRetries     int    `json:"maxRetries" mapstructure:"maxRetries"`
}

// DefaultsConfig holds default policies for activity queries
type DefaultsConfig struct {
	// IncludeWeb controls whether web URLs count as folder references.
	IncludeWeb bool `json:"includeWeb" mapstructure:"includeWeb"`
	// MinDurationSeconds drops activity groups below this duration; 0 keeps all.
	MinDurationSeconds float64 `json:"minDurationSeconds" mapstructure:"minDurationSeconds"`
	// PageLimit is the default event fetch limit per bucket.
	PageLimit int `json:"pageLimit" mapstructure:"pageLimit"`
}

// MetricsConfig controls local tool-invocation metrics
type MetricsConfig struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	Path          string `json:"path,omitempty" mapstructure:"path"`
	RetentionDays int    `json:"retentionDays" mapstructure:"retentionDays"`
}

// ExportConfig controls event archives
type ExportConfig struct {
	Dir      string `json:"dir,omitempty" mapstructure:"dir"`
	Compress bool   `json:"compress" mapstructure:"compress"`
}

// LoggingConfig contains logging configuration.
// MCP and CLI override the global level per subsystem; File redirects the
// MCP log, MaxSize ("10MB") and MaxBackups enable rotation.
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	MCP        string `json:"mcp,omitempty" mapstructure:"mcp"`
	CLI        string `json:"cli,omitempty" mapstructure:"cli"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups,omitempty" mapstructure:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			URL:            "http://localhost:5600",
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
		Defaults: DefaultsConfig{
			IncludeWeb:         false,
			MinDurationSeconds: 0,
			PageLimit:          100,
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
		Export: ExportConfig{
			Compress: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

// setDefaults registers every key so env overrides resolve through viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("server.url", d.Server.URL)
	v.SetDefault("server.timeoutSeconds", d.Server.TimeoutSeconds)
	v.SetDefault("server.maxRetries", d.Server.MaxRetries)
	v.SetDefault("defaults.includeWeb", d.Defaults.IncludeWeb)
	v.SetDefault("defaults.minDurationSeconds", d.Defaults.MinDurationSeconds)
	v.SetDefault("defaults.pageLimit", d.Defaults.PageLimit)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", "")
	v.SetDefault("metrics.retentionDays", d.Metrics.RetentionDays)
	v.SetDefault("export.dir", "")
	v.SetDefault("export.compress", d.Export.Compress)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.mcp", "")
	v.SetDefault("logging.cli", "")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
	v.SetDefault("clientsFile", "")
	v.SetDefault("categoriesFile", "")
	v.SetDefault("queriesFile", "")
}

// LoadConfig loads configuration from the awmcp home directory.
// Environment variables with the AWMCP_ prefix override file values,
// e.g. AWMCP_SERVER_URL overrides server.url.
func LoadConfig() (*Config, error) {
	home, err := paths.GetAwmcpHome()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(home)
}

// LoadConfigFrom loads configuration from config.json in the given directory
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("AWMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Missing file is fine; defaults and env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to config.json in the given directory
func (c *Config) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return errors.NewConfigInvalidError("version",
			fmt.Sprintf("unsupported config version %d (expected %d)", c.Version, CurrentVersion))
	}
	if c.Server.URL == "" {
		return errors.NewConfigInvalidError("server.url", "must not be empty")
	}
	if !strings.HasPrefix(c.Server.URL, "http://") && !strings.HasPrefix(c.Server.URL, "https://") {
		return errors.NewConfigInvalidError("server.url", "must start with http:// or https://")
	}
	if c.Server.TimeoutSeconds <= 0 {
		return errors.NewConfigInvalidError("server.timeoutSeconds", "must be positive")
	}
	if c.Server.MaxRetries < 0 {
		return errors.NewConfigInvalidError("server.maxRetries", "must not be negative")
	}
	if c.Defaults.MinDurationSeconds < 0 {
		return errors.NewConfigInvalidError("defaults.minDurationSeconds", "must not be negative")
	}
	if c.Defaults.PageLimit <= 0 {
		return errors.NewConfigInvalidError("defaults.pageLimit", "must be positive")
	}
	if c.Metrics.RetentionDays < 0 {
		return errors.NewConfigInvalidError("metrics.retentionDays", "must not be negative")
	}
	return nil
}
