// Package paths centralizes filesystem locations for awmcp data and the
// normalization helpers applied to folder paths extracted from window titles.
package paths

import (
	"os"
	"path/filepath"
)

const (
	// AwmcpHomeEnvVar overrides the awmcp home directory location
	AwmcpHomeEnvVar = "AWMCP_HOME"
	// DefaultAwmcpHome is the default home directory relative to $HOME
	DefaultAwmcpHome = ".config/awmcp"
	// LogsSubdir holds server and CLI log files
	LogsSubdir = "logs"
	// ExportsSubdir holds event export archives
	ExportsSubdir = "exports"
	// ConfigFile is the main configuration file name
	ConfigFile = "config.json"
	// ClientsConfigFile declares client detection rules
	ClientsConfigFile = "clients.toml"
	// CategoriesConfigFile declares work category rules
	CategoriesConfigFile = "categories.toml"
	// QueriesConfigFile declares named query templates
	QueriesConfigFile = "queries.yaml"
	// MetricsDBFile is the tool metrics database
	MetricsDBFile = "metrics.db"
)

// GetAwmcpHome returns the awmcp home directory.
// Honors AWMCP_HOME; defaults to ~/.config/awmcp.
func GetAwmcpHome() (string, error) {
	if custom := os.Getenv(AwmcpHomeEnvVar); custom != "" {
		return custom, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultAwmcpHome), nil
}

// EnsureAwmcpHome returns the awmcp home directory, creating it if needed.
func EnsureAwmcpHome() (string, error) {
	dir, err := GetAwmcpHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetLogsDir returns the log directory under the awmcp home.
func GetLogsDir() (string, error) {
	home, err := GetAwmcpHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, LogsSubdir), nil
}

// EnsureLogsDir returns the log directory, creating it if needed.
func EnsureLogsDir() (string, error) {
	dir, err := GetLogsDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetExportsDir returns the export directory under the awmcp home.
func GetExportsDir() (string, error) {
	home, err := GetAwmcpHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ExportsSubdir), nil
}

// EnsureExportsDir returns the export directory, creating it if needed.
func EnsureExportsDir() (string, error) {
	dir, err := GetExportsDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetConfigPath returns the main config file path.
func GetConfigPath() (string, error) {
	home, err := GetAwmcpHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigFile), nil
}

// GetClientsConfigPath returns the clients.toml path.
func GetClientsConfigPath() (string, error) {
	home, err := GetAwmcpHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ClientsConfigFile), nil
}

// GetCategoriesConfigPath returns the categories.toml path.
func GetCategoriesConfigPath() (string, error) {
	home, err := GetAwmcpHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, CategoriesConfigFile), nil
}

// GetQueriesConfigPath returns the queries.yaml path.
func GetQueriesConfigPath() (string, error) {
	home, err := GetAwmcpHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, QueriesConfigFile), nil
}

// GetMetricsDBPath returns the tool metrics database path.
func GetMetricsDBPath() (string, error) {
	home, err := GetAwmcpHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, MetricsDBFile), nil
}
