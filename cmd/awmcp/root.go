package main

import (
	"log/slog"
	"os"

	"awmcp/internal/config"
	"awmcp/internal/slogutil"
	"awmcp/internal/version"

	"github.com/spf13/cobra"
)

var (
	// serverFlag is the CLI --server flag value
	serverFlag string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "awmcp",
	Short: "awmcp - ActivityWatch activity for AI agents",
	Long: `awmcp bridges a local ActivityWatch server to AI agents and scripts.

It reads window-title events from the ActivityWatch watchers, aggregates them
into folder-level activity, attributes time to clients, and exposes the
results both as MCP tools over stdio and through this CLI.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("awmcp version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "",
		"ActivityWatch server URL (default http://localhost:5600)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error")
}

// resolveServerURL determines the effective ActivityWatch server URL.
// Precedence: CLI flag > AWMCP_SERVER_URL env var > config.json server.url > default
func resolveServerURL(cfg *config.Config) string {
	// 1. CLI flag (highest priority)
	if serverFlag != "" {
		return serverFlag
	}

	// 2. Environment variable
	if env := os.Getenv("AWMCP_SERVER_URL"); env != "" {
		return env
	}

	// 3. Config file
	if cfg != nil && cfg.Server.URL != "" {
		return cfg.Server.URL
	}

	// 4. Default
	return config.DefaultConfig().Server.URL
}

// cliLogLevel returns the log level requested with --log-level, or nil when
// the flag was not set so configuration precedence applies.
func cliLogLevel() *slog.Level {
	if logLevelFlag == "" {
		return nil
	}
	level := slogutil.LevelFromString(logLevelFlag)
	return &level
}
