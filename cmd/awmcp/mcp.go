package main

import (
	"time"

	"awmcp/internal/config"
	"awmcp/internal/mcp"
	"awmcp/internal/slogutil"
	"awmcp/internal/version"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Start the Model Context Protocol (MCP) server.

The server speaks JSON-RPC 2.0 over stdio and exposes ActivityWatch
activity to MCP clients. Logs go to stderr and the log file; stdout is
reserved for the protocol stream.

The server exposes the following tools:
  - listBuckets: List event buckets on the ActivityWatch server
  - getEvents: Fetch raw events from window buckets
  - runQuery: Run an AQL query or named template
  - getSettings: Read ActivityWatch server settings
  - getFolderActivity: Aggregate window events into folder activity
  - getActiveFolders: List folder paths seen in window titles
  - getClientSummary: Attribute tracked time to clients
  - exportEvents: Archive raw events to JSONL
  - getToolMetrics: Report tool invocation metrics

This command is typically invoked by MCP clients and not directly by users.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, cfgErr := getConfig()
	if cfgErr != nil {
		cfg = config.DefaultConfig()
	}

	factory := slogutil.NewLoggerFactory(cfg, cliLogLevel())
	defer factory.Close()
	logger := factory.MCPLogger()

	if cfgErr != nil {
		logger.Warn("Failed to load config, using defaults", "error", cfgErr)
	}

	logger.Info("Starting MCP server",
		"version", version.Version,
		"server", resolveServerURL(cfg))

	deps := mcp.Deps{
		Client:      newAwClient(cfg, logger),
		Config:      cfg,
		Clients:     loadClients(cfg, logger),
		Categorizer: loadCategorizer(cfg, logger),
		Queries:     loadQueries(cfg, logger),
	}

	if cfg.Metrics.Enabled {
		db, err := openMetricsDB(cfg, logger)
		if err != nil {
			logger.Warn("Metrics persistence unavailable", "error", err)
		} else {
			defer db.Close()
			deps.MetricsDB = db

			if days := cfg.Metrics.RetentionDays; days > 0 {
				retention := time.Duration(days) * 24 * time.Hour
				if removed, err := db.CleanupOldMetrics(retention); err != nil {
					logger.Warn("Metrics cleanup failed", "error", err)
				} else if removed > 0 {
					logger.Debug("Pruned old metrics", "removed", removed)
				}
			}
		}
	}

	server := mcp.NewMCPServer(version.Version, deps, logger)
	if err := server.Start(); err != nil {
		logger.Error("MCP server error", "error", err)
		return err
	}

	return nil
}
