package main

import (
	"fmt"
	"os"
	"time"

	"awmcp/internal/storage"

	"github.com/spf13/cobra"
)

var (
	metricsFormat string
	metricsDays   int
	metricsTool   string
	metricsRecent int
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show MCP tool invocation metrics",
	Long: `Display aggregated metrics for MCP tool invocations.

Tracks call counts, error rates, result counts, and execution times per
tool, recorded by the MCP server when metrics persistence is enabled.

Examples:
  awmcp metrics                    # Last 7 days
  awmcp metrics --days=30          # Last 30 days
  awmcp metrics --tool=getEvents
  awmcp metrics --recent=20        # Include the 20 most recent calls
  awmcp metrics --format=human`,
	Run: runMetrics,
}

func init() {
	metricsCmd.Flags().StringVar(&metricsFormat, "format", "json", "Output format (json, human)")
	metricsCmd.Flags().IntVar(&metricsDays, "days", 7, "Number of days to include (1-90)")
	metricsCmd.Flags().StringVar(&metricsTool, "tool", "", "Filter to a specific tool")
	metricsCmd.Flags().IntVar(&metricsRecent, "recent", 0, "Also list the N most recent invocations")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	cfg := loadConfig(logger)

	db, err := openMetricsDB(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening metrics database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Clamp days to a reasonable range
	if metricsDays < 1 {
		metricsDays = 1
	}
	if metricsDays > 90 {
		metricsDays = 90
	}

	since := time.Now().AddDate(0, 0, -metricsDays)

	aggregates, err := db.GetToolAggregates(since)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading metrics: %v\n", err)
		os.Exit(1)
	}

	totalRecords, oldest, newest, err := db.GetMetricsStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading metrics stats: %v\n", err)
		os.Exit(1)
	}

	response := &MetricsResponseCLI{
		Enabled:      cfg.Metrics.Enabled,
		Period:       fmt.Sprintf("last %d days", metricsDays),
		Since:        since.Format("2006-01-02"),
		TotalRecords: totalRecords,
		Tools:        make([]storage.ToolAggregate, 0, len(aggregates)),
	}
	if oldest != nil {
		response.OldestRecord = oldest.Format("2006-01-02 15:04:05")
	}
	if newest != nil {
		response.NewestRecord = newest.Format("2006-01-02 15:04:05")
	}

	for _, agg := range aggregates {
		if metricsTool != "" && agg.ToolName != metricsTool {
			continue
		}
		response.Tools = append(response.Tools, agg)
	}

	if metricsRecent > 0 {
		invocations, err := db.GetRecentInvocations(metricsRecent, metricsTool)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading recent invocations: %v\n", err)
			os.Exit(1)
		}
		for _, inv := range invocations {
			response.Recent = append(response.Recent, RecentInvocationCLI{
				Tool:        inv.ToolName,
				Success:     inv.Success,
				ErrorCode:   inv.ErrorCode,
				ResultCount: inv.ResultCount,
				ExecutionMs: inv.ExecutionMs,
				RecordedAt:  inv.RecordedAt.Format(time.RFC3339),
			})
		}
	}

	printResponse(response, metricsFormat)
}

// MetricsResponseCLI contains the metrics summary for CLI output
type MetricsResponseCLI struct {
	Enabled      bool                    `json:"enabled"`
	Period       string                  `json:"period"`
	Since        string                  `json:"since"`
	TotalRecords int64                   `json:"totalRecords"`
	OldestRecord string                  `json:"oldestRecord,omitempty"`
	NewestRecord string                  `json:"newestRecord,omitempty"`
	Tools        []storage.ToolAggregate `json:"tools"`
	Recent       []RecentInvocationCLI   `json:"recent,omitempty"`
}

// RecentInvocationCLI is one recorded tool call
type RecentInvocationCLI struct {
	Tool        string `json:"tool"`
	Success     bool   `json:"success"`
	ErrorCode   string `json:"errorCode,omitempty"`
	ResultCount int    `json:"resultCount"`
	ExecutionMs int64  `json:"executionMs"`
	RecordedAt  string `json:"recordedAt"`
}
