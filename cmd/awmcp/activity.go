package main

import (
	"fmt"
	"os"

	"awmcp/internal/activity"
	"awmcp/internal/categories"

	"github.com/spf13/cobra"
)

var (
	activityStart       string
	activityEnd         string
	activityFormat      string
	activityIncludeWeb  bool
	activityMinDuration float64
	activityLimit       int
	activityByCategory  bool
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show folder-level activity for a time range",
	Long: `Aggregate window events into folder-level activity.

Window titles are classified into folder references (editor project names,
terminal working directories, optionally web URLs) and grouped by
(path, app), sorted by total time.

Start and end accept ISO dates and natural expressions like "yesterday" or
"3 days ago". A start without an end covers that entire day.

Examples:
  awmcp activity
  awmcp activity --start=yesterday
  awmcp activity --start=2024-03-01 --end=2024-03-14
  awmcp activity --include-web --min-duration=60
  awmcp activity --by-category --format=human`,
	Run: runActivity,
}

func init() {
	activityCmd.Flags().StringVar(&activityStart, "start", "today", "Range start (ISO date or natural expression)")
	activityCmd.Flags().StringVar(&activityEnd, "end", "", "Range end (defaults to the end of the start day)")
	activityCmd.Flags().StringVar(&activityFormat, "format", "json", "Output format (json, human)")
	activityCmd.Flags().BoolVar(&activityIncludeWeb, "include-web", false, "Count web URLs as folder references")
	activityCmd.Flags().Float64Var(&activityMinDuration, "min-duration", 0, "Drop folders below this many seconds")
	activityCmd.Flags().IntVar(&activityLimit, "limit", 0, "Maximum events to fetch per bucket (0 uses the configured default)")
	activityCmd.Flags().BoolVar(&activityByCategory, "by-category", false, "Group by work category instead of folder")
	rootCmd.AddCommand(activityCmd)
}

func runActivity(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	cfg := loadConfig(logger)

	// Unset flags fall back to the configured defaults.
	if !cmd.Flags().Changed("include-web") {
		activityIncludeWeb = cfg.Defaults.IncludeWeb
	}
	if !cmd.Flags().Changed("min-duration") {
		activityMinDuration = cfg.Defaults.MinDurationSeconds
	}
	if activityLimit <= 0 {
		activityLimit = cfg.Defaults.PageLimit
	}

	r := mustParseRange(activityStart, activityEnd)
	client := newAwClient(cfg, logger)
	ctx := newContext()

	sweep, err := sweepWindow(ctx, client, r, activityLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching events: %v\n", err)
		os.Exit(1)
	}

	skipped := make([]string, 0, len(sweep.Skipped))
	for _, skip := range sweep.Skipped {
		skipped = append(skipped, fmt.Sprintf("%s: %v", skip.BucketID, skip.Err))
	}

	if activityByCategory {
		categorizer := loadCategorizer(cfg, logger)
		response := &CategoryResponseCLI{
			Start:          r.StartISO(),
			End:            r.EndISO(),
			Buckets:        sweep.Buckets,
			SkippedBuckets: skipped,
			Categories:     categorizer.Summarize(sweep.Events),
		}
		printResponse(response, activityFormat)
		return
	}

	folders := activity.Aggregate(sweep.Events, activityIncludeWeb)
	if activityMinDuration > 0 {
		folders = activity.FilterMinDuration(folders, activityMinDuration)
	}

	var totalSeconds float64
	for _, folder := range folders {
		totalSeconds += folder.TotalDuration
	}

	response := &ActivityResponseCLI{
		Start:          r.StartISO(),
		End:            r.EndISO(),
		Buckets:        sweep.Buckets,
		SkippedBuckets: skipped,
		Count:          len(folders),
		TotalSeconds:   totalSeconds,
		TotalDuration:  activity.FormatDuration(totalSeconds),
		Folders:        folders,
	}
	printResponse(response, activityFormat)
}

// printResponse renders a response and writes it to stdout, exiting on
// formatting errors.
func printResponse(resp interface{}, format string) {
	output, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

// ActivityResponseCLI contains aggregated folder activity for CLI output
type ActivityResponseCLI struct {
	Start          string                    `json:"start"`
	End            string                    `json:"end"`
	Buckets        []string                  `json:"buckets,omitempty"`
	SkippedBuckets []string                  `json:"skippedBuckets,omitempty"`
	Count          int                       `json:"count"`
	TotalSeconds   float64                   `json:"totalSeconds"`
	TotalDuration  string                    `json:"totalDuration"`
	Folders        []activity.FolderActivity `json:"folders"`
}

// CategoryResponseCLI contains per-category activity for CLI output
type CategoryResponseCLI struct {
	Start          string                       `json:"start"`
	End            string                       `json:"end"`
	Buckets        []string                     `json:"buckets,omitempty"`
	SkippedBuckets []string                     `json:"skippedBuckets,omitempty"`
	Categories     []categories.CategorySummary `json:"categories"`
}
