package main

import (
	"fmt"
	"os"

	"awmcp/internal/classify"

	"github.com/spf13/cobra"
)

var (
	foldersStart  string
	foldersEnd    string
	foldersFormat string
	foldersLimit  int
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List folder paths seen in window titles",
	Long: `Scan window titles for absolute directory paths.

Unlike 'awmcp activity' this does not aggregate time; it reports the
deduplicated set of directories that appeared in any title during the
range. Useful for discovering what was touched without caring how long.

Examples:
  awmcp folders
  awmcp folders --start=yesterday
  awmcp folders --start=2024-03-01 --end=2024-03-14 --format=human`,
	Run: runFolders,
}

func init() {
	foldersCmd.Flags().StringVar(&foldersStart, "start", "today", "Range start (ISO date or natural expression)")
	foldersCmd.Flags().StringVar(&foldersEnd, "end", "", "Range end (defaults to the end of the start day)")
	foldersCmd.Flags().StringVar(&foldersFormat, "format", "json", "Output format (json, human)")
	foldersCmd.Flags().IntVar(&foldersLimit, "limit", 0, "Maximum events to fetch per bucket (0 uses the configured default)")
	rootCmd.AddCommand(foldersCmd)
}

func runFolders(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	cfg := loadConfig(logger)

	if foldersLimit <= 0 {
		foldersLimit = cfg.Defaults.PageLimit
	}

	r := mustParseRange(foldersStart, foldersEnd)
	client := newAwClient(cfg, logger)
	ctx := newContext()

	sweep, err := sweepWindow(ctx, client, r, foldersLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching events: %v\n", err)
		os.Exit(1)
	}

	folders := classify.ScanEvents(sweep.Events)

	response := &FoldersResponseCLI{
		Start:   r.StartISO(),
		End:     r.EndISO(),
		Buckets: sweep.Buckets,
		Count:   len(folders),
		Folders: folders,
	}
	printResponse(response, foldersFormat)
}

// FoldersResponseCLI contains the scanned folder list for CLI output
type FoldersResponseCLI struct {
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Buckets []string `json:"buckets,omitempty"`
	Count   int      `json:"count"`
	Folders []string `json:"folders"`
}
