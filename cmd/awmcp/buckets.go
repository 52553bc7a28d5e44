package main

import (
	"fmt"
	"os"

	"awmcp/internal/aw"

	"github.com/spf13/cobra"
)

var (
	bucketsFormat string
	bucketsType   string
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List event buckets on the ActivityWatch server",
	Long: `List the event buckets registered on the ActivityWatch server.

Each watcher registers one bucket per host: window buckets (type
currentwindow) carry app and window-title samples, AFK buckets (type
afkstatus) carry keyboard presence.

Examples:
  awmcp buckets
  awmcp buckets --type=window
  awmcp buckets --format=human`,
	Run: runBuckets,
}

func init() {
	bucketsCmd.Flags().StringVar(&bucketsFormat, "format", "json", "Output format (json, human)")
	bucketsCmd.Flags().StringVar(&bucketsType, "type", "", "Filter by bucket type (window, afk)")
	rootCmd.AddCommand(bucketsCmd)
}

func runBuckets(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	cfg := loadConfig(logger)
	client := newAwClient(cfg, logger)
	ctx := newContext()

	buckets, err := client.ListBuckets(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing buckets: %v\n", err)
		os.Exit(1)
	}

	switch bucketsType {
	case "window":
		buckets = aw.WindowBuckets(buckets)
	case "afk":
		buckets = aw.AFKBuckets(buckets)
	case "":
		// keep all
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown bucket type %q (want window or afk)\n", bucketsType)
		os.Exit(1)
	}

	response := &BucketsResponseCLI{
		Server:  client.BaseURL(),
		Count:   len(buckets),
		Buckets: make([]BucketCLI, 0, len(buckets)),
	}
	for _, bucket := range buckets {
		response.Buckets = append(response.Buckets, BucketCLI{
			ID:          bucket.ID,
			Type:        bucket.Type,
			Client:      bucket.Client,
			Hostname:    bucket.Hostname,
			LastUpdated: bucket.LastUpdated,
		})
	}

	output, err := FormatResponse(response, OutputFormat(bucketsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)
}

// BucketsResponseCLI contains the bucket list for CLI output
type BucketsResponseCLI struct {
	Server  string      `json:"server"`
	Count   int         `json:"count"`
	Buckets []BucketCLI `json:"buckets"`
}

// BucketCLI is one bucket row
type BucketCLI struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Client      string `json:"client,omitempty"`
	Hostname    string `json:"hostname,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}
