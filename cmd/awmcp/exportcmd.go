package main

import (
	"fmt"
	"os"

	"awmcp/internal/aw"
	"awmcp/internal/export"

	"github.com/spf13/cobra"
)

var (
	exportBucket   string
	exportStart    string
	exportEnd      string
	exportOut      string
	exportCompress bool
	exportLimit    int
	exportFormat   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Archive raw events from a bucket",
	Long: `Write the raw events of one bucket to a JSONL archive.

Events are written one per line, optionally zstd-compressed, together with
a manifest describing the export. Archives land in the configured exports
directory unless --out overrides it.

Examples:
  awmcp export --bucket=aw-watcher-window_devbox
  awmcp export --bucket=aw-watcher-window_devbox --start=2024-03-01 --end=2024-03-14
  awmcp export --bucket=aw-watcher-window_devbox --out=/tmp/archives --compress=false`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportBucket, "bucket", "", "Bucket ID to export (required)")
	exportCmd.Flags().StringVar(&exportStart, "start", "today", "Range start (ISO date or natural expression)")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "Range end (defaults to the end of the start day)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (default from config)")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", true, "Compress the archive with zstd")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "Maximum events to export (0 exports everything in range)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format (json, human)")
	exportCmd.MarkFlagRequired("bucket")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	logger := newCLILogger()
	cfg := loadConfig(logger)

	if !cmd.Flags().Changed("compress") {
		exportCompress = cfg.Export.Compress
	}

	r := mustParseRange(exportStart, exportEnd)
	client := newAwClient(cfg, logger)
	ctx := newContext()

	events, err := client.GetEvents(ctx, exportBucket, aw.EventOptions{
		Limit: exportLimit,
		Start: r.StartISO(),
		End:   r.EndISO(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching events: %v\n", err)
		os.Exit(1)
	}

	dir := exportOut
	if dir == "" {
		dir = cfg.Export.Dir
	}
	archiver, err := export.NewArchiver(dir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening export directory: %v\n", err)
		os.Exit(1)
	}

	manifest, err := archiver.Archive(events, export.Options{
		BucketID: exportBucket,
		Start:    r.StartISO(),
		End:      r.EndISO(),
		Compress: exportCompress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing archive: %v\n", err)
		os.Exit(1)
	}

	response := &ExportResponseCLI{
		Manifest: manifest,
		Path:     archiver.Path(manifest),
	}
	printResponse(response, exportFormat)
}

// ExportResponseCLI contains the written archive details
type ExportResponseCLI struct {
	Manifest *export.Manifest `json:"manifest"`
	Path     string           `json:"path"`
}
