package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *BucketsResponseCLI:
		return formatBucketsHuman(v)
	case *ActivityResponseCLI:
		return formatActivityHuman(v)
	case *CategoryResponseCLI:
		return formatCategoriesHuman(v)
	case *FoldersResponseCLI:
		return formatFoldersHuman(v)
	case *QueryListResponseCLI:
		return formatQueryListHuman(v)
	case *ExportResponseCLI:
		return formatExportHuman(v)
	case *ClientsResponseCLI:
		return formatClientsHuman(v)
	case *ClientSummaryResponseCLI:
		return formatClientSummaryHuman(v)
	case *MetricsResponseCLI:
		return formatMetricsHuman(v)
	case *ConfigShowResponseCLI:
		return formatConfigHuman(v)
	case *ValidateResponseCLI:
		return formatValidateHuman(v)
	default:
		// Raw query results and anything new fall back to JSON
		data, err := formatJSON(resp)
		if err != nil {
			return "", err
		}
		return "Human format not available; showing JSON:\n\n" + data, nil
	}
}

func formatBucketsHuman(resp *BucketsResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("ActivityWatch Buckets\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Server: %s\n", resp.Server))
	b.WriteString(fmt.Sprintf("Found %d buckets\n\n", resp.Count))

	for i, bucket := range resp.Buckets {
		b.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, bucket.ID, bucket.Type))
		if bucket.Hostname != "" || bucket.Client != "" {
			b.WriteString(fmt.Sprintf("   Host: %s, watcher: %s\n", bucket.Hostname, bucket.Client))
		}
		if bucket.LastUpdated != "" {
			b.WriteString(fmt.Sprintf("   Last updated: %s\n", bucket.LastUpdated))
		}
	}

	return b.String(), nil
}

func formatActivityHuman(resp *ActivityResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Folder Activity\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Range: %s to %s\n", resp.Start, resp.End))
	if len(resp.Buckets) > 0 {
		b.WriteString(fmt.Sprintf("Buckets: %s\n", strings.Join(resp.Buckets, ", ")))
	}
	b.WriteString(fmt.Sprintf("Total: %s across %d folders\n\n", resp.TotalDuration, resp.Count))

	for i, folder := range resp.Folders {
		category := ""
		if folder.Context != "" {
			category = fmt.Sprintf(" [%s]", folder.Context)
		}
		b.WriteString(fmt.Sprintf("%d. %s (%s)%s\n", i+1, folder.Path, folder.App, category))
		b.WriteString(fmt.Sprintf("   %s, %d events\n", folder.Duration, folder.EventCount))
	}

	writeSkipped(&b, resp.SkippedBuckets)

	return b.String(), nil
}

func formatCategoriesHuman(resp *CategoryResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Activity by Category\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Range: %s to %s\n\n", resp.Start, resp.End))

	for _, cat := range resp.Categories {
		b.WriteString(fmt.Sprintf("%-20s %10s  %5.1f%%  (%d events)\n",
			cat.Category, cat.Duration, cat.Percent, cat.EventCount))
	}

	writeSkipped(&b, resp.SkippedBuckets)

	return b.String(), nil
}

func formatFoldersHuman(resp *FoldersResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Active Folders\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Range: %s to %s\n", resp.Start, resp.End))
	b.WriteString(fmt.Sprintf("Found %d folders\n\n", resp.Count))

	for _, folder := range resp.Folders {
		b.WriteString(fmt.Sprintf("  %s\n", folder))
	}

	return b.String(), nil
}

func formatQueryListHuman(resp *QueryListResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Query Templates\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, template := range resp.Templates {
		b.WriteString(fmt.Sprintf("%s\n", template.Name))
		if template.Description != "" {
			b.WriteString(fmt.Sprintf("  %s\n", template.Description))
		}
		if len(template.Params) > 0 {
			b.WriteString(fmt.Sprintf("  Params: %s\n", strings.Join(template.Params, ", ")))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

func formatExportHuman(resp *ExportResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Event Export\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	m := resp.Manifest
	b.WriteString(fmt.Sprintf("Bucket: %s\n", m.BucketID))
	if m.Start != "" || m.End != "" {
		b.WriteString(fmt.Sprintf("Range: %s to %s\n", m.Start, m.End))
	}
	b.WriteString(fmt.Sprintf("Events: %d\n", m.EventCount))

	compression := "none"
	if m.Compressed {
		compression = "zstd"
	}
	b.WriteString(fmt.Sprintf("File: %s (%s, compression: %s)\n",
		resp.Path, formatBytes(m.SizeBytes), compression))

	return b.String(), nil
}

func formatClientsHuman(resp *ClientsResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Client Detection Rules\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Default client: %s\n", resp.DefaultClient))
	if len(resp.Priority) > 0 {
		b.WriteString(fmt.Sprintf("Priority: %s\n", strings.Join(resp.Priority, ", ")))
	}
	b.WriteString("\n")

	for _, client := range resp.Clients {
		name := client.Name
		if client.DisplayName != "" {
			name = fmt.Sprintf("%s (%s)", client.Name, client.DisplayName)
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", client.ID, name))
		if len(client.Folders) > 0 {
			b.WriteString(fmt.Sprintf("  Folders: %s\n", strings.Join(client.Folders, ", ")))
		}
		if len(client.Projects) > 0 {
			b.WriteString(fmt.Sprintf("  Projects: %s\n", strings.Join(client.Projects, ", ")))
		}
		if len(client.TicketPrefixes) > 0 {
			b.WriteString(fmt.Sprintf("  Ticket prefixes: %s\n", strings.Join(client.TicketPrefixes, ", ")))
		}
	}

	return b.String(), nil
}

func formatClientSummaryHuman(resp *ClientSummaryResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Client Time Summary\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Range: %s to %s\n", resp.Start, resp.End))
	b.WriteString(fmt.Sprintf("Billable: %.1f hours\n", resp.Summary.BillableHours))
	b.WriteString(fmt.Sprintf("Side projects: %.1f hours\n\n", resp.Summary.SideProjectHours))

	for i, client := range resp.Summary.Clients {
		billable := ""
		if client.Billable {
			billable = " [billable]"
		}
		b.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, client.Name, billable))
		b.WriteString(fmt.Sprintf("   %.1f hours (%s), %d events\n",
			client.Hours, client.Duration, client.EventCount))
	}

	return b.String(), nil
}

func formatMetricsHuman(resp *MetricsResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Tool Metrics\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if !resp.Enabled {
		b.WriteString("Note: metrics persistence is disabled in config\n\n")
	}

	b.WriteString(fmt.Sprintf("Period: %s (since %s)\n", resp.Period, resp.Since))
	b.WriteString(fmt.Sprintf("Records: %d", resp.TotalRecords))
	if resp.OldestRecord != "" && resp.NewestRecord != "" {
		b.WriteString(fmt.Sprintf(" (%s to %s)", resp.OldestRecord, resp.NewestRecord))
	}
	b.WriteString("\n\n")

	for _, tool := range resp.Tools {
		b.WriteString(fmt.Sprintf("%s: %d calls, %d errors (%.1f%%)\n",
			tool.ToolName, tool.CallCount, tool.ErrorCount, tool.ErrorRate*100))
		b.WriteString(fmt.Sprintf("  avg latency %.1fms, %d results, %s\n",
			tool.AvgLatencyMs, tool.TotalResults, formatBytes(tool.TotalBytes)))
	}

	if len(resp.Recent) > 0 {
		b.WriteString("\nRecent invocations:\n")
		for _, inv := range resp.Recent {
			status := "ok"
			if !inv.Success {
				status = inv.ErrorCode
			}
			b.WriteString(fmt.Sprintf("  %s %s (%s, %dms, %d results)\n",
				inv.RecordedAt, inv.Tool, status, inv.ExecutionMs, inv.ResultCount))
		}
	}

	return b.String(), nil
}

func formatConfigHuman(resp *ConfigShowResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("awmcp Configuration\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if resp.UsedDefaults {
		b.WriteString("Source: defaults (no config file found)\n\n")
	} else {
		b.WriteString(fmt.Sprintf("Source: %s\n\n", resp.Path))
	}

	cfg := resp.Config
	b.WriteString("Server:\n")
	b.WriteString(fmt.Sprintf("  URL: %s\n", cfg.Server.URL))
	b.WriteString(fmt.Sprintf("  Timeout: %ds\n", cfg.Server.TimeoutSeconds))
	b.WriteString(fmt.Sprintf("  Max retries: %d\n\n", cfg.Server.MaxRetries))

	b.WriteString("Defaults:\n")
	b.WriteString(fmt.Sprintf("  Include web: %v\n", cfg.Defaults.IncludeWeb))
	b.WriteString(fmt.Sprintf("  Min duration: %.0fs\n", cfg.Defaults.MinDurationSeconds))
	b.WriteString(fmt.Sprintf("  Page limit: %d\n\n", cfg.Defaults.PageLimit))

	b.WriteString("Metrics:\n")
	b.WriteString(fmt.Sprintf("  Enabled: %v\n", cfg.Metrics.Enabled))
	b.WriteString(fmt.Sprintf("  Retention: %d days\n\n", cfg.Metrics.RetentionDays))

	b.WriteString("Export:\n")
	dir := cfg.Export.Dir
	if dir == "" {
		dir = "(default)"
	}
	b.WriteString(fmt.Sprintf("  Directory: %s\n", dir))
	b.WriteString(fmt.Sprintf("  Compress: %v\n\n", cfg.Export.Compress))

	b.WriteString("Logging:\n")
	b.WriteString(fmt.Sprintf("  Level: %s\n", cfg.Logging.Level))

	return b.String(), nil
}

func formatValidateHuman(resp *ValidateResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Configuration Validation\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if resp.Valid {
		b.WriteString("✓ All files valid\n\n")
	} else {
		b.WriteString("✗ Issues found\n\n")
	}

	for _, check := range resp.Checks {
		icon := "✓"
		if check.Status == "fail" {
			icon = "✗"
		}
		b.WriteString(fmt.Sprintf("%s %s: %s\n", icon, check.Name, check.Path))
		if check.Message != "" {
			b.WriteString(fmt.Sprintf("    %s\n", check.Message))
		}
	}

	return b.String(), nil
}

// writeSkipped appends the skipped-bucket warnings shared by the activity
// renderings.
func writeSkipped(b *strings.Builder, skipped []string) {
	if len(skipped) == 0 {
		return
	}
	b.WriteString("\nSkipped buckets:\n")
	for _, skip := range skipped {
		b.WriteString(fmt.Sprintf("  ! %s\n", skip))
	}
}

// formatBytes formats byte size in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
