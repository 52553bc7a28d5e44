package main

import (
	"strings"
	"testing"

	"awmcp/internal/activity"
	"awmcp/internal/clients"
	"awmcp/internal/config"
	"awmcp/internal/storage"
)

func TestFormatResponse_JSON(t *testing.T) {
	resp := map[string]interface{}{
		"key": "value",
		"num": 42,
	}

	result, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, `"key": "value"`) {
		t.Error("JSON output missing expected key")
	}
	if !strings.Contains(result, `"num": 42`) {
		t.Error("JSON output missing expected number")
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	resp := map[string]string{"key": "value"}

	_, err := FormatResponse(resp, "xml")
	if err == nil {
		t.Error("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error should mention unsupported format, got: %v", err)
	}
}

func TestFormatHuman_UnknownType(t *testing.T) {
	// Unknown types fall back to JSON with a note
	resp := struct {
		Foo string `json:"foo"`
	}{Foo: "bar"}

	result, err := formatHuman(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "Human format not available") {
		t.Error("missing fallback message")
	}
	if !strings.Contains(result, `"foo": "bar"`) {
		t.Error("missing JSON content")
	}
}

func TestFormatBucketsHuman(t *testing.T) {
	resp := &BucketsResponseCLI{
		Server: "http://localhost:5600",
		Count:  2,
		Buckets: []BucketCLI{
			{ID: "aw-watcher-window_devbox", Type: "currentwindow", Hostname: "devbox", Client: "aw-watcher-window"},
			{ID: "aw-watcher-afk_devbox", Type: "afkstatus", Hostname: "devbox", Client: "aw-watcher-afk", LastUpdated: "2024-03-14T11:00:00Z"},
		},
	}

	result, err := formatBucketsHuman(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "ActivityWatch Buckets") {
		t.Error("missing header")
	}
	if !strings.Contains(result, "Server: http://localhost:5600") {
		t.Error("missing server URL")
	}
	if !strings.Contains(result, "Found 2 buckets") {
		t.Error("missing count")
	}
	if !strings.Contains(result, "1. aw-watcher-window_devbox (currentwindow)") {
		t.Error("missing window bucket row")
	}
	if !strings.Contains(result, "Last updated: 2024-03-14T11:00:00Z") {
		t.Error("missing last updated line")
	}
}

func TestFormatActivityHuman(t *testing.T) {
	resp := &ActivityResponseCLI{
		Start:         "2024-03-14T00:00:00Z",
		End:           "2024-03-14T23:59:59Z",
		Buckets:       []string{"aw-watcher-window_devbox"},
		Count:         2,
		TotalSeconds:  1200,
		TotalDuration: "20m 0s",
		Folders: []activity.FolderActivity{
			{Path: "myproject", App: "Code", Context: "coding", TotalDuration: 900, Duration: "15m 0s", EventCount: 2},
			{Path: "/home/dev/src/myproject", App: "Warp", TotalDuration: 300, Duration: "5m 0s", EventCount: 1},
		},
		SkippedBuckets: []string{"aw-watcher-window_oldbox: connection refused"},
	}

	result, err := formatActivityHuman(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "Folder Activity") {
		t.Error("missing header")
	}
	if !strings.Contains(result, "Range: 2024-03-14T00:00:00Z to 2024-03-14T23:59:59Z") {
		t.Error("missing range")
	}
	if !strings.Contains(result, "Total: 20m 0s across 2 folders") {
		t.Error("missing total line")
	}
	if !strings.Contains(result, "1. myproject (Code) [coding]") {
		t.Error("missing first folder with context tag")
	}
	if !strings.Contains(result, "2. /home/dev/src/myproject (Warp)") {
		t.Error("missing second folder")
	}
	if strings.Contains(result, "(Warp) [") {
		t.Error("folder without context should not have a tag")
	}
	if !strings.Contains(result, "! aw-watcher-window_oldbox: connection refused") {
		t.Error("missing skipped bucket warning")
	}
}

func TestFormatClientSummaryHuman(t *testing.T) {
	resp := &ClientSummaryResponseCLI{
		Start: "2024-03-01T00:00:00Z",
		End:   "2024-03-14T23:59:59Z",
		Summary: clients.Summary{
			BillableHours:    1.5,
			SideProjectHours: 0.3,
			Clients: []clients.ClientSummary{
				{ID: "acme", Name: "ACME", Hours: 1.5, Duration: "1h 30m 0s", EventCount: 12, Billable: true},
				{ID: "personal", Name: "Personal", Hours: 0.3, Duration: "20m 0s", EventCount: 3},
			},
		},
	}

	result, err := formatClientSummaryHuman(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "Billable: 1.5 hours") {
		t.Error("missing billable total")
	}
	if !strings.Contains(result, "Side projects: 0.3 hours") {
		t.Error("missing side project total")
	}
	if !strings.Contains(result, "1. ACME [billable]") {
		t.Error("missing billable marker")
	}
	if !strings.Contains(result, "2. Personal\n") {
		t.Error("non-billable client should have no marker")
	}
	if !strings.Contains(result, "1.5 hours (1h 30m 0s), 12 events") {
		t.Error("missing client detail line")
	}
}

func TestFormatMetricsHuman(t *testing.T) {
	resp := &MetricsResponseCLI{
		Enabled:      false,
		Period:       "last 7 days",
		Since:        "2024-03-07",
		TotalRecords: 4,
		Tools: []storage.ToolAggregate{
			{ToolName: "getEvents", CallCount: 3, ErrorCount: 1, TotalResults: 10, TotalBytes: 2048, AvgLatencyMs: 20, ErrorRate: 1.0 / 3.0},
		},
		Recent: []RecentInvocationCLI{
			{Tool: "getEvents", Success: false, ErrorCode: "BUCKET_NOT_FOUND", ExecutionMs: 5, RecordedAt: "2024-03-14T10:00:00Z"},
		},
	}

	result, err := formatMetricsHuman(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "metrics persistence is disabled") {
		t.Error("missing disabled note")
	}
	if !strings.Contains(result, "Period: last 7 days (since 2024-03-07)") {
		t.Error("missing period")
	}
	if !strings.Contains(result, "getEvents: 3 calls, 1 errors (33.3%)") {
		t.Error("missing tool aggregate line")
	}
	if !strings.Contains(result, "avg latency 20.0ms, 10 results, 2.0 KiB") {
		t.Error("missing latency line")
	}
	if !strings.Contains(result, "BUCKET_NOT_FOUND") {
		t.Error("missing failed invocation error code")
	}
}

func TestFormatValidateHuman(t *testing.T) {
	resp := &ValidateResponseCLI{
		Valid: false,
		Checks: []ValidateCheckCLI{
			{Name: "config", Path: "/home/dev/.config/awmcp/config.json", Status: "pass"},
			{Name: "clients", Path: "/home/dev/.config/awmcp/clients.toml", Status: "fail", Message: "client \"acme\" listed in priority but not defined"},
		},
	}

	result, err := formatValidateHuman(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "✗ Issues found") {
		t.Error("missing failure headline")
	}
	if !strings.Contains(result, "✓ config:") {
		t.Error("missing passing check")
	}
	if !strings.Contains(result, "✗ clients:") {
		t.Error("missing failing check")
	}
	if !strings.Contains(result, "listed in priority but not defined") {
		t.Error("missing failure message")
	}
}

func TestFormatConfigHuman_Defaults(t *testing.T) {
	resp := &ConfigShowResponseCLI{
		Path:         "/home/dev/.config/awmcp/config.json",
		UsedDefaults: true,
		Config:       config.DefaultConfig(),
	}

	result, err := formatConfigHuman(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(result, "Source: defaults (no config file found)") {
		t.Error("missing defaults source line")
	}
	if !strings.Contains(result, "URL: http://localhost:5600") {
		t.Error("missing server URL")
	}
	if !strings.Contains(result, "Page limit: 100") {
		t.Error("missing page limit")
	}
	if !strings.Contains(result, "Retention: 30 days") {
		t.Error("missing metrics retention")
	}
	if !strings.Contains(result, "Directory: (default)") {
		t.Error("missing export directory placeholder")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := formatBytes(tt.bytes)
			if result != tt.expected {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, result, tt.expected)
			}
		})
	}
}

func TestParseTemplateParams(t *testing.T) {
	params, err := parseTemplateParams([]string{"window_bucket=aw-watcher-window_devbox", "limit=10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params["window_bucket"] != "aw-watcher-window_devbox" {
		t.Errorf("wrong window_bucket: %q", params["window_bucket"])
	}
	if params["limit"] != "10" {
		t.Errorf("wrong limit: %q", params["limit"])
	}
}

func TestParseTemplateParams_Invalid(t *testing.T) {
	for _, input := range []string{"no-equals", "=value"} {
		if _, err := parseTemplateParams([]string{input}); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}
