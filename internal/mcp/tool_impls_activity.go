package mcp

import (
	"context"

	"awmcp/internal/activity"
	"awmcp/internal/classify"
	"awmcp/internal/clients"
	"awmcp/internal/envelope"
)

// folderRow is one getFolderActivity result row: the aggregated activity
// plus the work category its app/path matched.
type folderRow struct {
	activity.FolderActivity
	Category string `json:"category,omitempty"`
}

// toolGetFolderActivity implements the getFolderActivity tool
func (s *MCPServer) toolGetFolderActivity(params map[string]interface{}) (*envelope.Response, error) {
	r, err := resolveRange(params)
	if err != nil {
		return nil, err
	}

	includeWeb := boolParam(params, "includeWeb", s.cfg.Defaults.IncludeWeb)
	minDuration := floatParam(params, "minDuration", s.cfg.Defaults.MinDurationSeconds)
	limit := intParam(params, "limit", 0)

	ctx := context.Background()
	sweep, err := s.sweepWindowEvents(ctx, r)
	if err != nil {
		return nil, err
	}

	all := activity.Aggregate(sweep.Events, includeWeb)
	kept := activity.FilterMinDuration(all, minDuration)

	reason := ""
	if len(kept) < len(all) {
		reason = "min-duration"
	}
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
		reason = "limit"
	}

	var totalSeconds float64
	for _, a := range all {
		totalSeconds += a.TotalDuration
	}

	rows := make([]folderRow, len(kept))
	for i, a := range kept {
		rows[i] = folderRow{
			FolderActivity: a,
			Category:       s.categorizer.Categorize(a.App, a.Path+" "+a.Context),
		}
	}

	builder := envelope.New().
		Data(map[string]interface{}{
			"folders":       rows,
			"count":         len(rows),
			"totalSeconds":  totalSeconds,
			"totalDuration": activity.FormatDuration(totalSeconds),
		}).
		WithSource(s.client.BaseURL(), sweep.Buckets, sweep.SkippedIDs()).
		WithRange(r.StartISO(), r.EndISO()).
		WithTruncation(len(rows) < len(all), len(rows), len(all), reason)

	addSkipWarnings(builder, sweep.Skipped)

	if len(sweep.Buckets) == 0 && len(sweep.Skipped) == 0 {
		builder.Warning("no window buckets found on the server")
	}
	if len(rows) == 0 && len(sweep.Events) > 0 {
		builder.SuggestCall("getActiveFolders",
			map[string]interface{}{"start": params["start"], "end": params["end"]},
			"Broader path scan may find folders the title classifier missed")
	}

	return builder.Build(), nil
}

// toolGetActiveFolders implements the getActiveFolders tool
func (s *MCPServer) toolGetActiveFolders(params map[string]interface{}) (*envelope.Response, error) {
	r, err := resolveRange(params)
	if err != nil {
		return nil, err
	}
	limit := intParam(params, "limit", 0)

	ctx := context.Background()
	sweep, err := s.sweepWindowEvents(ctx, r)
	if err != nil {
		return nil, err
	}

	folders := classify.ScanEvents(sweep.Events)
	total := len(folders)
	if limit > 0 && len(folders) > limit {
		folders = folders[:limit]
	}

	builder := envelope.New().
		Data(map[string]interface{}{
			"folders": folders,
			"count":   len(folders),
		}).
		WithSource(s.client.BaseURL(), sweep.Buckets, sweep.SkippedIDs()).
		WithRange(r.StartISO(), r.EndISO()).
		WithTruncation(len(folders) < total, len(folders), total, "limit")

	addSkipWarnings(builder, sweep.Skipped)

	if len(sweep.Buckets) == 0 && len(sweep.Skipped) == 0 {
		builder.Warning("no window buckets found on the server")
	}

	return builder.Build(), nil
}

// toolGetClientSummary implements the getClientSummary tool
func (s *MCPServer) toolGetClientSummary(params map[string]interface{}) (*envelope.Response, error) {
	r, err := resolveRange(params)
	if err != nil {
		return nil, err
	}
	includeWeb := boolParam(params, "includeWeb", s.cfg.Defaults.IncludeWeb)

	ctx := context.Background()
	sweep, err := s.sweepWindowEvents(ctx, r)
	if err != nil {
		return nil, err
	}

	activities := activity.Aggregate(sweep.Events, includeWeb)
	summary := clients.NewDetector(s.clients).Summarize(activities)

	builder := envelope.New().
		Data(summary).
		WithSource(s.client.BaseURL(), sweep.Buckets, sweep.SkippedIDs()).
		WithRange(r.StartISO(), r.EndISO())

	addSkipWarnings(builder, sweep.Skipped)

	if len(sweep.Buckets) == 0 && len(sweep.Skipped) == 0 {
		builder.Warning("no window buckets found on the server")
	}

	return builder.Build(), nil
}
