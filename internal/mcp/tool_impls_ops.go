package mcp

import (
	"context"
	"fmt"
	"time"

	"awmcp/internal/envelope"
	"awmcp/internal/errors"
	"awmcp/internal/export"
	"awmcp/internal/timespan"
)

// toolExportEvents implements the exportEvents tool
func (s *MCPServer) toolExportEvents(params map[string]interface{}) (*envelope.Response, error) {
	bucketID := stringParam(params, "bucketId", "")
	if bucketID == "" {
		return nil, errors.NewInvalidParameterError("missing required parameter: bucketId")
	}

	opts, err := resolveEventOptions(params, 0)
	if err != nil {
		return nil, err
	}
	compress := boolParam(params, "compress", s.cfg.Export.Compress)

	ctx := context.Background()
	events, err := s.client.GetEvents(ctx, bucketID, opts)
	if err != nil {
		return nil, remoteError(err, bucketID)
	}

	archiver, err := s.exportArchiver()
	if err != nil {
		return nil, errors.NewExportFailedError("export directory unavailable", err)
	}

	manifest, err := archiver.Archive(events, export.Options{
		BucketID: bucketID,
		Start:    opts.Start,
		End:      opts.End,
		Compress: compress,
	})
	if err != nil {
		return nil, errors.NewExportFailedError("failed to write archive", err)
	}

	builder := envelope.New().
		Data(map[string]interface{}{
			"export": manifest,
			"path":   archiver.Path(manifest),
		}).
		WithSource(s.client.BaseURL(), []string{bucketID}, nil).
		WithRange(opts.Start, opts.End)

	return builder.Build(), nil
}

// exportArchiver returns the configured archiver, creating one on first use.
func (s *MCPServer) exportArchiver() (*export.Archiver, error) {
	if s.archiver != nil {
		return s.archiver, nil
	}
	archiver, err := export.NewArchiver(s.cfg.Export.Dir, s.logger)
	if err != nil {
		return nil, err
	}
	s.archiver = archiver
	return archiver, nil
}

// toolGetToolMetrics implements the getToolMetrics tool
func (s *MCPServer) toolGetToolMetrics(params map[string]interface{}) (*envelope.Response, error) {
	var since time.Time
	sinceText := stringParam(params, "since", "")
	if sinceText != "" {
		t, err := timespan.ParseInstant(sinceText)
		if err != nil {
			return nil, asDateError(err)
		}
		since = t
	}

	data := map[string]interface{}{
		"session": s.metrics.Summary(),
	}
	if sinceText != "" {
		data["since"] = timespan.FormatISO(since)
	}

	builder := envelope.New().Data(data)

	if s.metrics.HasStore() {
		persisted, err := s.metrics.PersistedAggregates(since)
		if err != nil {
			builder.WarningWithCode("METRICS_READ_FAILED",
				fmt.Sprintf("failed to read persisted metrics: %v", err))
		} else {
			data["persisted"] = persisted
		}
	} else {
		builder.Warning("metrics persistence is disabled; session data only")
	}

	return builder.Build(), nil
}
