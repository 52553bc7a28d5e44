package mcp

import (
	"context"
	stderrors "errors"
	"fmt"

	"awmcp/internal/aw"
	"awmcp/internal/envelope"
	"awmcp/internal/errors"
	"awmcp/internal/timespan"
)

// toolListBuckets implements the listBuckets tool
func (s *MCPServer) toolListBuckets(params map[string]interface{}) (*envelope.Response, error) {
	typeFilter := stringParam(params, "type", "")

	ctx := context.Background()
	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, remoteError(err, "")
	}

	rows := make([]map[string]interface{}, 0, len(buckets))
	windowCount := 0
	for _, b := range buckets {
		if typeFilter != "" && b.Type != typeFilter {
			continue
		}
		if b.Type == aw.BucketTypeWindow {
			windowCount++
		}
		row := map[string]interface{}{
			"id":   b.ID,
			"type": b.Type,
		}
		if b.Client != "" {
			row["client"] = b.Client
		}
		if b.Hostname != "" {
			row["hostname"] = b.Hostname
		}
		if b.Created != "" {
			row["created"] = b.Created
		}
		if b.LastUpdated != "" {
			row["lastUpdated"] = b.LastUpdated
		}
		rows = append(rows, row)
	}

	builder := envelope.New().
		Data(map[string]interface{}{
			"buckets": rows,
			"count":   len(rows),
		}).
		WithSource(s.client.BaseURL(), nil, nil)

	if windowCount > 0 {
		builder.SuggestCall("getFolderActivity",
			map[string]interface{}{"start": "today"},
			"Summarize folder activity from the window buckets")
	}

	return builder.Build(), nil
}

// toolGetEvents implements the getEvents tool
func (s *MCPServer) toolGetEvents(params map[string]interface{}) (*envelope.Response, error) {
	bucketID := stringParam(params, "bucketId", "")
	if bucketID == "" {
		return nil, errors.NewInvalidParameterError("missing required parameter: bucketId")
	}

	opts, err := resolveEventOptions(params, s.cfg.Defaults.PageLimit)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	events, err := s.client.GetEvents(ctx, bucketID, opts)
	if err != nil {
		return nil, remoteError(err, bucketID)
	}

	builder := envelope.New().
		Data(map[string]interface{}{
			"bucket": bucketID,
			"events": events,
			"count":  len(events),
		}).
		WithSource(s.client.BaseURL(), []string{bucketID}, nil).
		WithRange(opts.Start, opts.End).
		WithTruncation(opts.Limit > 0 && len(events) >= opts.Limit, len(events), 0, "limit")

	return builder.Build(), nil
}

// toolRunQuery implements the runQuery tool
func (s *MCPServer) toolRunQuery(params map[string]interface{}) (*envelope.Response, error) {
	rawPeriods := stringSliceParam(params, "timeperiods")
	if len(rawPeriods) == 0 {
		return nil, errors.NewInvalidParameterError("missing required parameter: timeperiods")
	}

	timeperiods := make([]string, len(rawPeriods))
	for i, raw := range rawPeriods {
		normalized, err := timespan.ParseTimePeriod(raw)
		if err != nil {
			return nil, asDateError(err)
		}
		timeperiods[i] = normalized
	}

	statements := stringSliceParam(params, "query")
	template := stringParam(params, "template", "")

	switch {
	case template != "" && len(statements) > 0:
		return nil, errors.NewInvalidParameterError("query and template are mutually exclusive")
	case template != "":
		templateParams := make(map[string]string)
		if raw, ok := params["params"].(map[string]interface{}); ok {
			for key, value := range raw {
				templateParams[key] = fmt.Sprintf("%v", value)
			}
		}
		rendered, err := s.queries.Render(template, templateParams)
		if err != nil {
			return nil, errors.NewInvalidParameterError(err.Error())
		}
		statements = rendered
	case len(statements) == 0:
		return nil, errors.NewInvalidParameterError("either query or template is required")
	}

	ctx := context.Background()
	results, err := s.client.Query(ctx, timeperiods, statements)
	if err != nil {
		var re *aw.RemoteError
		if stderrors.As(err, &re) && re.IsBadRequest() {
			return nil, errors.NewQueryRejectedError(re.Message, err)
		}
		return nil, remoteError(err, "")
	}

	builder := envelope.New().
		Data(map[string]interface{}{
			"timeperiods": timeperiods,
			"results":     results,
		}).
		WithSource(s.client.BaseURL(), nil, nil)

	return builder.Build(), nil
}

// toolGetSettings implements the getSettings tool
func (s *MCPServer) toolGetSettings(params map[string]interface{}) (*envelope.Response, error) {
	key := stringParam(params, "key", "")

	ctx := context.Background()
	settings, err := s.client.GetSettings(ctx, key)
	if err != nil {
		return nil, remoteError(err, "")
	}

	data := map[string]interface{}{
		"settings": settings,
	}
	if key != "" {
		data["key"] = key
	}

	builder := envelope.New().
		Data(data).
		WithSource(s.client.BaseURL(), nil, nil)

	return builder.Build(), nil
}
