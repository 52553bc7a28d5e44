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

// Param readers for tools/call arguments. JSON numbers always decode as
// float64, so numeric params go through the float64 assertion.

func stringParam(params map[string]interface{}, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func floatParam(params map[string]interface{}, key string, fallback float64) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return fallback
}

func boolParam(params map[string]interface{}, key string, fallback bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return fallback
}

func stringSliceParam(params map[string]interface{}, key string) []string {
	raw, ok := params[key].([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// resolveRange parses the start/end params of a tool call. A missing or
// unparseable start surfaces as DATE_PARSE_ERROR, never a silent default.
func resolveRange(params map[string]interface{}) (timespan.Range, error) {
	start, _ := params["start"].(string)
	end, _ := params["end"].(string)

	r, err := timespan.ParseRange(start, end)
	if err != nil {
		return timespan.Range{}, asDateError(err)
	}
	return r, nil
}

// resolveEventOptions builds the fetch options for single-bucket tools.
// start expands to its full day when end is missing; a lone end is parsed
// as a bare instant.
func resolveEventOptions(params map[string]interface{}, defaultLimit int) (aw.EventOptions, error) {
	opts := aw.EventOptions{Limit: intParam(params, "limit", defaultLimit)}

	start, _ := params["start"].(string)
	end, _ := params["end"].(string)
	switch {
	case start != "":
		r, err := timespan.ParseRange(start, end)
		if err != nil {
			return aw.EventOptions{}, asDateError(err)
		}
		opts.Start = r.StartISO()
		opts.End = r.EndISO()
	case end != "":
		t, err := timespan.ParseInstant(end)
		if err != nil {
			return aw.EventOptions{}, asDateError(err)
		}
		opts.End = timespan.FormatISO(t)
	}
	return opts, nil
}

// asDateError converts timespan parse failures into the structured taxonomy.
func asDateError(err error) error {
	var pe *timespan.ParseError
	if stderrors.As(err, &pe) {
		return errors.NewDateParseError(pe.Input, pe.Unwrap())
	}
	return err
}

// remoteError converts transport failures into the structured taxonomy. A
// 404 names the offending bucket when the caller knows one.
func remoteError(err error, bucketID string) error {
	var re *aw.RemoteError
	if !stderrors.As(err, &re) {
		return err
	}
	if re.IsNotFound() && bucketID != "" {
		return errors.NewBucketNotFoundError(bucketID)
	}
	if re.IsUnreachable() {
		return errors.NewRemoteUnavailableError("ActivityWatch server is unreachable", err)
	}
	return errors.NewRemoteUnavailableError(fmt.Sprintf("ActivityWatch request failed: %s", re.Message), err)
}

// sweepWindowEvents fetches events from every window bucket for the range.
// Individual bucket failures are recorded on the result, not returned; only
// the initial bucket listing can fail the sweep outright.
func (s *MCPServer) sweepWindowEvents(ctx context.Context, r timespan.Range) (aw.SweepResult, error) {
	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return aw.SweepResult{}, remoteError(err, "")
	}

	windows := aw.WindowBuckets(buckets)
	return aw.SweepEvents(ctx, s.client, windows, aw.EventOptions{
		Start: r.StartISO(),
		End:   r.EndISO(),
	}), nil
}

// addSkipWarnings surfaces each skipped bucket as an envelope warning.
func addSkipWarnings(b *envelope.Builder, skipped []aw.SkippedBucket) {
	for _, sb := range skipped {
		b.WarningWithCode("BUCKET_SKIPPED", fmt.Sprintf("bucket %s skipped: %v", sb.BucketID, sb.Err))
	}
}
