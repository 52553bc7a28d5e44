// Package envelope provides a standardized response wrapper for all MCP tool
// responses. Every tool response is wrapped in a consistent envelope that
// records where the data came from, whether the result set was trimmed,
// warnings, and suggested follow-up calls.
package envelope

// Source describes which ActivityWatch host and buckets produced the data.
type Source struct {
	Host           string   `json:"host,omitempty"`           // aw-server base URL or hostname
	Buckets        []string `json:"buckets,omitempty"`        // buckets that contributed events
	BucketsSkipped []string `json:"bucketsSkipped,omitempty"` // buckets that failed and were skipped
}

// Range echoes the resolved time range a query covered.
type Range struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Truncation describes result trimming.
type Truncation struct {
	IsTruncated bool   `json:"isTruncated"`
	Shown       int    `json:"shown,omitempty"`  // items returned
	Total       int    `json:"total,omitempty"`  // total available
	Reason      string `json:"reason,omitempty"` // "max-events", "min-duration", etc.
}

// Meta holds response metadata.
type Meta struct {
	Source     *Source     `json:"source,omitempty"`
	Range      *Range      `json:"range,omitempty"`
	Truncation *Truncation `json:"truncation,omitempty"`
}

// SuggestedCall represents a recommended follow-up tool call.
type SuggestedCall struct {
	Tool   string                 `json:"tool"`             // tool name
	Params map[string]interface{} `json:"params,omitempty"` // pre-filled parameters
	Reason string                 `json:"reason,omitempty"` // why this is suggested
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"` // machine-readable code
	Message string `json:"message"`        // human-readable message
}

// ErrorInfo is the structured error surfaced to MCP clients.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Response is the standard envelope for all MCP tool responses.
type Response struct {
	SchemaVersion      string          `json:"schemaVersion"`
	Data               interface{}     `json:"data"`
	Meta               *Meta           `json:"meta,omitempty"`
	Warnings           []Warning       `json:"warnings,omitempty"`
	Error              *ErrorInfo      `json:"error,omitempty"`
	SuggestedNextCalls []SuggestedCall `json:"suggestedNextCalls,omitempty"`
}

// IsError reports whether the envelope carries an error.
func (r *Response) IsError() bool {
	return r.Error != nil
}

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"
