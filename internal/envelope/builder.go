package envelope

import (
	awerrors "awmcp/internal/errors"
)

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
		},
	}
}

// Data sets the tool-specific payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

// WithSource records the host and buckets that served the query.
func (b *Builder) WithSource(host string, buckets, skipped []string) *Builder {
	b.meta().Source = &Source{
		Host:           host,
		Buckets:        buckets,
		BucketsSkipped: skipped,
	}
	return b
}

// WithRange echoes the resolved time range.
func (b *Builder) WithRange(start, end string) *Builder {
	if start == "" && end == "" {
		return b
	}
	b.meta().Range = &Range{Start: start, End: end}
	return b
}

// WithTruncation adds truncation metadata.
func (b *Builder) WithTruncation(truncated bool, shown, total int, reason string) *Builder {
	if !truncated {
		return b
	}
	b.meta().Truncation = &Truncation{
		IsTruncated: true,
		Shown:       shown,
		Total:       total,
		Reason:      reason,
	}
	return b
}

// Warning adds a warning message.
func (b *Builder) Warning(msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Message: msg})
	return b
}

// WarningWithCode adds a warning with a code.
func (b *Builder) WarningWithCode(code, msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: msg})
	return b
}

// Error sets the error field from any error, preserving structured codes
// and hints when the error is an AwError.
func (b *Builder) Error(err error) *Builder {
	if err == nil {
		return b
	}
	ae := awerrors.From(err)
	b.resp.Error = &ErrorInfo{
		Code:    string(ae.Code),
		Message: ae.Message,
		Hint:    ae.Hint,
	}
	return b
}

// SuggestCall adds a recommended follow-up tool call.
func (b *Builder) SuggestCall(tool string, params map[string]interface{}, reason string) *Builder {
	b.resp.SuggestedNextCalls = append(b.resp.SuggestedNextCalls, SuggestedCall{
		Tool:   tool,
		Params: params,
		Reason: reason,
	})
	return b
}

// Build returns the completed response envelope.
func (b *Builder) Build() *Response {
	return b.resp
}

func (b *Builder) meta() *Meta {
	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}
	return b.resp.Meta
}

// Operational creates a simple envelope for operational tools that carry no
// source or truncation concerns.
func Operational(data interface{}) *Response {
	return &Response{
		SchemaVersion: CurrentSchemaVersion,
		Data:          data,
	}
}
