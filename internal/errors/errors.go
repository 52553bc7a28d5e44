package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// RemoteUnavailable indicates the ActivityWatch server is not running or reachable
	RemoteUnavailable ErrorCode = "REMOTE_UNAVAILABLE"
	// BucketNotFound indicates the requested bucket does not exist on the server
	BucketNotFound ErrorCode = "BUCKET_NOT_FOUND"
	// DateParseError indicates a date expression could not be interpreted
	DateParseError ErrorCode = "DATE_PARSE_ERROR"
	// InvalidParameter indicates a missing or malformed tool parameter
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// ToolNotFound indicates the requested tool is not registered
	ToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	// QueryRejected indicates the server rejected an AQL query
	QueryRejected ErrorCode = "QUERY_REJECTED"
	// ExportFailed indicates an export archive could not be written
	ExportFailed ErrorCode = "EXPORT_FAILED"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// AwError represents an awmcp error with code, message, and a suggested fix
type AwError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Hint    string      `json:"hint,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// NewAwError creates a new AwError
func NewAwError(code ErrorCode, message string, cause error) *AwError {
	return &AwError{
		Code:    code,
		Message: message,
		Hint:    GetHint(code),
		cause:   cause,
	}
}

// Error implements the error interface
func (e *AwError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AwError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *AwError) WithDetails(details interface{}) *AwError {
	e.Details = details
	return e
}

// WithHint replaces the default hint for this error
func (e *AwError) WithHint(hint string) *AwError {
	e.Hint = hint
	return e
}

// ErrorHints maps error codes to a suggested fix shown alongside the error
var ErrorHints = map[ErrorCode]string{
	RemoteUnavailable: "Check that ActivityWatch is running (aw-qt or aw-server) and reachable at the configured server_url",
	BucketNotFound:    "Call listBuckets to see the bucket IDs this server knows about",
	DateParseError:    "Use ISO dates like 2024-01-15 or phrases like 'yesterday' and 'last monday'",
	QueryRejected:     "Check the query statements; the final statement must RETURN a value",
	ConfigInvalid:     "Run 'awmcp config validate' to see which fields failed validation",
}

// GetHint returns the suggested fix for an error code, or "" when none is defined
func GetHint(code ErrorCode) string {
	return ErrorHints[code]
}

// NewInvalidParameterError creates an INVALID_PARAMETER error
func NewInvalidParameterError(message string) *AwError {
	return NewAwError(InvalidParameter, message, nil)
}

// NewToolNotFoundError creates a TOOL_NOT_FOUND error for an unregistered tool
func NewToolNotFoundError(name string) *AwError {
	return NewAwError(ToolNotFound, fmt.Sprintf("tool not found: %s", name), nil)
}

// NewDateParseError creates a DATE_PARSE_ERROR for an uninterpretable date expression
func NewDateParseError(input string, cause error) *AwError {
	return NewAwError(DateParseError, fmt.Sprintf("could not parse date %q", input), cause)
}

// NewRemoteUnavailableError creates a REMOTE_UNAVAILABLE error
func NewRemoteUnavailableError(message string, cause error) *AwError {
	return NewAwError(RemoteUnavailable, message, cause)
}

// NewBucketNotFoundError creates a BUCKET_NOT_FOUND error
func NewBucketNotFoundError(bucketID string) *AwError {
	return NewAwError(BucketNotFound, fmt.Sprintf("bucket not found: %s", bucketID), nil)
}

// NewQueryRejectedError creates a QUERY_REJECTED error
func NewQueryRejectedError(message string, cause error) *AwError {
	return NewAwError(QueryRejected, message, cause)
}

// NewExportFailedError creates an EXPORT_FAILED error
func NewExportFailedError(message string, cause error) *AwError {
	return NewAwError(ExportFailed, message, cause)
}

// NewConfigInvalidError creates a CONFIG_INVALID error for a single field
func NewConfigInvalidError(field, message string) *AwError {
	return NewAwError(ConfigInvalid, fmt.Sprintf("%s: %s", field, message), nil)
}

// NewOperationError creates an INTERNAL_ERROR wrapping an unexpected failure
func NewOperationError(message string, cause error) *AwError {
	return NewAwError(InternalError, message, cause)
}

// From converts any error into an *AwError, wrapping unknown errors as INTERNAL_ERROR
func From(err error) *AwError {
	if err == nil {
		return nil
	}
	var ae *AwError
	if stderrors.As(err, &ae) {
		return ae
	}
	return NewAwError(InternalError, err.Error(), err)
}
