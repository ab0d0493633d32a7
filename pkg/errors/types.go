// Package errors provides structured error handling for the Neo client.
// It defines error types that carry a code, category and severity so that
// middleware can classify failures without inspecting concrete types, and
// callers can distinguish transport, protocol, server and timeout failures.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category classifies an error for handling decisions. The Retry layer
// only ever retries CategoryTransport errors.
type Category string

const (
	CategoryTransport Category = "transport"
	CategoryProtocol  Category = "protocol"
	CategoryRPC       Category = "rpc"
	CategoryTimeout   Category = "timeout"
	CategoryCancelled Category = "cancelled"
	CategorySigning   Category = "signing"
	CategoryInternal  Category = "internal"
)

// Severity indicates how critical an error is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// ClientError is the interface implemented by all errors this library raises.
type ClientError interface {
	error

	// Code returns the error code; negative JSON-RPC style values.
	Code() int

	// Message returns a human-readable error message.
	Message() string

	// Category returns the error category for classification.
	Category() Category

	// Severity returns the error severity level.
	Severity() Severity

	// Unwrap returns the underlying error for error chain traversal.
	Unwrap() error
}

type baseError struct {
	code     int
	message  string
	detail   string
	category Category
	severity Severity
	cause    error
}

func (e *baseError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%s: %s", e.message, e.detail)
	}
	return e.message
}

func (e *baseError) Code() int          { return e.code }
func (e *baseError) Message() string    { return e.message }
func (e *baseError) Category() Category { return e.category }
func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) Unwrap() error      { return e.cause }

// New creates a ClientError for a registered code. Category and severity
// come from the code registry.
func New(code int, message string) ClientError {
	return &baseError{
		code:     code,
		message:  message,
		category: CodeCategory(code),
		severity: CodeSeverity(code),
	}
}

// Newf creates a ClientError with a formatted message.
func Newf(code int, format string, args ...interface{}) ClientError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error as a ClientError, preserving the cause for
// errors.Is / errors.As traversal.
func Wrap(err error, code int, message string) ClientError {
	return &baseError{
		code:     code,
		message:  message,
		category: CodeCategory(code),
		severity: CodeSeverity(code),
		cause:    err,
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code int, format string, args ...interface{}) ClientError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail returns a copy of the error with additional detail appended.
func WithDetail(err ClientError, detail string) ClientError {
	base, ok := err.(*baseError)
	if !ok {
		return Wrap(err, err.Code(), detail)
	}
	clone := *base
	if clone.detail != "" {
		clone.detail = fmt.Sprintf("%s; %s", clone.detail, detail)
	} else {
		clone.detail = detail
	}
	return &clone
}

// AsClientError extracts a ClientError from an error chain.
func AsClientError(err error) (ClientError, bool) {
	var ce ClientError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsCategory reports whether an error belongs to the given category.
func IsCategory(err error, category Category) bool {
	if ce, ok := AsClientError(err); ok {
		return ce.Category() == category
	}
	return false
}

// IsCode reports whether an error carries the given code.
func IsCode(err error, code int) bool {
	if ce, ok := AsClientError(err); ok {
		return ce.Code() == code
	}
	return false
}

// IsTimeout reports whether an error is a local request timeout.
func IsTimeout(err error) bool {
	return IsCode(err, CodeRequestTimeout) || IsCode(err, CodeConnectionTimeout)
}

// IsConnectionLost reports whether an error was raised by a dropped connection.
func IsConnectionLost(err error) bool {
	return IsCode(err, CodeConnectionLost)
}

// IsRetryable reports whether an error may be retried by the Retry layer.
// Only connection-level transport failures qualify; protocol violations,
// server-reported errors and timeouts are surfaced unchanged.
func IsRetryable(err error) bool {
	ce, ok := AsClientError(err)
	if !ok {
		return false
	}
	if ce.Category() != CategoryTransport {
		return false
	}
	// An explicitly closed transport will not come back on its own.
	return ce.Code() != CodeConnectionClosed
}
