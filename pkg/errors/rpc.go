package errors

import (
	"encoding/json"
	"fmt"
)

// RPCError is a well-formed failure reported by the server inside a JSON-RPC
// response. It is surfaced to the caller unchanged and never retried.
type RPCError struct {
	ErrCode    int             `json:"code"`
	ErrMessage string          `json:"message"`
	ErrData    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.ErrCode, e.ErrMessage)
}

func (e *RPCError) Code() int          { return e.ErrCode }
func (e *RPCError) Message() string    { return e.ErrMessage }
func (e *RPCError) Category() Category { return CategoryRPC }
func (e *RPCError) Unwrap() error      { return nil }

// Severity maps the server-reported code onto a local severity. Standard
// JSON-RPC codes carry registered severities; anything else is an error.
func (e *RPCError) Severity() Severity { return CodeSeverity(e.ErrCode) }

// NewRPCError creates an RPCError from a decoded wire error object.
func NewRPCError(code int, message string, data json.RawMessage) *RPCError {
	return &RPCError{ErrCode: code, ErrMessage: message, ErrData: data}
}

// IsRPCError reports whether an error chain contains a server-reported error.
func IsRPCError(err error) bool {
	return IsCategory(err, CategoryRPC)
}
