package errors

// JSON-RPC 2.0 standard error codes. Servers report these inside the
// error member of a response; they are surfaced to callers unchanged.
const (
	// CodeParseError indicates invalid JSON was received by the server
	CodeParseError int = -32700

	// CodeInvalidRequest indicates the JSON sent is not a valid Request object
	CodeInvalidRequest int = -32600

	// CodeMethodNotFound indicates the method does not exist / is not available
	CodeMethodNotFound int = -32601

	// CodeInvalidParams indicates invalid method parameter(s)
	CodeInvalidParams int = -32602

	// CodeInternalError indicates an internal JSON-RPC error
	CodeInternalError int = -32603
)

// Client-side error codes. These never travel on the wire; they classify
// failures raised locally by the transport, dispatcher and provider layers.
const (
	// Transport errors (-33000 to -33099)
	CodeTransportError    int = -33000 // Generic transport error
	CodeConnectionRefused int = -33001 // Endpoint refused the connection
	CodeConnectionReset   int = -33002 // Peer reset an established connection
	CodeConnectionTimeout int = -33003 // Connect or I/O deadline exceeded
	CodeConnectionClosed  int = -33004 // Operation on an explicitly closed transport
	CodeConnectionLost    int = -33005 // Established connection dropped mid-flight

	// Protocol errors (-33100 to -33199)
	CodeProtocolError     int = -33100 // Generic protocol error
	CodeProtocolViolation int = -33101 // Malformed or unexpected frame
	CodeVersionMismatch   int = -33102 // JSON-RPC version mismatch

	// Dispatch errors (-33200 to -33299)
	CodeRequestTimeout int = -33200 // No response before the per-call deadline
	CodeProviderClosed int = -33201 // Provider shut down with the call in flight
	CodeRateLimited    int = -33202 // Local rate limit refused the call

	// Subscription errors (-33300 to -33399)
	CodeSubscriptionDead    int = -33300 // Subscription terminated by connection loss
	CodeSubscriptionInvalid int = -33301 // Unknown or already removed subscription id

	// Signing errors (-33400 to -33499)
	CodeSignError int = -33400 // Signer backend failed to produce a signature
)

// codeInfo provides the name, category and severity for a registered code.
type codeInfo struct {
	Name     string
	Category Category
	Severity Severity
}

var codeRegistry = map[int]codeInfo{
	CodeParseError:     {"ParseError", CategoryRPC, SeverityError},
	CodeInvalidRequest: {"InvalidRequest", CategoryRPC, SeverityError},
	CodeMethodNotFound: {"MethodNotFound", CategoryRPC, SeverityError},
	CodeInvalidParams:  {"InvalidParams", CategoryRPC, SeverityError},
	CodeInternalError:  {"InternalError", CategoryRPC, SeverityError},

	CodeTransportError:    {"TransportError", CategoryTransport, SeverityError},
	CodeConnectionRefused: {"ConnectionRefused", CategoryTransport, SeverityError},
	CodeConnectionReset:   {"ConnectionReset", CategoryTransport, SeverityError},
	CodeConnectionTimeout: {"ConnectionTimeout", CategoryTransport, SeverityError},
	CodeConnectionClosed:  {"ConnectionClosed", CategoryTransport, SeverityWarning},
	CodeConnectionLost:    {"ConnectionLost", CategoryTransport, SeverityError},

	CodeProtocolError:     {"ProtocolError", CategoryProtocol, SeverityError},
	CodeProtocolViolation: {"ProtocolViolation", CategoryProtocol, SeverityError},
	CodeVersionMismatch:   {"VersionMismatch", CategoryProtocol, SeverityCritical},

	CodeRequestTimeout: {"RequestTimeout", CategoryTimeout, SeverityError},
	CodeProviderClosed: {"ProviderClosed", CategoryCancelled, SeverityWarning},
	CodeRateLimited:    {"RateLimited", CategoryTransport, SeverityWarning},

	CodeSubscriptionDead:    {"SubscriptionDead", CategoryTransport, SeverityWarning},
	CodeSubscriptionInvalid: {"SubscriptionInvalid", CategoryProtocol, SeverityError},

	CodeSignError: {"SignError", CategorySigning, SeverityError},
}

// CodeName returns the registered name of an error code.
func CodeName(code int) string {
	if info, ok := codeRegistry[code]; ok {
		return info.Name
	}
	return "UnknownError"
}

// CodeCategory returns the category of a registered error code.
func CodeCategory(code int) Category {
	if info, ok := codeRegistry[code]; ok {
		return info.Category
	}
	return CategoryInternal
}

// CodeSeverity returns the severity of a registered error code.
func CodeSeverity(code int) Severity {
	if info, ok := codeRegistry[code]; ok {
		return info.Severity
	}
	return SeverityError
}
