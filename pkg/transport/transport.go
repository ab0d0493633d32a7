// Package transport provides the connection layer for Neo JSON-RPC nodes.
//
// Three transport kinds share one call-level contract: request/response HTTP,
// persistent WebSocket and local IPC sockets. Stream transports multiplex many
// concurrent calls and all subscription pushes over a single connection, so
// responses are matched to callers by correlation identifier, never by
// arrival order. The request dispatcher owns that correlation table; the
// connection manager owns the connect/reconnect state machine; the
// subscription manager demultiplexes push notifications by subscription id.
package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/protocol"
)

// Kind identifies the base transport implementation.
type Kind string

const (
	KindHTTP      Kind = "http"
	KindWebSocket Kind = "websocket"
	KindIPC       Kind = "ipc"
)

// Transport is the call-level contract shared by all transport kinds.
// Implementations are safe for concurrent use.
type Transport interface {
	// Kind returns the transport kind.
	Kind() Kind

	// NextID returns the next correlation identifier for this connection.
	// Identifiers are unique among currently pending calls.
	NextID() uint64

	// Call sends the request and blocks until the matching response
	// arrives, the context is cancelled, or the per-call timeout elapses.
	Call(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

	// Close shuts the transport down. Pending calls fail with
	// ConnectionClosed; further calls are rejected.
	Close() error
}

// Streaming extends Transport with a push channel. Only stream transports
// (WebSocket, IPC) implement it; HTTP has no push capability.
type Streaming interface {
	Transport

	// SetNotificationSink registers the receiver for push events and
	// disconnect notifications. Must be called before Connect.
	SetNotificationSink(sink NotificationSink)

	// Connect establishes the connection and starts the read loop.
	Connect(ctx context.Context) error

	// State returns the current connection state.
	State() ConnState
}

// NotificationSink receives demultiplexed push traffic from a stream
// transport's read loop. The subscription manager implements it.
type NotificationSink interface {
	// DeliverEvent hands over one subscription push, in wire arrival order.
	DeliverEvent(subscriptionID string, payload json.RawMessage)

	// DropAll terminates every live subscription, e.g. on connection loss.
	DropAll(err error)
}

// Config is the immutable transport configuration, fixed at construction.
type Config struct {
	// Kind of transport to create.
	Kind Kind

	// Endpoint is the node URL (http/ws) or socket path (ipc).
	Endpoint string

	// RequestTimeout bounds each call when the caller's context carries
	// no earlier deadline.
	RequestTimeout time.Duration

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration

	// Reconnect controls automatic reconnection of stream transports.
	Reconnect ReconnectConfig

	// TLSInsecureSkipVerify disables certificate verification. Test use only.
	TLSInsecureSkipVerify bool

	// Logger receives transport diagnostics. Defaults to a nop logger.
	Logger logging.Logger
}

// ReconnectConfig bounds the exponential backoff applied after an
// unexpected disconnect of a stream transport.
type ReconnectConfig struct {
	// Enabled turns automatic reconnection on.
	Enabled bool

	// MaxAttempts caps consecutive failed reconnect attempts before the
	// transport gives up and stays Disconnected.
	MaxAttempts int

	// InitialDelay is the backoff before the first attempt.
	InitialDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig(kind Kind, endpoint string) Config {
	return Config{
		Kind:           kind,
		Endpoint:       endpoint,
		RequestTimeout: 30 * time.Second,
		DialTimeout:    10 * time.Second,
		Reconnect: ReconnectConfig{
			Enabled:       true,
			MaxAttempts:   10,
			InitialDelay:  500 * time.Millisecond,
			MaxDelay:      30 * time.Second,
			BackoffFactor: 2.0,
		},
		Logger: logging.NewNop(),
	}
}

// New creates a transport for the configured kind. Stream transports are
// returned unconnected; call Connect (directly or through the provider
// facade) before dispatching.
func New(cfg Config) (Transport, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.CodeTransportError, "endpoint is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	switch cfg.Kind {
	case KindHTTP:
		return newHTTPTransport(cfg)
	case KindWebSocket:
		return newStreamTransport(cfg, dialWebSocket(cfg))
	case KindIPC:
		return newStreamTransport(cfg, dialIPC(cfg))
	default:
		return nil, errors.Newf(errors.CodeTransportError, "unsupported transport kind %q", cfg.Kind)
	}
}
