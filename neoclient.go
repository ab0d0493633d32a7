package neoclient

import (
	"context"

	"github.com/RustForNeo/neoclient/pkg/provider"
	"github.com/RustForNeo/neoclient/pkg/signer"
	"github.com/RustForNeo/neoclient/pkg/transport"
)

// Version represents the current version of the client library.
const Version = "1.0.0"

// These exports provide direct access to the core components.
var (
	// NewClient creates a client from an explicit configuration.
	NewClient = provider.New

	// DefaultTransportConfig returns the production transport defaults.
	DefaultTransportConfig = transport.DefaultConfig

	// NewSigner creates a transaction signer from a generated P-256 key.
	NewSigner = signer.GenerateLocalSigner

	// NewSignerFromHex creates a transaction signer from a hex-encoded
	// private key scalar.
	NewSignerFromHex = signer.LocalSignerFromHex

	// DefaultStack builds the canonical transaction middleware order.
	DefaultStack = provider.DefaultStack
)

// Client is the top-level handle applications use.
type Client = provider.Client

// ClientConfig assembles a client.
type ClientConfig = provider.ClientConfig

// Subscription topics Neo nodes push.
const (
	TopicBlocks       = provider.TopicBlocks
	TopicTransactions = provider.TopicTransactions
	TopicNotification = provider.TopicNotification
	TopicExecution    = provider.TopicExecution
)

// NewHTTPClient connects to a node over request/response HTTP. HTTP
// clients cannot subscribe; use NewWebSocketClient for push events.
func NewHTTPClient(ctx context.Context, endpoint string, middleware ...provider.Middleware) (*Client, error) {
	return provider.New(ctx, provider.ClientConfig{
		Transport:  transport.DefaultConfig(transport.KindHTTP, endpoint),
		Middleware: middleware,
	})
}

// NewWebSocketClient connects to a node over a persistent WebSocket with
// automatic reconnection.
func NewWebSocketClient(ctx context.Context, endpoint string, middleware ...provider.Middleware) (*Client, error) {
	return provider.New(ctx, provider.ClientConfig{
		Transport:  transport.DefaultConfig(transport.KindWebSocket, endpoint),
		Middleware: middleware,
	})
}

// NewIPCClient connects to a node over a local socket.
func NewIPCClient(ctx context.Context, socketPath string, middleware ...provider.Middleware) (*Client, error) {
	return provider.New(ctx, provider.ClientConfig{
		Transport:  transport.DefaultConfig(transport.KindIPC, socketPath),
		Middleware: middleware,
	})
}
