package provider

import (
	"context"
	"encoding/json"

	"github.com/RustForNeo/neoclient/pkg/transport"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// Middleware wraps a provider to add cross-cutting behavior. A layer may
// transform the call, transform or replace the result, short-circuit, or
// delegate unchanged; errors it cannot remediate must pass through
// unmodified in kind.
type Middleware interface {
	// Wrap wraps the given provider with middleware functionality.
	Wrap(next Provider) Provider
}

// MiddlewareFunc is an adapter to allow ordinary functions as middleware.
type MiddlewareFunc func(Provider) Provider

// Wrap implements the Middleware interface.
func (f MiddlewareFunc) Wrap(p Provider) Provider {
	return f(p)
}

// Chain composes middleware into one. The chain is fixed at construction:
// the first middleware is the outermost layer and sees every call before
// the rest.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(p Provider) Provider {
		// Apply in reverse so the first middleware ends up outermost.
		for i := len(middleware) - 1; i >= 0; i-- {
			p = middleware[i].Wrap(p)
		}
		return p
	})
}

// middlewareProvider is a base type for layer implementations: every method
// delegates to the wrapped provider, layers override what they intercept.
type middlewareProvider struct {
	next Provider
}

func (m *middlewareProvider) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	return m.next.Call(ctx, method, params)
}

func (m *middlewareProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	return m.next.SendTransaction(ctx, tx)
}

func (m *middlewareProvider) Subscribe(ctx context.Context, topic string, params ...interface{}) (*transport.Subscription, error) {
	return m.next.Subscribe(ctx, topic, params...)
}

func (m *middlewareProvider) Close() error {
	return m.next.Close()
}
