package provider

import (
	"context"
	"encoding/json"

	"golang.org/x/time/rate"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/transport"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// RateLimitMiddleware throttles outbound traffic with a token bucket,
// keeping a client inside a node's request budget. Calls wait for a token
// rather than failing, up to the caller's context deadline.
type RateLimitMiddleware struct {
	limiter *rate.Limiter
}

// NewRateLimitMiddleware allows requestsPerSecond sustained with the given
// burst headroom.
func NewRateLimitMiddleware(requestsPerSecond float64, burst int) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wrap implements the Middleware interface.
func (m *RateLimitMiddleware) Wrap(next Provider) Provider {
	return &rateLimitProvider{middlewareProvider: middlewareProvider{next: next}, mw: m}
}

type rateLimitProvider struct {
	middlewareProvider
	mw *RateLimitMiddleware
}

func (p *rateLimitProvider) wait(ctx context.Context) error {
	if err := p.mw.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, errors.CodeRateLimited, "rate limit wait")
	}
	return nil
}

func (p *rateLimitProvider) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.Call(ctx, method, params)
}

func (p *rateLimitProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	if err := p.wait(ctx); err != nil {
		return types.Hash256{}, err
	}
	return p.next.SendTransaction(ctx, tx)
}

func (p *rateLimitProvider) Subscribe(ctx context.Context, topic string, params ...interface{}) (*transport.Subscription, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.Subscribe(ctx, topic, params...)
}
