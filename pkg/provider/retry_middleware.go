package provider

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// RetryConfig bounds the retry layer.
type RetryConfig struct {
	// MaxRetries is the number of re-issues after the first attempt.
	MaxRetries int

	// InitialDelay is the backoff before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64

	// CircuitBreaker stops issuing calls after repeated failures.
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig tunes the failure-tripped breaker.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	CooldownPeriod   time.Duration
}

// DefaultRetryConfig returns production defaults: 2 retries, 100ms initial
// backoff doubling to at most 2s, breaker tripping after 5 failures.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			SuccessThreshold: 2,
			CooldownPeriod:   10 * time.Second,
		},
	}
}

// RetryMiddleware re-issues read calls a bounded number of times on
// transient transport errors, with exponential backoff and an optional
// circuit breaker. Transaction submission is never retried: a submission
// whose response was lost may still have been committed, and re-issuing
// it is not provably side-effect-free. Subscriptions create server state
// and are likewise submitted once.
type RetryMiddleware struct {
	cfg     RetryConfig
	breaker *circuitBreaker
	lg      logging.Logger
}

// NewRetryMiddleware creates the retry layer.
func NewRetryMiddleware(cfg RetryConfig, lg logging.Logger) *RetryMiddleware {
	if lg == nil {
		lg = logging.NewNop()
	}
	m := &RetryMiddleware{cfg: cfg, lg: lg.Named("retry")}
	if cfg.CircuitBreaker.Enabled {
		m.breaker = newCircuitBreaker(cfg.CircuitBreaker)
	}
	return m
}

// Wrap implements the Middleware interface.
func (m *RetryMiddleware) Wrap(next Provider) Provider {
	return &retryProvider{middlewareProvider: middlewareProvider{next: next}, mw: m}
}

type retryProvider struct {
	middlewareProvider
	mw *RetryMiddleware
}

func (p *retryProvider) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	cfg := p.mw.cfg

	if p.mw.breaker != nil && !p.mw.breaker.allow() {
		return nil, errors.Newf(errors.CodeTransportError, "circuit breaker open for %s", method)
	}

	var lastErr error
	attempts := cfg.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if attempt > 0 {
			delay := retryBackoff(attempt, cfg)
			p.mw.lg.Debug("retrying call", "method", method, "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := p.next.Call(ctx, method, params)
		if err == nil {
			p.mw.recordSuccess()
			return result, nil
		}
		lastErr = err
		if errors.IsCategory(err, errors.CategoryTransport) {
			p.mw.recordFailure()
		}

		if !errors.IsRetryable(err) {
			return nil, err
		}
	}

	p.mw.lg.Warn("retries exhausted", "method", method, "attempts", attempts, "error", lastErr)
	return nil, lastErr
}

func (p *retryProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	if p.mw.breaker != nil && !p.mw.breaker.allow() {
		return types.Hash256{}, errors.New(errors.CodeTransportError, "circuit breaker open for transaction submission")
	}

	hash, err := p.next.SendTransaction(ctx, tx)
	if err != nil {
		if errors.IsCategory(err, errors.CategoryTransport) {
			p.mw.recordFailure()
		}
		return types.Hash256{}, err
	}
	p.mw.recordSuccess()
	return hash, nil
}

func (m *RetryMiddleware) recordSuccess() {
	if m.breaker != nil {
		m.breaker.recordSuccess()
	}
}

func (m *RetryMiddleware) recordFailure() {
	if m.breaker != nil {
		m.breaker.recordFailure()
	}
}

// retryBackoff is exponential with a cap and 10% jitter.
func retryBackoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if max := float64(cfg.MaxDelay); delay > max {
		delay = max
	}
	delay += delay * 0.1 * (rand.Float64()*2 - 1)
	return time.Duration(delay)
}

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// circuitBreaker trips open after consecutive transport failures and
// probes the backend again after a cooldown. Server-side RPC rejections
// do not count toward the threshold.
type circuitBreaker struct {
	cfg CircuitBreakerConfig

	mu          sync.Mutex
	state       breakerState
	failures    int
	successes   int
	lastFailure time.Time
}

func newCircuitBreaker(cfg CircuitBreakerConfig) *circuitBreaker {
	return &circuitBreaker{cfg: cfg, state: breakerClosed}
}

func (cb *circuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed, breakerHalfOpen:
		return true
	case breakerOpen:
		if time.Since(cb.lastFailure) > cb.cfg.CooldownPeriod {
			cb.state = breakerHalfOpen
			cb.successes = 0
			return true
		}
		return false
	}
	return false
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state == breakerHalfOpen {
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = breakerClosed
		}
	}
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = time.Now()
	cb.failures++

	if cb.state == breakerHalfOpen {
		cb.state = breakerOpen
		return
	}
	if cb.failures >= cb.cfg.FailureThreshold {
		cb.state = breakerOpen
	}
}
