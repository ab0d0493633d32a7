package provider

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RustForNeo/neoclient/pkg/errors"
)

// taggingMiddleware records its name on every call passing through.
func taggingMiddleware(name string, log *[]string, mu *sync.Mutex) Middleware {
	return MiddlewareFunc(func(next Provider) Provider {
		return &taggedProvider{middlewareProvider{next: next}, name, log, mu}
	})
}

type taggedProvider struct {
	middlewareProvider
	name string
	log  *[]string
	mu   *sync.Mutex
}

func (p *taggedProvider) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	p.mu.Lock()
	*p.log = append(*p.log, p.name)
	p.mu.Unlock()
	return p.next.Call(ctx, method, params)
}

func TestChainAppliesLayersOutermostFirst(t *testing.T) {
	var (
		mu  sync.Mutex
		log []string
	)
	base := &fakeProvider{}
	p := Chain(
		taggingMiddleware("outer", &log, &mu),
		taggingMiddleware("middle", &log, &mu),
		taggingMiddleware("inner", &log, &mu),
	).Wrap(base)

	// The order is fixed and identical for every call.
	for i := 0; i < 3; i++ {
		log = log[:0]
		_, err := p.Call(context.Background(), "getversion", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"outer", "middle", "inner"}, log)
	}
	assert.Equal(t, 3, base.callCount("getversion"))
}

func TestChainEmptyIsIdentity(t *testing.T) {
	base := &fakeProvider{}
	p := Chain().Wrap(base)
	_, err := p.Call(context.Background(), "getblockcount", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, base.callCount("getblockcount"))
}

func TestMiddlewareDelegatesUnhandledOperations(t *testing.T) {
	base := &fakeProvider{}
	var (
		mu  sync.Mutex
		log []string
	)
	p := Chain(taggingMiddleware("only", &log, &mu)).Wrap(base)

	// taggingMiddleware only overrides Call; the rest reaches the base
	// through the delegating embed.
	_, err := p.SendTransaction(context.Background(), signedTestTransaction())
	require.NoError(t, err)
	sub, err := p.Subscribe(context.Background(), TopicBlocks)
	require.NoError(t, err)
	assert.Equal(t, TopicBlocks, sub.Topic())
	require.NoError(t, p.Close())

	assert.Equal(t, 1, base.callCount("sendtransaction"))
	assert.Equal(t, 1, base.callCount("subscribe"))
	assert.True(t, base.closed)
}

func TestChainErrorsPassThroughUnchanged(t *testing.T) {
	rpcErr := errors.NewRPCError(-500, "insufficient funds", nil)
	base := &fakeProvider{
		callFn: func(context.Context, string, []interface{}) (json.RawMessage, error) {
			return nil, rpcErr
		},
	}
	var (
		mu  sync.Mutex
		log []string
	)
	p := Chain(
		taggingMiddleware("a", &log, &mu),
		taggingMiddleware("b", &log, &mu),
	).Wrap(base)

	_, err := p.Call(context.Background(), "sendrawtransaction", []interface{}{"AAA="})
	require.Error(t, err)
	assert.Same(t, rpcErr, err, "layers must not rewrap errors they do not handle")
}
