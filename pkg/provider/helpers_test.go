package provider

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/RustForNeo/neoclient/pkg/protocol"
	"github.com/RustForNeo/neoclient/pkg/transport"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// fakeProvider is a scriptable innermost layer for middleware tests.
type fakeProvider struct {
	mu      sync.Mutex
	methods []string
	sent    []*types.Transaction

	callFn func(ctx context.Context, method string, params []interface{}) (json.RawMessage, error)
	sendFn func(ctx context.Context, tx *types.Transaction) (types.Hash256, error)
	subFn  func(ctx context.Context, topic string, params ...interface{}) (*transport.Subscription, error)

	closed bool
}

func (f *fakeProvider) record(method string) {
	f.mu.Lock()
	f.methods = append(f.methods, method)
	f.mu.Unlock()
}

func (f *fakeProvider) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.methods {
		if m == method {
			n++
		}
	}
	return n
}

func (f *fakeProvider) sentTransactions() []*types.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.Transaction, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeProvider) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	f.record(method)
	if f.callFn != nil {
		return f.callFn(ctx, method, params)
	}
	return json.RawMessage(`null`), nil
}

func (f *fakeProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	f.record("sendtransaction")
	f.mu.Lock()
	snapshot := *tx
	f.sent = append(f.sent, &snapshot)
	f.mu.Unlock()
	if f.sendFn != nil {
		return f.sendFn(ctx, tx)
	}
	return tx.Hash()
}

func (f *fakeProvider) Subscribe(ctx context.Context, topic string, params ...interface{}) (*transport.Subscription, error) {
	f.record("subscribe")
	if f.subFn != nil {
		return f.subFn(ctx, topic, params...)
	}
	mgr := transport.NewSubscriptionManager(nil)
	return mgr.Track("fake-sub", topic), nil
}

func (f *fakeProvider) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// fakeTransport is a scriptable transport.Transport for base provider tests.
type fakeTransport struct {
	nextID atomic.Uint64
	callFn func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
	closed atomic.Bool
}

func (t *fakeTransport) Kind() transport.Kind { return transport.KindHTTP }
func (t *fakeTransport) NextID() uint64       { return t.nextID.Add(1) }
func (t *fakeTransport) Close() error         { t.closed.Store(true); return nil }

func (t *fakeTransport) Call(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return t.callFn(ctx, req)
}

func okResponse(req *protocol.Request, result interface{}) (*protocol.Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &protocol.Response{JSONRPC: protocol.Version, ID: req.ID, Result: raw}, nil
}

// signedTestTransaction builds a minimal submittable transaction.
func signedTestTransaction() *types.Transaction {
	return &types.Transaction{
		Version:         0,
		Nonce:           7,
		SystemFee:       types.Fixed8FromRaw(100),
		NetworkFee:      types.Fixed8FromRaw(50),
		ValidUntilBlock: 1000,
		Signers:         []types.TxSigner{{Account: types.Hash160{1}, Scopes: types.ScopeCalledByEntry}},
		Script:          []byte{0x51},
		Witnesses:       []types.Witness{{Invocation: []byte{0x01}, Verification: []byte{0x02}}},
	}
}

// unsignedTestTransaction carries only a script, leaving every fillable
// field to the middleware layers.
func unsignedTestTransaction() *types.Transaction {
	return &types.Transaction{Script: []byte{0x51}}
}
