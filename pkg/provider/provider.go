// Package provider exposes the call surface applications use to talk to a
// Neo node: a base provider bound to one transport, a middleware chain that
// layers cross-cutting behaviors around it, and a typed client facade.
package provider

import (
	"context"
	"encoding/json"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/protocol"
	"github.com/RustForNeo/neoclient/pkg/transport"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// Provider is the uniform call surface shared by the base provider and
// every middleware layer. Implementations are safe for concurrent use.
type Provider interface {
	// Call invokes a JSON-RPC method and returns the raw result payload.
	// Server-reported failures surface as *errors.RPCError.
	Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error)

	// SendTransaction submits a transaction and returns its hash. Layers
	// upstream may fill missing fields (sender, witness, nonce, fees)
	// before the submission reaches the node.
	SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error)

	// Subscribe opens a standing subscription for a topic. Only providers
	// backed by a stream transport support it.
	Subscribe(ctx context.Context, topic string, params ...interface{}) (*transport.Subscription, error)

	// Close shuts the provider down: pending calls fail with
	// ProviderClosed and all subscription sequences terminate.
	Close() error
}

// baseProvider is the innermost layer: it encodes calls for its transport
// and tracks subscriptions for stream transports.
type baseProvider struct {
	tr   transport.Transport
	subs *transport.SubscriptionManager
	lg   logging.Logger
}

// NewBase binds a provider to a transport. subs may be nil for transports
// without a push channel; Subscribe then fails.
func NewBase(tr transport.Transport, subs *transport.SubscriptionManager, lg logging.Logger) Provider {
	if lg == nil {
		lg = logging.NewNop()
	}
	return &baseProvider{tr: tr, subs: subs, lg: lg.Named("provider")}
}

func (p *baseProvider) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req, err := protocol.NewRequest(p.tr.NextID(), method, params)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeProtocolError, "encode %s params", method)
	}

	resp, err := p.tr.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, errors.NewRPCError(resp.Error.Code, resp.Error.Message, resp.Error.Data)
	}
	return resp.Result, nil
}

func (p *baseProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	raw, err := tx.RawBase64()
	if err != nil {
		return types.Hash256{}, errors.Wrap(err, errors.CodeProtocolError, "serialize transaction")
	}

	result, err := p.Call(ctx, "sendrawtransaction", []interface{}{raw})
	if err != nil {
		return types.Hash256{}, err
	}

	var ack types.SendRawTransactionResult
	if err := json.Unmarshal(result, &ack); err != nil {
		return types.Hash256{}, errors.Wrap(err, errors.CodeProtocolViolation, "decode sendrawtransaction result")
	}
	if !ack.Hash.IsZero() {
		return ack.Hash, nil
	}
	// Older nodes acknowledge without echoing the hash.
	return tx.Hash()
}

func (p *baseProvider) Subscribe(ctx context.Context, topic string, params ...interface{}) (*transport.Subscription, error) {
	if p.subs == nil {
		return nil, errors.Newf(errors.CodeSubscriptionInvalid, "%s transport has no push channel", p.tr.Kind())
	}

	callParams := append([]interface{}{topic}, params...)
	result, err := p.Call(ctx, protocol.MethodSubscribe, callParams)
	if err != nil {
		return nil, err
	}

	var serverID string
	if err := json.Unmarshal(result, &serverID); err != nil || serverID == "" {
		return nil, errors.New(errors.CodeProtocolViolation, "subscribe result is not a subscription id")
	}

	sub := p.subs.Track(serverID, topic)
	sub.SetUnsubscriber(func(ctx context.Context) error {
		defer p.subs.Remove(serverID)
		_, err := p.Call(ctx, protocol.MethodUnsubscribe, []interface{}{serverID})
		return err
	})
	p.lg.Debug("subscribed", "topic", topic, "subscription", serverID)
	return sub, nil
}

func (p *baseProvider) Close() error {
	return p.tr.Close()
}
