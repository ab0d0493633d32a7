package provider

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// defaultValidUntilOffset is how many blocks a filled-in transaction stays
// valid past the current height.
const defaultValidUntilOffset = 100

// NonceMiddleware assigns strictly increasing nonces per sender and fills
// ValidUntilBlock from the current chain height. Concurrent sends from the
// same sender are serialized across the assign-then-submit critical
// section, so two in-flight transactions can never collide on a nonce.
type NonceMiddleware struct {
	mu      sync.Mutex
	senders map[types.Hash160]*senderState

	// initGroup collapses concurrent height lookups during first use
	// into one RPC.
	initGroup singleflight.Group

	validUntilOffset uint32
}

type senderState struct {
	mu   sync.Mutex
	next uint32
	init bool
}

// NewNonceMiddleware creates the nonce-tracking layer.
func NewNonceMiddleware() *NonceMiddleware {
	return &NonceMiddleware{
		senders:          make(map[types.Hash160]*senderState),
		validUntilOffset: defaultValidUntilOffset,
	}
}

// Wrap implements the Middleware interface.
func (m *NonceMiddleware) Wrap(next Provider) Provider {
	return &nonceProvider{middlewareProvider: middlewareProvider{next: next}, mw: m}
}

type nonceProvider struct {
	middlewareProvider
	mw *NonceMiddleware
}

func (p *nonceProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	// Unsigned identity: the signer layer further in fills it. Keyed by
	// the zero hash so such sends still get non-colliding nonces.
	sender, _ := tx.Sender()
	st := p.mw.sender(sender)

	// Hold the sender's lock across submit: per-sender sends are strictly
	// serialized.
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.init {
		height, err := p.chainHeight(ctx, sender)
		if err != nil {
			return types.Hash256{}, err
		}
		st.next = height
		st.init = true
	}

	assigned := tx.Nonce == 0
	if assigned {
		tx.Nonce = st.next
	}
	if tx.ValidUntilBlock == 0 {
		height, err := p.chainHeight(ctx, sender)
		if err != nil {
			return types.Hash256{}, err
		}
		tx.ValidUntilBlock = height + p.mw.validUntilOffset
	}

	hash, err := p.next.SendTransaction(ctx, tx)
	if err != nil {
		return types.Hash256{}, err
	}
	if assigned {
		st.next = tx.Nonce + 1
	}
	return hash, nil
}

func (p *nonceProvider) chainHeight(ctx context.Context, sender types.Hash160) (uint32, error) {
	v, err, _ := p.mw.initGroup.Do(sender.String(), func() (interface{}, error) {
		raw, err := p.next.Call(ctx, "getblockcount", nil)
		if err != nil {
			return nil, err
		}
		var count uint32
		if err := json.Unmarshal(raw, &count); err != nil {
			return nil, errors.Wrap(err, errors.CodeProtocolViolation, "decode getblockcount result")
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

func (m *NonceMiddleware) sender(account types.Hash160) *senderState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.senders[account]
	if !ok {
		st = &senderState{}
		m.senders[account] = st
	}
	return st
}
