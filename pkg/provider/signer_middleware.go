package provider

import (
	"context"
	"encoding/binary"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/signer"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// SignerMiddleware fills the sender identity and witness on outgoing
// transactions. Signatures cover the network magic followed by the
// transaction hash, so a transaction signed for one network cannot be
// replayed on another. Transactions that already carry witnesses pass
// through untouched.
//
// Place this layer inside any layer that mutates signed fields (nonce,
// fees): the signature must cover their final values.
type SignerMiddleware struct {
	signer signer.Signer
	magic  uint32
	scope  types.WitnessScope
}

// NewSignerMiddleware creates the signing layer for one account on the
// network identified by magic (the getversion protocol network value).
func NewSignerMiddleware(s signer.Signer, magic uint32) *SignerMiddleware {
	return &SignerMiddleware{signer: s, magic: magic, scope: types.ScopeCalledByEntry}
}

// WithScope overrides the witness scope given to filled-in senders.
func (m *SignerMiddleware) WithScope(scope types.WitnessScope) *SignerMiddleware {
	m.scope = scope
	return m
}

// Wrap implements the Middleware interface.
func (m *SignerMiddleware) Wrap(next Provider) Provider {
	return &signerProvider{middlewareProvider: middlewareProvider{next: next}, mw: m}
}

type signerProvider struct {
	middlewareProvider
	mw *SignerMiddleware
}

func (p *signerProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	if len(tx.Signers) == 0 {
		tx.Signers = []types.TxSigner{{Account: p.mw.signer.Account(), Scopes: p.mw.scope}}
	}

	if len(tx.Witnesses) == 0 {
		witness, err := p.mw.witness(tx)
		if err != nil {
			return types.Hash256{}, err
		}
		tx.Witnesses = []types.Witness{witness}
	}

	return p.next.SendTransaction(ctx, tx)
}

func (m *SignerMiddleware) witness(tx *types.Transaction) (types.Witness, error) {
	hash, err := tx.Hash()
	if err != nil {
		return types.Witness{}, errors.Wrap(err, errors.CodeSignError, "hash transaction")
	}

	payload := make([]byte, 4+len(hash))
	binary.LittleEndian.PutUint32(payload, m.magic)
	copy(payload[4:], hash[:])

	sig, err := m.signer.Sign(payload)
	if err != nil {
		return types.Witness{}, errors.Wrap(err, errors.CodeSignError, "sign transaction")
	}

	return types.Witness{
		Invocation:   invocationScript(sig),
		Verification: m.signer.VerificationScript(),
	}, nil
}

// invocationScript pushes the signature: PUSHDATA1 <len> <sig>.
func invocationScript(sig []byte) []byte {
	script := make([]byte, 0, 2+len(sig))
	script = append(script, 0x0c, byte(len(sig)))
	return append(script, sig...)
}
