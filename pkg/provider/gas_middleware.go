package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// GasMiddleware fills missing fee fields before submission: SystemFee from
// a test execution of the script (invokescript), NetworkFee from the node's
// calculatenetworkfee. Fees already set by the caller are left alone.
type GasMiddleware struct {
	// sysFeeMargin scales the measured gas consumption to absorb state
	// drift between estimation and execution.
	sysFeeMargin decimal.Decimal
}

// NewGasMiddleware creates the fee-filling layer with a 10% system fee margin.
func NewGasMiddleware() *GasMiddleware {
	return &GasMiddleware{sysFeeMargin: decimal.NewFromFloat(1.1)}
}

// WithSystemFeeMargin overrides the estimation margin, e.g. 1.0 for exact.
func (m *GasMiddleware) WithSystemFeeMargin(margin decimal.Decimal) *GasMiddleware {
	m.sysFeeMargin = margin
	return m
}

// Wrap implements the Middleware interface.
func (m *GasMiddleware) Wrap(next Provider) Provider {
	return &gasProvider{middlewareProvider: middlewareProvider{next: next}, mw: m}
}

type gasProvider struct {
	middlewareProvider
	mw *GasMiddleware
}

func (p *gasProvider) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	if tx.SystemFee.IsZero() {
		fee, err := p.estimateSystemFee(ctx, tx)
		if err != nil {
			return types.Hash256{}, err
		}
		tx.SystemFee = fee
	}

	if tx.NetworkFee.IsZero() {
		fee, err := p.calculateNetworkFee(ctx, tx)
		if err != nil {
			return types.Hash256{}, err
		}
		tx.NetworkFee = fee
	}

	return p.next.SendTransaction(ctx, tx)
}

func (p *gasProvider) estimateSystemFee(ctx context.Context, tx *types.Transaction) (types.Fixed8, error) {
	params := []interface{}{base64.StdEncoding.EncodeToString(tx.Script), rpcSigners(tx.Signers)}
	raw, err := p.next.Call(ctx, "invokescript", params)
	if err != nil {
		return types.Fixed8{}, err
	}

	var result types.InvocationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return types.Fixed8{}, errors.Wrap(err, errors.CodeProtocolViolation, "decode invokescript result")
	}
	if result.Faulted() {
		return types.Fixed8{}, errors.Newf(errors.CodeInternalError, "script faulted during fee estimation: %s", result.Exception)
	}
	return result.GasConsumed.Mul(p.mw.sysFeeMargin), nil
}

func (p *gasProvider) calculateNetworkFee(ctx context.Context, tx *types.Transaction) (types.Fixed8, error) {
	unsigned, err := tx.UnsignedBytes()
	if err != nil {
		return types.Fixed8{}, errors.Wrap(err, errors.CodeProtocolError, "serialize transaction")
	}

	raw, err := p.next.Call(ctx, "calculatenetworkfee", []interface{}{base64.StdEncoding.EncodeToString(unsigned)})
	if err != nil {
		return types.Fixed8{}, err
	}

	var result types.NetworkFeeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return types.Fixed8{}, errors.Wrap(err, errors.CodeProtocolViolation, "decode calculatenetworkfee result")
	}
	return result.NetworkFee, nil
}

// rpcSigners renders transaction signers in the shape invoke calls take.
func rpcSigners(signers []types.TxSigner) []map[string]string {
	out := make([]map[string]string, 0, len(signers))
	for _, s := range signers {
		out = append(out, map[string]string{
			"account": s.Account.String(),
			"scopes":  s.Scopes.String(),
		})
	}
	return out
}
