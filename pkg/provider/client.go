package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/transport"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// Subscription topics Neo nodes push.
const (
	TopicBlocks       = "block_added"
	TopicTransactions = "transaction_added"
	TopicNotification = "notification_from_execution"
	TopicExecution    = "transaction_executed"
)

// ClientConfig assembles a client: the transport to dial, the middleware
// stack outermost-first, and the logger shared by all layers. Immutable
// after New.
type ClientConfig struct {
	Transport  transport.Config
	Middleware []Middleware
	Logger     logging.Logger
}

// Client is the top-level handle applications use. It owns the transport,
// the subscription routing and the composed middleware chain, and exposes
// the node's RPC surface as typed methods.
type Client struct {
	provider Provider
	tr       transport.Transport
	subs     *transport.SubscriptionManager
	lg       logging.Logger
}

// New dials the configured transport and builds the middleware chain. The
// chain's layer order is fixed for the client's lifetime.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	lg := cfg.Logger
	if lg == nil {
		lg = logging.NewNop()
	}
	if cfg.Transport.Logger == nil {
		cfg.Transport.Logger = lg
	}

	tr, err := transport.New(cfg.Transport)
	if err != nil {
		return nil, err
	}

	var subs *transport.SubscriptionManager
	if st, ok := tr.(transport.Streaming); ok {
		subs = transport.NewSubscriptionManager(lg)
		st.SetNotificationSink(subs)
		if err := st.Connect(ctx); err != nil {
			_ = tr.Close()
			return nil, err
		}
	}

	base := NewBase(tr, subs, lg)
	return &Client{
		provider: Chain(cfg.Middleware...).Wrap(base),
		tr:       tr,
		subs:     subs,
		lg:       lg,
	}, nil
}

// Call invokes a raw JSON-RPC method through the middleware chain and
// decodes the result into out. A nil out discards the result.
func (c *Client) Call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	raw, err := c.provider.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, errors.CodeProtocolViolation, "decode %s result", method)
	}
	return nil
}

// Close shuts the client down: the connection closes, in-flight calls fail
// with ProviderClosed and every subscription sequence terminates.
func (c *Client) Close() error {
	return c.provider.Close()
}

// GetBlockCount returns the current chain height.
func (c *Client) GetBlockCount(ctx context.Context) (uint32, error) {
	var count uint32
	err := c.Call(ctx, "getblockcount", nil, &count)
	return count, err
}

// GetBestBlockHash returns the hash of the chain tip.
func (c *Client) GetBestBlockHash(ctx context.Context) (types.Hash256, error) {
	var hash types.Hash256
	err := c.Call(ctx, "getbestblockhash", nil, &hash)
	return hash, err
}

// GetBlockHash returns the hash of the block at the given height.
func (c *Client) GetBlockHash(ctx context.Context, index uint32) (types.Hash256, error) {
	var hash types.Hash256
	err := c.Call(ctx, "getblockhash", []interface{}{index}, &hash)
	return hash, err
}

// GetBlock fetches a block by hash, verbose form.
func (c *Client) GetBlock(ctx context.Context, hash types.Hash256) (*types.Block, error) {
	var block types.Block
	if err := c.Call(ctx, "getblock", []interface{}{hash.String(), 1}, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// GetBlockByIndex fetches a block by height, verbose form.
func (c *Client) GetBlockByIndex(ctx context.Context, index uint32) (*types.Block, error) {
	var block types.Block
	if err := c.Call(ctx, "getblock", []interface{}{index, 1}, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// GetVersion returns the node's version and protocol configuration,
// including the network magic transactions are signed against.
func (c *Client) GetVersion(ctx context.Context) (*types.Version, error) {
	var v types.Version
	if err := c.Call(ctx, "getversion", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetConnectionCount returns the node's peer count.
func (c *Client) GetConnectionCount(ctx context.Context) (int, error) {
	var count int
	err := c.Call(ctx, "getconnectioncount", nil, &count)
	return count, err
}

// GetRawMempool returns the verified and unverified mempool hashes.
func (c *Client) GetRawMempool(ctx context.Context) (*types.RawMempool, error) {
	var pool types.RawMempool
	if err := c.Call(ctx, "getrawmempool", []interface{}{true}, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

// GetContractState returns the deployed contract record.
func (c *Client) GetContractState(ctx context.Context, hash types.Hash160) (*types.ContractState, error) {
	var state types.ContractState
	if err := c.Call(ctx, "getcontractstate", []interface{}{hash.String()}, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetApplicationLog returns the execution log of a committed transaction.
func (c *Client) GetApplicationLog(ctx context.Context, txHash types.Hash256) (*types.ApplicationLog, error) {
	var log types.ApplicationLog
	if err := c.Call(ctx, "getapplicationlog", []interface{}{txHash.String()}, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// GetUnclaimedGas returns the GAS claimable by an address.
func (c *Client) GetUnclaimedGas(ctx context.Context, addr types.Address) (*types.UnclaimedGas, error) {
	var gas types.UnclaimedGas
	if err := c.Call(ctx, "getunclaimedgas", []interface{}{string(addr)}, &gas); err != nil {
		return nil, err
	}
	return &gas, nil
}

// ValidateAddress asks the node whether an address is well-formed.
func (c *Client) ValidateAddress(ctx context.Context, addr types.Address) (*types.ValidateAddress, error) {
	var result types.ValidateAddress
	if err := c.Call(ctx, "validateaddress", []interface{}{string(addr)}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InvokeFunction test-executes a contract method without committing state.
func (c *Client) InvokeFunction(ctx context.Context, contract types.Hash160, operation string, args []interface{}, signers []types.TxSigner) (*types.InvocationResult, error) {
	if args == nil {
		args = []interface{}{}
	}
	params := []interface{}{contract.String(), operation, args, rpcSigners(signers)}
	var result types.InvocationResult
	if err := c.Call(ctx, "invokefunction", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InvokeScript test-executes a raw NeoVM script without committing state.
func (c *Client) InvokeScript(ctx context.Context, script []byte, signers []types.TxSigner) (*types.InvocationResult, error) {
	params := []interface{}{base64.StdEncoding.EncodeToString(script), rpcSigners(signers)}
	var result types.InvocationResult
	if err := c.Call(ctx, "invokescript", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CalculateNetworkFee asks the node to price a serialized transaction.
func (c *Client) CalculateNetworkFee(ctx context.Context, rawBase64 string) (types.Fixed8, error) {
	var result types.NetworkFeeResult
	if err := c.Call(ctx, "calculatenetworkfee", []interface{}{rawBase64}, &result); err != nil {
		return types.Fixed8{}, err
	}
	return result.NetworkFee, nil
}

// SendRawTransaction submits an already-serialized signed transaction.
func (c *Client) SendRawTransaction(ctx context.Context, rawBase64 string) (types.Hash256, error) {
	var ack types.SendRawTransactionResult
	if err := c.Call(ctx, "sendrawtransaction", []interface{}{rawBase64}, &ack); err != nil {
		return types.Hash256{}, err
	}
	return ack.Hash, nil
}

// SendTransaction runs a transaction through the middleware chain, letting
// the configured layers fill identity, nonce, fees and witness, and submits
// it.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) (types.Hash256, error) {
	return c.provider.SendTransaction(ctx, tx)
}

// GetRawTransaction fetches a committed transaction, verbose form.
func (c *Client) GetRawTransaction(ctx context.Context, hash types.Hash256) (*types.TxEntry, error) {
	var tx types.TxEntry
	if err := c.Call(ctx, "getrawtransaction", []interface{}{hash.String(), 1}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetTransactionHeight returns the height a transaction was committed at.
func (c *Client) GetTransactionHeight(ctx context.Context, hash types.Hash256) (uint32, error) {
	var height uint32
	err := c.Call(ctx, "gettransactionheight", []interface{}{hash.String()}, &height)
	return height, err
}

// Subscribe opens a standing subscription for an arbitrary topic.
func (c *Client) Subscribe(ctx context.Context, topic string, params ...interface{}) (*transport.Subscription, error) {
	return c.provider.Subscribe(ctx, topic, params...)
}

// SubscribeBlocks streams newly committed blocks.
func (c *Client) SubscribeBlocks(ctx context.Context) (*transport.Subscription, error) {
	return c.provider.Subscribe(ctx, TopicBlocks)
}

// SubscribeTransactions streams transactions as they enter blocks.
func (c *Client) SubscribeTransactions(ctx context.Context) (*transport.Subscription, error) {
	return c.provider.Subscribe(ctx, TopicTransactions)
}

// DefaultStack builds the canonical middleware order for submitting
// transactions: retry outermost, then nonce and fee filling, signing
// innermost so the signature covers the filled fields.
func DefaultStack(s *SignerMiddleware) []Middleware {
	return []Middleware{
		NewRetryMiddleware(DefaultRetryConfig(), nil),
		NewNonceMiddleware(),
		NewGasMiddleware(),
		s,
	}
}
