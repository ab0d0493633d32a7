package types

import "encoding/json"

// Version is the result of the getversion call.
type Version struct {
	TCPPort   int             `json:"tcpport"`
	WSPort    int             `json:"wsport,omitempty"`
	Nonce     uint32          `json:"nonce"`
	UserAgent string          `json:"useragent"`
	Protocol  ProtocolConfig  `json:"protocol"`
	Extra     json.RawMessage `json:"-"`
}

// ProtocolConfig is the protocol section of getversion, carrying the network
// magic used in replay-protected signing.
type ProtocolConfig struct {
	Network                     uint32 `json:"network"`
	ValidatorsCount             int    `json:"validatorscount"`
	MillisecondsPerBlock        int    `json:"msperblock"`
	MaxTransactionsPerBlock     int    `json:"maxtransactionsperblock"`
	MaxValidUntilBlockIncrement uint32 `json:"maxvaliduntilblockincrement"`
	AddressVersion              byte   `json:"addressversion"`
}

// Block is a block header plus transaction hashes, the verbose=1 getblock shape.
type Block struct {
	Hash              Hash256   `json:"hash"`
	Size              int       `json:"size"`
	Version           int       `json:"version"`
	PreviousBlockHash Hash256   `json:"previousblockhash"`
	MerkleRoot        Hash256   `json:"merkleroot"`
	Time              uint64    `json:"time"`
	Index             uint32    `json:"index"`
	NextConsensus     Address   `json:"nextconsensus"`
	Transactions      []TxEntry `json:"tx,omitempty"`
}

// TxEntry is the per-transaction record inside a verbose block.
type TxEntry struct {
	Hash            Hash256 `json:"hash"`
	Size            int     `json:"size"`
	Version         int     `json:"version"`
	Nonce           uint32  `json:"nonce"`
	Sender          Address `json:"sender"`
	SystemFee       Fixed8  `json:"sysfee"`
	NetworkFee      Fixed8  `json:"netfee"`
	ValidUntilBlock uint32  `json:"validuntilblock"`
	Script          string  `json:"script"`
}

// ValidateAddress is the result of the validateaddress call.
type ValidateAddress struct {
	Address Address `json:"address"`
	IsValid bool    `json:"isvalid"`
}

// StackItem is a loosely typed NeoVM stack item from invocation results.
// Value stays raw because its shape depends on Type.
type StackItem struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// InvocationResult is the result of invokefunction / invokescript.
type InvocationResult struct {
	Script      string      `json:"script"`
	State       string      `json:"state"`
	GasConsumed Fixed8      `json:"gasconsumed"`
	Exception   string      `json:"exception,omitempty"`
	Stack       []StackItem `json:"stack"`
	Session     string      `json:"session,omitempty"`
}

// Faulted reports whether script execution halted with an exception.
func (r *InvocationResult) Faulted() bool { return r.State == "FAULT" }

// ApplicationLog is the execution log of a committed transaction.
type ApplicationLog struct {
	TxID       Hash256     `json:"txid"`
	Executions []Execution `json:"executions"`
}

// Execution is one trigger's execution record in an application log.
type Execution struct {
	Trigger       string          `json:"trigger"`
	VMState       string          `json:"vmstate"`
	GasConsumed   Fixed8          `json:"gasconsumed"`
	Stack         []StackItem     `json:"stack"`
	Notifications json.RawMessage `json:"notifications,omitempty"`
}

// UnclaimedGas is the result of the getunclaimedgas call.
type UnclaimedGas struct {
	Unclaimed Fixed8  `json:"unclaimed"`
	Address   Address `json:"address"`
}

// RawMempool is the verbose getrawmempool result.
type RawMempool struct {
	Height     uint32    `json:"height"`
	Verified   []Hash256 `json:"verified"`
	Unverified []Hash256 `json:"unverified"`
}

// ContractState is the deployed-contract record from getcontractstate,
// with the manifest kept raw.
type ContractState struct {
	ID       int             `json:"id"`
	Hash     Hash160         `json:"hash"`
	NEF      json.RawMessage `json:"nef"`
	Manifest json.RawMessage `json:"manifest"`
}

// SendRawTransactionResult is the acknowledgment of sendrawtransaction.
type SendRawTransactionResult struct {
	Hash Hash256 `json:"hash"`
}

// NetworkFeeResult is the result of calculatenetworkfee.
type NetworkFeeResult struct {
	NetworkFee Fixed8 `json:"networkfee"`
}
