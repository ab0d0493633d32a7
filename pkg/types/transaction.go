package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

// WitnessScope restricts where a signer's witness is valid.
type WitnessScope byte

const (
	ScopeNone            WitnessScope = 0x00
	ScopeCalledByEntry   WitnessScope = 0x01
	ScopeCustomContracts WitnessScope = 0x10
	ScopeCustomGroups    WitnessScope = 0x20
	ScopeGlobal          WitnessScope = 0x80
)

// String renders the scope the way the RPC layer spells it.
func (s WitnessScope) String() string {
	switch s {
	case ScopeNone:
		return "None"
	case ScopeGlobal:
		return "Global"
	}
	var parts []string
	if s&ScopeCalledByEntry != 0 {
		parts = append(parts, "CalledByEntry")
	}
	if s&ScopeCustomContracts != 0 {
		parts = append(parts, "CustomContracts")
	}
	if s&ScopeCustomGroups != 0 {
		parts = append(parts, "CustomGroups")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("WitnessScope(0x%02x)", byte(s))
	}
	return strings.Join(parts, ",")
}

// TxSigner binds an account's script hash to a witness scope on a transaction.
type TxSigner struct {
	Account Hash160      `json:"account"`
	Scopes  WitnessScope `json:"scopes"`
}

// Witness is the invocation/verification script pair proving a signer
// authorized the transaction.
type Witness struct {
	Invocation   []byte `json:"invocation"`
	Verification []byte `json:"verification"`
}

// Transaction is a Neo N3 transaction as submitted over RPC. Fee amounts are
// Fixed8; Script is the raw NeoVM script. A transaction is filled in stages:
// the application supplies the script, the signer layer fills Signers and
// Witnesses, the nonce layer fills Nonce and the gas layer fills the fees.
type Transaction struct {
	Version         byte       `json:"version"`
	Nonce           uint32     `json:"nonce"`
	SystemFee       Fixed8     `json:"sysfee"`
	NetworkFee      Fixed8     `json:"netfee"`
	ValidUntilBlock uint32     `json:"validuntilblock"`
	Signers         []TxSigner `json:"signers"`
	Script          []byte     `json:"script"`
	Witnesses       []Witness  `json:"witnesses"`
}

// Sender returns the script hash paying the fees: the first signer.
func (tx *Transaction) Sender() (Hash160, bool) {
	if len(tx.Signers) == 0 {
		return Hash160{}, false
	}
	return tx.Signers[0].Account, true
}

// UnsignedBytes serializes the fields covered by a signature, in wire order.
func (tx *Transaction) UnsignedBytes() ([]byte, error) {
	if len(tx.Script) == 0 {
		return nil, fmt.Errorf("transaction has no script")
	}

	var buf bytes.Buffer
	buf.WriteByte(tx.Version)
	writeUint32(&buf, tx.Nonce)
	writeInt64(&buf, tx.SystemFee.Raw())
	writeInt64(&buf, tx.NetworkFee.Raw())
	writeUint32(&buf, tx.ValidUntilBlock)

	writeVarInt(&buf, uint64(len(tx.Signers)))
	for _, s := range tx.Signers {
		buf.Write(s.Account[:])
		buf.WriteByte(byte(s.Scopes))
	}

	// Attributes are not modeled; always an empty list.
	writeVarInt(&buf, 0)

	writeVarBytes(&buf, tx.Script)
	return buf.Bytes(), nil
}

// Hash returns the transaction hash: sha256 over the unsigned serialization.
func (tx *Transaction) Hash() (Hash256, error) {
	unsigned, err := tx.UnsignedBytes()
	if err != nil {
		return Hash256{}, err
	}
	return Hash256(sha256.Sum256(unsigned)), nil
}

// RawBase64 serializes the full signed transaction for sendrawtransaction.
func (tx *Transaction) RawBase64() (string, error) {
	unsigned, err := tx.UnsignedBytes()
	if err != nil {
		return "", err
	}
	if len(tx.Witnesses) == 0 {
		return "", fmt.Errorf("transaction has no witnesses")
	}

	var buf bytes.Buffer
	buf.Write(unsigned)
	writeVarInt(&buf, uint64(len(tx.Witnesses)))
	for _, w := range tx.Witnesses {
		writeVarBytes(&buf, w.Invocation)
		writeVarBytes(&buf, w.Verification)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func writeVarInt(buf *bytes.Buffer, v uint64) {
	switch {
	case v < 0xFD:
		buf.WriteByte(byte(v))
	case v <= 0xFFFF:
		buf.WriteByte(0xFD)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		buf.Write(b[:])
	case v <= 0xFFFFFFFF:
		buf.WriteByte(0xFE)
		writeUint32(buf, uint32(v))
	default:
		buf.WriteByte(0xFF)
		writeInt64(buf, int64(v))
	}
}

func writeVarBytes(buf *bytes.Buffer, b []byte) {
	writeVarInt(buf, uint64(len(b)))
	buf.Write(b)
}
