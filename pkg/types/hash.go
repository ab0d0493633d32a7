// Package types holds the Neo domain types shared by the protocol codec,
// the provider surface and the middleware layers.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/ripemd160" // #nosec G507 -- required by the chain's script hash format
)

// Hash160 is a 20-byte script hash identifying an account or contract.
// The array holds the bytes in serialization order; the hex form used by
// the RPC layer is byte-reversed, which String and the JSON codecs apply.
type Hash160 [20]byte

// Hash256 is a 32-byte hash identifying a block or transaction, stored in
// serialization order like Hash160.
type Hash256 [32]byte

// Hash160FromString parses the RPC hex form, with or without the 0x prefix.
func Hash160FromString(s string) (Hash160, error) {
	var h Hash160
	b, err := decodeHexHash(s, len(h))
	if err != nil {
		return h, fmt.Errorf("invalid Hash160 %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

// Hash256FromString parses the RPC hex form, with or without the 0x prefix.
func Hash256FromString(s string) (Hash256, error) {
	var h Hash256
	b, err := decodeHexHash(s, len(h))
	if err != nil {
		return h, fmt.Errorf("invalid Hash256 %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

func decodeHexHash(s string, size int) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("expected %d bytes, got %d", size, len(b))
	}
	return reverseBytes(b), nil
}

func reverseBytes(b []byte) []byte {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// ScriptHash computes the Hash160 of a script: RIPEMD-160 over SHA-256.
func ScriptHash(script []byte) Hash160 {
	sha := sha256.Sum256(script)
	rip := ripemd160.New()
	_, _ = rip.Write(sha[:])
	var h Hash160
	copy(h[:], rip.Sum(nil))
	return h
}

// String renders the byte-reversed RPC hex form with the 0x prefix.
func (h Hash160) String() string {
	return "0x" + hex.EncodeToString(reverseBytes(append([]byte{}, h[:]...)))
}

// String renders the byte-reversed RPC hex form with the 0x prefix.
func (h Hash256) String() string {
	return "0x" + hex.EncodeToString(reverseBytes(append([]byte{}, h[:]...)))
}

// IsZero reports whether the hash is all zero.
func (h Hash160) IsZero() bool { return h == Hash160{} }
func (h Hash256) IsZero() bool { return h == Hash256{} }

func (h Hash160) MarshalJSON() ([]byte, error) { return json.Marshal(h.String()) }
func (h Hash256) MarshalJSON() ([]byte, error) { return json.Marshal(h.String()) }

func (h *Hash160) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Hash160FromString(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (h *Hash256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Hash256FromString(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Address is a base58-check encoded Neo address. Resolution between
// addresses and script hashes is a codec concern outside this layer;
// the provider passes addresses through verbatim.
type Address string
