package types

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash256RoundTrip(t *testing.T) {
	const s = "0x2f059118c38f1e04cbfae3ff47dcb10e96bdbf8d6d8a1b35b41fbb03b8bf7f72"
	h, err := Hash256FromString(s)
	require.NoError(t, err)
	assert.Equal(t, s, h.String())

	// Without the 0x prefix.
	h2, err := Hash256FromString(s[2:])
	require.NoError(t, err)
	assert.Equal(t, h, h2)
}

func TestHash160HexIsByteReversed(t *testing.T) {
	var h Hash160
	for i := range h {
		h[i] = byte(i + 1)
	}
	// Hex digits run from the last array byte to the first.
	assert.Equal(t, "0x14131211100f0e0d0c0b0a090807060504030201", h.String())

	parsed, err := Hash160FromString("0x14131211100f0e0d0c0b0a090807060504030201")
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestHash256HexIsByteReversed(t *testing.T) {
	var h Hash256
	h[0] = 0xaa
	h[31] = 0xbb
	s := h.String()
	assert.Equal(t, "0xbb", s[:4])
	assert.Equal(t, "aa", s[len(s)-2:])
}

func TestScriptHashHexMatchesChainForm(t *testing.T) {
	// The raw digest stays in serialization order; only the hex form flips.
	h := ScriptHash([]byte{0x01, 0x02, 0x03})
	raw := h

	reversed := make([]byte, len(raw))
	for i, b := range raw {
		reversed[len(raw)-1-i] = b
	}
	assert.Equal(t, "0x"+hex.EncodeToString(reversed), h.String())
	assert.Equal(t, [20]byte(raw), [20]byte(h), "digest bytes must not be mutated by String")
}

func TestHash160RejectsWrongLength(t *testing.T) {
	_, err := Hash160FromString("0xabcd")
	assert.Error(t, err)
}

func TestHashJSON(t *testing.T) {
	h, err := Hash160FromString("0xd2a4cff31913016155e38e474a2c06d08be276cf")
	require.NoError(t, err)

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, `"0xd2a4cff31913016155e38e474a2c06d08be276cf"`, string(data))

	var back Hash160
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, h, back)
}

func TestFixed8Arithmetic(t *testing.T) {
	fee, err := Fixed8FromGAS("0.001")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), fee.Raw())

	sum := fee.Add(Fixed8FromRaw(23))
	assert.Equal(t, int64(100023), sum.Raw())

	scaled := fee.Mul(decimal.NewFromFloat(1.5))
	assert.Equal(t, int64(150000), scaled.Raw())
	assert.True(t, scaled.Cmp(fee) > 0)
}

func TestFixed8JSONAcceptsStringAndNumber(t *testing.T) {
	var f Fixed8
	require.NoError(t, json.Unmarshal([]byte(`"1234567"`), &f))
	assert.Equal(t, int64(1234567), f.Raw())

	require.NoError(t, json.Unmarshal([]byte(`1234567`), &f))
	assert.Equal(t, int64(1234567), f.Raw())

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `"1234567"`, string(data))
}

func TestTransactionUnsignedBytesDeterministic(t *testing.T) {
	sender, err := Hash160FromString("0xd2a4cff31913016155e38e474a2c06d08be276cf")
	require.NoError(t, err)

	tx := &Transaction{
		Nonce:           42,
		SystemFee:       Fixed8FromRaw(997775),
		NetworkFee:      Fixed8FromRaw(123456),
		ValidUntilBlock: 5762,
		Signers:         []TxSigner{{Account: sender, Scopes: ScopeCalledByEntry}},
		Script:          []byte{0x10, 0x11, 0x12},
	}

	a, err := tx.UnsignedBytes()
	require.NoError(t, err)
	b, err := tx.UnsignedBytes()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// version + nonce + fees + vub + signer list + empty attrs + script
	wantLen := 1 + 4 + 8 + 8 + 4 + (1 + 20 + 1) + 1 + (1 + 3)
	assert.Len(t, a, wantLen)

	h1, err := tx.Hash()
	require.NoError(t, err)
	tx.Nonce++
	h2, err := tx.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestTransactionRawBase64RequiresWitness(t *testing.T) {
	tx := &Transaction{Script: []byte{0x01}}
	_, err := tx.RawBase64()
	assert.Error(t, err)

	tx.Witnesses = []Witness{{Invocation: []byte{0x0c, 0x40}, Verification: []byte{0x41}}}
	raw, err := tx.RawBase64()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestSender(t *testing.T) {
	tx := &Transaction{}
	_, ok := tx.Sender()
	assert.False(t, ok)

	acct, err := Hash160FromString("0xd2a4cff31913016155e38e474a2c06d08be276cf")
	require.NoError(t, err)
	tx.Signers = []TxSigner{{Account: acct, Scopes: ScopeGlobal}}
	got, ok := tx.Sender()
	assert.True(t, ok)
	assert.Equal(t, acct, got)
}
