// Package signer defines the signing interface consumed by the provider's
// signer middleware, plus a local in-process key implementation. The
// middleware never inspects key material; hardware or custodial backends
// only need to satisfy Signer.
package signer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/types"
)

// Signer produces witness signatures for one account.
type Signer interface {
	// Account returns the script hash of the signing identity.
	Account() types.Hash160

	// Sign produces a signature over the payload.
	Sign(payload []byte) ([]byte, error)

	// VerificationScript returns the script nodes run to verify a
	// signature produced by Sign.
	VerificationScript() []byte
}

// Neo N3 single-signature verification script shape:
// PUSHDATA1 33 <compressed pubkey> SYSCALL System.Crypto.CheckSig.
var checkSigSyscall = []byte{0x41, 0x56, 0xe7, 0xb3, 0x27}

const (
	opPushData1 = 0x0c
	pubKeyLen   = 33
)

// LocalSigner signs with an in-process NIST P-256 private key, the curve
// the chain's witness verification runs.
type LocalSigner struct {
	key     *ecdsa.PrivateKey
	script  []byte
	account types.Hash160
}

var _ Signer = (*LocalSigner)(nil)

// NewLocalSigner wraps an existing P-256 private key.
func NewLocalSigner(key *ecdsa.PrivateKey) (*LocalSigner, error) {
	if key == nil {
		return nil, errors.New(errors.CodeSignError, "private key is nil")
	}
	if key.Curve != elliptic.P256() {
		return nil, errors.Newf(errors.CodeSignError, "unsupported curve %s, need P-256", key.Curve.Params().Name)
	}
	script := verificationScript(&key.PublicKey)
	return &LocalSigner{
		key:     key,
		script:  script,
		account: types.ScriptHash(script),
	}, nil
}

// GenerateLocalSigner creates a signer with a fresh random key.
func GenerateLocalSigner() (*LocalSigner, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSignError, "generate key")
	}
	return NewLocalSigner(key)
}

// LocalSignerFromHex parses a 32-byte big-endian scalar in hex.
func LocalSignerFromHex(s string) (*LocalSigner, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSignError, "decode private key hex")
	}
	if len(raw) != 32 {
		return nil, errors.Newf(errors.CodeSignError, "private key must be 32 bytes, got %d", len(raw))
	}

	curve := elliptic.P256()
	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, errors.New(errors.CodeSignError, "private key scalar out of range")
	}

	key := &ecdsa.PrivateKey{D: d}
	key.Curve = curve
	key.X, key.Y = curve.ScalarBaseMult(raw)
	return NewLocalSigner(key)
}

func (s *LocalSigner) Account() types.Hash160 { return s.account }

// VerificationScript returns a copy of the single-signature witness script.
func (s *LocalSigner) VerificationScript() []byte {
	out := make([]byte, len(s.script))
	copy(out, s.script)
	return out
}

// Sign hashes the payload with SHA-256 and returns the 64-byte r||s
// signature the witness format carries.
func (s *LocalSigner) Sign(payload []byte) ([]byte, error) {
	digest := sha256.Sum256(payload)
	r, sv, err := ecdsa.Sign(rand.Reader, s.key, digest[:])
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSignError, "ecdsa sign")
	}

	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	sv.FillBytes(sig[32:])
	return sig, nil
}

// PublicKey returns the compressed 33-byte public key.
func (s *LocalSigner) PublicKey() []byte {
	return elliptic.MarshalCompressed(s.key.Curve, s.key.X, s.key.Y)
}

// Public returns the verifying key for use with Verify.
func (s *LocalSigner) Public() *ecdsa.PublicKey {
	return &s.key.PublicKey
}

func verificationScript(pub *ecdsa.PublicKey) []byte {
	compressed := elliptic.MarshalCompressed(pub.Curve, pub.X, pub.Y)
	script := make([]byte, 0, 2+pubKeyLen+len(checkSigSyscall))
	script = append(script, opPushData1, pubKeyLen)
	script = append(script, compressed...)
	script = append(script, checkSigSyscall...)
	return script
}

// Verify checks a 64-byte r||s signature against the payload, for tests
// and diagnostics.
func Verify(pub *ecdsa.PublicKey, payload, sig []byte) bool {
	if len(sig) != 64 {
		return false
	}
	digest := sha256.Sum256(payload)
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	return ecdsa.Verify(pub, digest[:], r, s)
}
