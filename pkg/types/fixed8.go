package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// fixed8Scale is the number of decimal places GAS amounts carry on chain.
const fixed8Scale = 8

// Fixed8 is a GAS amount with 8 decimal places. On the wire Neo represents
// these as integer strings of 10^-8 units; in memory we keep an exact
// decimal so fee arithmetic never loses precision.
type Fixed8 struct {
	d decimal.Decimal
}

// Fixed8FromGAS builds an amount from whole GAS units, e.g. "0.001".
func Fixed8FromGAS(s string) (Fixed8, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Fixed8{}, fmt.Errorf("invalid GAS amount %q: %w", s, err)
	}
	return Fixed8{d: d}, nil
}

// Fixed8FromRaw builds an amount from raw 10^-8 units.
func Fixed8FromRaw(raw int64) Fixed8 {
	return Fixed8{d: decimal.New(raw, -fixed8Scale)}
}

// Raw returns the amount in 10^-8 units, truncating sub-unit precision.
func (f Fixed8) Raw() int64 {
	return f.d.Shift(fixed8Scale).IntPart()
}

// GAS returns the amount in whole GAS units as a decimal string.
func (f Fixed8) GAS() string { return f.d.String() }

// Add returns f + other.
func (f Fixed8) Add(other Fixed8) Fixed8 { return Fixed8{d: f.d.Add(other.d)} }

// Mul returns f scaled by a decimal factor, used for fee escalation.
func (f Fixed8) Mul(factor decimal.Decimal) Fixed8 { return Fixed8{d: f.d.Mul(factor)} }

// Cmp compares two amounts: -1 if f < other, 0 if equal, 1 if f > other.
func (f Fixed8) Cmp(other Fixed8) int { return f.d.Cmp(other.d) }

// IsZero reports whether the amount is exactly zero.
func (f Fixed8) IsZero() bool { return f.d.IsZero() }

func (f Fixed8) String() string { return f.GAS() }

// MarshalJSON encodes the amount in wire form: an integer string of raw units.
func (f Fixed8) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("%d", f.Raw()))
}

// UnmarshalJSON accepts both wire forms Neo nodes emit: an integer string
// of raw units, or a bare JSON number of raw units.
func (f *Fixed8) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("invalid fee value %q: %w", s, err)
		}
		f.d = d.Shift(-fixed8Scale)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid fee value %s", string(data))
	}
	*f = Fixed8FromRaw(n)
	return nil
}
