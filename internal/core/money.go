// Package core holds the domain model of the ledger: accounts, categories,
// sources, ledger entries, money handling, date-range resolution and the
// access policy. It has no knowledge of storage, transport or messaging.
package core

import (
	"github.com/shopspring/decimal"
)

// Money is an exact amount carried as integer cents. Arithmetic on summaries
// stays in cents so totals and net balances never lose precision. On the wire
// it reads and writes as a plain decimal number (e.g. 100.5).
type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to Money. Negative values and values
// with more than two fractional digits are rejected; zero is allowed.
func ParseAmount(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount as a decimal value in whole currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) String() string {
	return m.Decimal().String()
}

// MarshalJSON renders the amount as an unquoted decimal number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
