/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
)

var maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Amount is a non-negative quantity of the host's smallest currency unit,
// bounded to 128 bits. The zero value is zero. Amounts are immutable and
// encode to JSON as decimal strings.
type Amount struct {
	i *big.Int
}

// NewAmount returns the Amount for u.
func NewAmount(u uint64) Amount {
	return Amount{i: new(big.Int).SetUint64(u)}
}

// ParseAmount parses a base 10 unsigned integer.
func ParseAmount(s string) (Amount, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, errors.Errorf("invalid amount '%s'", s)
	}
	return fromBig(i)
}

// MustParseAmount is ParseAmount that panics on error.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func fromBig(i *big.Int) (Amount, error) {
	if i.Sign() < 0 {
		return Amount{}, errors.Errorf("amount %s is negative", i)
	}
	if i.Cmp(maxAmount) > 0 {
		return Amount{}, errors.Errorf("amount %s overflows 128 bits", i)
	}
	return Amount{i: i}, nil
}

func (a Amount) big() *big.Int {
	if a.i == nil {
		return new(big.Int)
	}
	return a.i
}

func (a Amount) String() string { return a.big().String() }

func (a Amount) IsZero() bool { return a.big().Sign() == 0 }

// Cmp compares a and b and returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

func (a Amount) Add(b Amount) (Amount, error) {
	return fromBig(new(big.Int).Add(a.big(), b.big()))
}

// Sub fails when b is greater than a.
func (a Amount) Sub(b Amount) (Amount, error) {
	return fromBig(new(big.Int).Sub(a.big(), b.big()))
}

func (a Amount) Mul(b Amount) (Amount, error) {
	return fromBig(new(big.Int).Mul(a.big(), b.big()))
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a JSON integer.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return errors.Errorf("invalid amount %s", b)
		}
		s = n.String()
	}
	return a.UnmarshalText([]byte(s))
}
