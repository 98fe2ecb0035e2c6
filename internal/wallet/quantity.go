// Package wallet holds the token math used by the transaction flows:
// fixed precision quantities, fee schedules and bulk recipient
// validation.
package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrSymbolMismatch  = errors.New("token symbol mismatch")
	ErrNegativeAmount  = errors.New("amount must not be negative")
)

// Quantity is a token amount in integer base units at a fixed decimal
// precision, e.g. Units=1500, Decimals=3, Symbol="ATMOS" is
// "1.500 ATMOS". Integer units avoid float drift in fee math.
type Quantity struct {
	Units    int64
	Decimals int
	Symbol   string
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// Rat returns the amount as an exact rational.
func (q Quantity) Rat() *big.Rat {
	return new(big.Rat).SetFrac(big.NewInt(q.Units), pow10(q.Decimals))
}

// Add returns q + other. Both operands must carry the same symbol and
// precision.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if q.Symbol != other.Symbol || q.Decimals != other.Decimals {
		return Quantity{}, ErrSymbolMismatch
	}
	return Quantity{Units: q.Units + other.Units, Decimals: q.Decimals, Symbol: q.Symbol}, nil
}

// Sub returns q - other under the same constraints as Add.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if q.Symbol != other.Symbol || q.Decimals != other.Decimals {
		return Quantity{}, ErrSymbolMismatch
	}
	return Quantity{Units: q.Units - other.Units, Decimals: q.Decimals, Symbol: q.Symbol}, nil
}

// String renders the quantity in the on-chain asset form, always with
// exactly Decimals fractional digits: "1.500 ATMOS", "3 BOID".
func (q Quantity) String() string {
	units := q.Units
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	scale := pow10(q.Decimals)
	whole := new(big.Int).Div(big.NewInt(units), scale)
	frac := new(big.Int).Mod(big.NewInt(units), scale)
	if q.Decimals == 0 {
		return fmt.Sprintf("%s%s %s", sign, whole, q.Symbol)
	}
	return fmt.Sprintf("%s%s.%0*d %s", sign, whole, q.Decimals, frac, q.Symbol)
}

// ParseQuantity parses the asset form produced by String. The decimal
// precision is taken from the fractional digits as written, so
// "1.50 ATMOS" and "1.500 ATMOS" parse to different precisions.
func ParseQuantity(s string) (Quantity, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 2 {
		return Quantity{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	amount, symbol := parts[0], parts[1]

	neg := strings.HasPrefix(amount, "-")
	amount = strings.TrimPrefix(amount, "-")

	whole, frac := amount, ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		whole, frac = amount[:i], amount[i+1:]
		if frac == "" {
			return Quantity{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
		}
	}
	if whole == "" {
		return Quantity{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	units, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	if neg {
		units = -units
	}
	return Quantity{Units: units, Decimals: len(frac), Symbol: symbol}, nil
}
