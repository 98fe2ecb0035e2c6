package wallet

import (
	"errors"
	"math/big"
)

var ErrInvalidSchedule = errors.New("invalid fee schedule")

// Schedule is the percent-plus-flat fee model supplied by token
// metadata. Percent is a fraction of the amount (0.03 is 3%), Flat is
// an absolute amount in token units. Both apply at the token's fixed
// decimal precision.
type Schedule struct {
	Percent  *big.Rat
	Flat     *big.Rat
	Decimals int
	Symbol   string
}

func (s Schedule) validate() error {
	if s.Percent == nil || s.Flat == nil || s.Decimals < 0 ||
		s.Percent.Sign() < 0 || s.Flat.Sign() < 0 {
		return ErrInvalidSchedule
	}
	return nil
}

// roundUnits converts a rational token amount to integer base units at
// the given precision, rounding half away from zero.
func roundUnits(v *big.Rat, decimals int) int64 {
	scaled := new(big.Rat).Mul(v, new(big.Rat).SetInt(pow10(decimals)))
	num := new(big.Int).Lsh(scaled.Num(), 1) // 2n
	den := scaled.Denom()
	if num.Sign() >= 0 {
		num.Add(num, den)
	} else {
		num.Sub(num, den)
	}
	num.Quo(num, new(big.Int).Lsh(den, 1)) // trunc((2n±d)/2d)
	return num.Int64()
}

func (s Schedule) fee(amount *big.Rat) Quantity {
	v := new(big.Rat).Mul(amount, s.Percent)
	v.Add(v, s.Flat)
	return Quantity{Units: roundUnits(v, s.Decimals), Decimals: s.Decimals, Symbol: s.Symbol}
}

// FeeFromPrincipal computes the fee owed on a principal amount and the
// total the sender pays: fee = round(principal*percent + flat), total =
// principal + fee.
func FeeFromPrincipal(principal Quantity, s Schedule) (fee, total Quantity, err error) {
	if err := s.validate(); err != nil {
		return Quantity{}, Quantity{}, err
	}
	if principal.Units < 0 {
		return Quantity{}, Quantity{}, ErrNegativeAmount
	}
	if principal.Symbol != s.Symbol || principal.Decimals != s.Decimals {
		return Quantity{}, Quantity{}, ErrSymbolMismatch
	}
	fee = s.fee(principal.Rat())
	total, err = principal.Add(fee)
	return fee, total, err
}

// FeeFromTotal derives the fee and principal from the total the sender
// is willing to pay. The fee is computed against the total itself, not
// algebraically inverted from the forward formula, so the result can be
// off by a unit or two of fee relative to the exact inverse. Longtime
// callers round-trip amounts through this pair, so the asymmetry is
// load-bearing and must stay.
func FeeFromTotal(total Quantity, s Schedule) (fee, principal Quantity, err error) {
	if err := s.validate(); err != nil {
		return Quantity{}, Quantity{}, err
	}
	if total.Units < 0 {
		return Quantity{}, Quantity{}, ErrNegativeAmount
	}
	if total.Symbol != s.Symbol || total.Decimals != s.Decimals {
		return Quantity{}, Quantity{}, ErrSymbolMismatch
	}
	fee = s.fee(total.Rat())
	principal, err = total.Sub(fee)
	return fee, principal, err
}
