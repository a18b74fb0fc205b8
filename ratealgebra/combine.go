// Package ratealgebra implements the weighted-average rate algebra that
// folds two (sats, rate) fiat exposures into one. It has no dependency on
// any other package in this module — it is the leaf of the dependency
// graph described in SPEC_FULL.md §2.
package ratealgebra

import (
	"fmt"
	"math/big"
)

// Exposure is a satoshi quantity paired with the exchange rate (satoshis
// per unit of fiat) at which it was acquired.
type Exposure struct {
	Sats int64
	Rate int64
}

// InsufficientSatsBalanceError is returned when combining would drive the
// satoshi balance negative.
type InsufficientSatsBalanceError struct {
	Have, Delta, Result int64
}

func (e *InsufficientSatsBalanceError) Error() string {
	return fmt.Sprintf("balance in sats is lower than update value: have %d, "+
		"delta %d, result %d", e.Have, e.Delta, e.Result)
}

// InsufficientFiatBalanceError is returned when the weighted-sum term used
// to derive the combined rate is non-positive while the two exposures are
// not both trivially zero.
type InsufficientFiatBalanceError struct {
	Sats0, Rate0, Sats1, Rate1 int64
}

func (e *InsufficientFiatBalanceError) Error() string {
	return fmt.Sprintf("balance in fiat is lower than update value: "+
		"was %d/%d, update %d/%d", e.Sats0, e.Rate0, e.Sats1, e.Rate1)
}

// RateOverflowError is returned when the combined rate does not fit in a
// signed 64-bit integer.
type RateOverflowError struct {
	Sats0, Rate0, Sats1, Rate1 int64
	Rate                       *big.Int
}

func (e *RateOverflowError) Error() string {
	return fmt.Sprintf("new rate cannot fit in 64 bits: was %d/%d, "+
		"update %d/%d, new rate %s", e.Sats0, e.Rate0, e.Sats1, e.Rate1,
		e.Rate.String())
}

var (
	maxInt64 = big.NewInt(9223372036854775807)
)

// Combine folds a delta exposure (deltaSats, deltaRate) into an existing
// exposure h, returning the new weighted-average exposure.
//
// Wide (128-bit-or-better) integer arithmetic is required to preserve exact
// semantics on boundary inputs; this implementation uses math/big to avoid
// any risk of silent 64-bit wraparound.
func Combine(h Exposure, deltaSats, deltaRate int64) (Exposure, error) {
	newSats := h.Sats + deltaSats
	if newSats < 0 {
		return Exposure{}, &InsufficientSatsBalanceError{
			Have:   h.Sats,
			Delta:  deltaSats,
			Result: newSats,
		}
	}

	sats0 := big.NewInt(h.Sats)
	rate0 := big.NewInt(h.Rate)
	sats1 := big.NewInt(deltaSats)
	rate1 := big.NewInt(deltaRate)

	// weightedSum = sats0*rate1 + sats1*rate0
	weightedSum := new(big.Int).Add(
		new(big.Int).Mul(sats0, rate1),
		new(big.Int).Mul(sats1, rate0),
	)

	var rate *big.Int
	switch {
	case weightedSum.Sign() > 0:
		// rate = (newSats * rate0 * rate1) / weightedSum
		num := new(big.Int).Mul(big.NewInt(newSats), rate0)
		num.Mul(num, rate1)
		rate = new(big.Int).Quo(num, weightedSum)

	case h.Sats == 0 && deltaSats == 0:
		// Both sides are trivially empty; the result is the zero
		// exposure regardless of the (undefined) weighted average.
		rate = big.NewInt(0)

	default:
		return Exposure{}, &InsufficientFiatBalanceError{
			Sats0: h.Sats, Rate0: h.Rate, Sats1: deltaSats, Rate1: deltaRate,
		}
	}

	if rate.CmpAbs(maxInt64) > 0 || rate.Sign() < 0 {
		return Exposure{}, &RateOverflowError{
			Sats0: h.Sats, Rate0: h.Rate, Sats1: deltaSats, Rate1: deltaRate,
			Rate: rate,
		}
	}

	return Exposure{Sats: newSats, Rate: rate.Int64()}, nil
}
