// Copyright (c) 2013, 2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ravenutil holds small value types shared by callers of this
// module that don't belong inside the wire protocol itself. Amount is the
// only piece a peer connection needs: formatting a feefilter or
// SetFeePerKb callback's satoshi count for a log line (§6).
package ravenutil

import (
	"errors"
	"math"
	"strconv"
)

// AmountUnit describes a unit of Ravencoin currency.
type AmountUnit int

// These constants define the different currency units a satoshi count can
// be expressed as, ordered from largest to smallest.
const (
	AmountMegaBTC  AmountUnit = 6
	AmountKiloBTC  AmountUnit = 3
	AmountBTC      AmountUnit = 0
	AmountMilliBTC AmountUnit = -3
	AmountMicroBTC AmountUnit = -6
	AmountSatoshi  AmountUnit = -8
)

// String returns the unit as a string, the same suffixes btcutil uses with
// "BTC" swapped for "RVN".
func (u AmountUnit) String() string {
	switch u {
	case AmountMegaBTC:
		return "MRVN"
	case AmountKiloBTC:
		return "kRVN"
	case AmountBTC:
		return "RVN"
	case AmountMilliBTC:
		return "mRVN"
	case AmountMicroBTC:
		return "μRVN" // μRVN
	case AmountSatoshi:
		return "Satoshi"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " RVN"
	}
}

// SatoshiPerBitcoin is the number of satoshis in one whole RVN.
const SatoshiPerBitcoin = 1e8

// ErrInvalidAmount is returned by NewAmount when f is NaN, infinite, or
// outside the representable satoshi range.
var ErrInvalidAmount = errors.New("invalid bitcoin amount")

// Amount represents a quantity of Ravencoin in the base satoshi unit.
type Amount int64

// round converts a floating point number, which may or may not be
// representing an amount of RVN, to the nearest satoshi.
func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating point value representing a
// quantity of RVN, returning ErrInvalidAmount for NaN, Inf, or a magnitude
// that would overflow int64 satoshis.
func NewAmount(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) ||
		f < -math.MaxInt64/SatoshiPerBitcoin ||
		f > math.MaxInt64/SatoshiPerBitcoin {
		return 0, ErrInvalidAmount
	}
	return round(f * SatoshiPerBitcoin), nil
}

// ToUnit converts a satoshi amount to a floating point value expressed in
// the given unit.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+8))
}

// ToBTC is a convenience alias for ToUnit(AmountBTC).
func (a Amount) ToBTC() float64 {
	return a.ToUnit(AmountBTC)
}

// Format formats a satoshi amount in the given unit with its unit suffix,
// using the shortest decimal representation that round-trips to the exact
// value (no fixed precision, so whole-unit amounts print without a
// trailing ".000...").
func (a Amount) Format(u AmountUnit) string {
	units := " " + u.String()
	formatted := strconv.FormatFloat(a.ToUnit(u), 'f', -1, 64)
	return formatted + units
}

// String is the equivalent of calling Format with AmountBTC.
func (a Amount) String() string {
	return a.Format(AmountBTC)
}

// MulF64 multiplies a by f, rounding to the nearest satoshi.
func (a Amount) MulF64(f float64) Amount {
	return round(float64(a) * f)
}
