// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package liquidity

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/michielbdejong/ilp-connector/fault"
)

// digits kept when an amount does not have a finite decimal form
const fractionDigits = 16

// plain decimal notation, no exponent or base prefix
var decimal = regexp.MustCompile(`^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)$`)

// ParseAmount - convert a decimal string to a rational
func ParseAmount(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if !decimal.MatchString(s) {
		return nil, fault.InvalidAmountSpecifiedError("invalid amount: " + s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fault.InvalidAmountSpecifiedError("invalid amount: " + s)
	}
	return r, nil
}

// MustParseAmount - parse a constant amount, panics on error
func MustParseAmount(s string) *big.Rat {
	r, err := ParseAmount(s)
	if nil != err {
		panic(err)
	}
	return r
}

// FormatAmount - decimal string of an amount without trailing zeros
func FormatAmount(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return trimZeros(Truncate(r, fractionDigits).FloatString(fractionDigits))
}

// FormatScaled - decimal string of an amount truncated to scale places
func FormatScaled(r *big.Rat, scale int) string {
	if scale < 0 {
		scale = 0
	}
	t := Truncate(r, scale)
	if t.IsInt() {
		return t.Num().String()
	}
	return trimZeros(t.FloatString(scale))
}

// Truncate - round toward zero keeping scale decimal places
func Truncate(r *big.Rat, scale int) *big.Rat {
	if scale < 0 {
		scale = 0
	}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	n := new(big.Int).Mul(r.Num(), unit)
	n.Quo(n, r.Denom()) // Quo truncates toward zero
	return new(big.Rat).SetFrac(n, unit)
}

// IsPositive - true if amount > 0
func IsPositive(r *big.Rat) bool {
	return nil != r && r.Sign() > 0
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if "-0" == s {
		return "0"
	}
	return s
}

// internal helpers on rationals

func rat(i int64) *big.Rat {
	return new(big.Rat).SetInt64(i)
}

func add(a, b *big.Rat) *big.Rat { return new(big.Rat).Add(a, b) }
func sub(a, b *big.Rat) *big.Rat { return new(big.Rat).Sub(a, b) }
func mul(a, b *big.Rat) *big.Rat { return new(big.Rat).Mul(a, b) }
func quo(a, b *big.Rat) *big.Rat { return new(big.Rat).Quo(a, b) }

func maxRat(a, b *big.Rat) *big.Rat {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}
