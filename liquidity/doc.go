// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package liquidity - amounts and liquidity curves
//
// An amount is an arbitrary precision decimal carried as a string
// outside this package and as a big.Rat inside it.
//
// A curve is an immutable piecewise linear non-decreasing function
// from a source amount to the best destination amount obtainable
// for it.  Arithmetic is exact; rounding to a ledger's scale is left
// to the caller.
package liquidity
