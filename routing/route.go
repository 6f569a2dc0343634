// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routing

import (
	"math/big"
	"time"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/prefix"
)

// Route - one way of reaching a destination prefix from a source ledger
type Route struct {
	SourceLedger      string           // ledger the payment arrives on
	NextLedger        string           // ledger the outgoing transfer is made on
	DestinationLedger string           // prefix reachable through this route
	NextHop           string           // account credited on NextLedger
	Curve             *liquidity.Curve // source amount → amount at destination
	HeadCurve         *liquidity.Curve // source amount → amount on NextLedger
	MinMessageWindow  time.Duration    // total propagation budget to destination
	IsLocal           bool             // destination is a ledger of this connector
	ExpiresAt         time.Time        // zero for local routes
}

// expired - local routes never expire
func (r *Route) expired(now time.Time) bool {
	return !r.IsLocal && !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

func (r *Route) clone() *Route {
	c := *r
	return &c
}

// Hop - the next leg chosen for a payment
type Hop struct {
	IsLocal                  bool
	SourceLedger             string
	SourceAmount             *big.Rat
	DestinationLedger        string   // ledger of the outgoing transfer
	DestinationCreditAccount string   // next connector, empty when final
	DestinationAmount        *big.Rat // amount of the outgoing transfer
	FinalLedger              string
	FinalAmount              *big.Rat
	MinMessageWindow         time.Duration
}

// Advertisement - a route as exchanged between connectors
type Advertisement struct {
	SourceLedger      string           `json:"source_ledger"`
	DestinationLedger string           `json:"destination_ledger"`
	SourceAccount     string           `json:"source_account"`
	MinMessageWindow  int64            `json:"min_message_window"` // seconds
	Points            *liquidity.Curve `json:"points"`
}

// one day in seconds
const maxMinMessageWindow = 24 * 60 * 60

// Validate - check the fields of a received advertisement
func (a *Advertisement) Validate() error {
	if !prefix.IsValidPrefix(a.SourceLedger) {
		return fault.InvalidBodyError("invalid source_ledger: " + a.SourceLedger)
	}
	if !prefix.IsValidPrefix(a.DestinationLedger) {
		return fault.InvalidBodyError("invalid destination_ledger: " + a.DestinationLedger)
	}
	if !prefix.IsValidAddress(a.SourceAccount) {
		return fault.InvalidBodyError("invalid source_account: " + a.SourceAccount)
	}
	if a.MinMessageWindow < 0 || a.MinMessageWindow > maxMinMessageWindow {
		return fault.InvalidBodyError("invalid min_message_window")
	}
	if nil == a.Points {
		return fault.InvalidBodyError("missing points")
	}
	return nil
}

func (a *Advertisement) window() time.Duration {
	return time.Duration(a.MinMessageWindow) * time.Second
}
