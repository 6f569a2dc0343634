// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package quoter - prices for payments across the connector
//
// A quote is answered from the routing tables when the best hop
// reaches the destination ledger directly, otherwise the connector
// of the next hop is asked for its curve to the destination and the
// two legs are composed
package quoter

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/curvecache"
	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/metrics"
	"github.com/michielbdejong/ilp-connector/routing"
)

// kinds of quote
const (
	KindLiquidity     = "liquidity"
	KindBySource      = "source"
	KindByDestination = "destination"
)

// Configuration - quoting limits
type Configuration struct {
	QuoteExpiry            time.Duration // lifetime of a liquidity quote
	MaxHoldTime            time.Duration // longest destination hold accepted
	DefaultDestinationHold time.Duration // used when a query has none
	MinMessageWindow       time.Duration // budget for one hop
}

// Ledgers - plugins of the connector
type Ledgers interface {
	Plugin(ledger string) (ledger.Plugin, error)
	Resolve(address string) (string, ledger.Plugin, bool)
	IsConnected(ledger string) bool
}

// Balances - connector balance per ledger
type Balances interface {
	Get(ctx context.Context, ledger string) (*big.Rat, error)
}

// Query - what is to be quoted
//
// exactly one of the amounts is used, depending on the kind of quote
type Query struct {
	SourceAccount           string
	DestinationAccount      string
	SourceAmount            string
	DestinationAmount       string
	DestinationHoldDuration time.Duration
}

// Quote - price of a fixed amount
type Quote struct {
	SourceLedger            string
	NextLedger              string
	SourceAmount            string
	DestinationAmount       string
	SourceHoldDuration      time.Duration
	DestinationHoldDuration time.Duration
}

// LiquidityQuote - price of any amount up to the curve's limit
type LiquidityQuote struct {
	SourceLedger            string
	Curve                   *liquidity.Curve
	AppliesToPrefix         string
	SourceHoldDuration      time.Duration
	DestinationHoldDuration time.Duration
	ExpiresAt               time.Time
}

// Quoter - answers quotes from the routing tables and from peers
type Quoter struct {
	log      *logger.L
	conf     Configuration
	tables   *routing.Tables
	ledgers  Ledgers
	balances Balances
	caches   *curvecache.Caches
	metrics  *metrics.Metrics
}

// New - create a quoter, balances and m may be nil
func New(log *logger.L, conf Configuration, tables *routing.Tables, ledgers Ledgers, balances Balances, m *metrics.Metrics) *Quoter {
	return &Quoter{
		log:      log,
		conf:     conf,
		tables:   tables,
		ledgers:  ledgers,
		balances: balances,
		caches:   curvecache.NewCaches(),
		metrics:  m,
	}
}

// Caches - curves received from peers, per ledger they came over
func (q *Quoter) Caches() *curvecache.Caches {
	return q.caches
}

// internal routines shared by the kinds of quote

func (q *Quoter) routeError(query Query, err error) error {
	if errors.Is(err, fault.ErrRouteNotFound) {
		return fault.NoRouteFoundError("No route found from: " + query.SourceAccount + " to: " + query.DestinationAccount)
	}
	return err
}

// destination hold of a query, or the default
func (q *Quoter) holdDuration(requested time.Duration) (time.Duration, error) {
	if requested <= 0 {
		return q.conf.DefaultDestinationHold, nil
	}
	if q.conf.MaxHoldTime > 0 && requested > q.conf.MaxHoldTime {
		return 0, fault.UnacceptableExpiryError("Destination expiry duration is too long")
	}
	return requested, nil
}

// both ledgers of a hop must be connected
func (q *Quoter) connected(ledgers ...string) error {
	for _, l := range ledgers {
		if !q.ledgers.IsConnected(l) {
			return fault.LedgerNotConnectedError(`No connection to ledger "` + l + `"`)
		}
	}
	return nil
}

// truncate an amount to the scale of a ledger, unknown ledgers keep
// every digit
func (q *Quoter) round(ledgerPrefix string, amount *big.Rat) *big.Rat {
	plugin, err := q.ledgers.Plugin(ledgerPrefix)
	if nil != err {
		return amount
	}
	return liquidity.Truncate(amount, plugin.GetInfo().Scale)
}

// truncate an amount to the scale of the ledger holding an account,
// accounts on other connectors' ledgers keep every digit
func (q *Quoter) roundFor(account string, amount *big.Rat) *big.Rat {
	_, plugin, ok := q.ledgers.Resolve(account)
	if !ok {
		return amount
	}
	return liquidity.Truncate(amount, plugin.GetInfo().Scale)
}

// warn if the connector cannot cover an outgoing amount, a failed
// balance read does not stop the quote
func (q *Quoter) checkBalance(ctx context.Context, ledgerPrefix string, amount *big.Rat) {
	if nil == q.balances {
		return
	}
	balance, err := q.balances.Get(ctx, ledgerPrefix)
	if nil != err {
		q.log.Warnf("balance check: %s  error: %s", ledgerPrefix, err)
		return
	}
	if balance.Cmp(amount) < 0 {
		q.log.Warnf("insufficient liquidity on: %s  balance: %s  needed: %s", ledgerPrefix, liquidity.FormatAmount(balance), liquidity.FormatAmount(amount))
	}
}
