// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package quote

import (
	"context"
	"strconv"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/quoter"
	"github.com/michielbdejong/ilp-connector/rpc/ratelimit"
)

const (
	rateLimitQuote = 50
	rateBurstQuote = 20
	quoteTimeout   = 10 * time.Second
)

// Quoter - quoting operations
type Quoter interface {
	QuoteLiquidity(ctx context.Context, query quoter.Query) (*quoter.LiquidityQuote, error)
	QuoteBySourceAmount(ctx context.Context, query quoter.Query) (*quoter.Quote, error)
	QuoteByDestinationAmount(ctx context.Context, query quoter.Query) (*quoter.Quote, error)
}

// Quote - type for RPC calls
type Quote struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Quoter  Quoter
}

// New - create the quote RPC handler
func New(log *logger.L, q Quoter) *Quote {
	return &Quote{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitQuote, rateBurstQuote),
		Quoter:  q,
	}
}

// Arguments - a quote query, durations in seconds
type Arguments struct {
	SourceAccount           string `json:"source_account"`
	DestinationAccount      string `json:"destination_account"`
	Amount                  string `json:"amount"`
	DestinationHoldDuration string `json:"destination_hold_duration"`
}

// LiquidityReply - curve from the source account to the destination
type LiquidityReply struct {
	SourceLedger            string           `json:"source_ledger"`
	Points                  *liquidity.Curve `json:"points"`
	AppliesToPrefix         string           `json:"applies_to_prefix"`
	SourceHoldDuration      string           `json:"source_hold_duration"`
	DestinationHoldDuration string           `json:"destination_hold_duration"`
	ExpiresAt               time.Time        `json:"expires_at"`
}

// AmountReply - a quote for a fixed amount
type AmountReply struct {
	SourceLedger            string `json:"source_ledger"`
	NextLedger              string `json:"next_ledger"`
	SourceAmount            string `json:"source_amount"`
	DestinationAmount       string `json:"destination_amount"`
	SourceHoldDuration      string `json:"source_hold_duration"`
	DestinationHoldDuration string `json:"destination_hold_duration"`
}

func (arguments *Arguments) query() (quoter.Query, error) {
	if "" == arguments.SourceAccount || "" == arguments.DestinationAccount {
		return quoter.Query{}, fault.ErrMissingParameters
	}
	q := quoter.Query{
		SourceAccount:      arguments.SourceAccount,
		DestinationAccount: arguments.DestinationAccount,
	}
	if "" != arguments.DestinationHoldDuration {
		seconds, err := strconv.ParseFloat(arguments.DestinationHoldDuration, 64)
		if nil != err || seconds < 0 {
			return quoter.Query{}, fault.InvalidBodyError("invalid destination_hold_duration: " + arguments.DestinationHoldDuration)
		}
		q.DestinationHoldDuration = time.Duration(seconds * float64(time.Second))
	}
	return q, nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// Liquidity - liquidity curve between two accounts
func (quote *Quote) Liquidity(arguments *Arguments, reply *LiquidityReply) error {

	if err := ratelimit.Limit(quote.Limiter); nil != err {
		return err
	}
	query, err := arguments.query()
	if nil != err {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), quoteTimeout)
	defer cancel()

	q, err := quote.Quoter.QuoteLiquidity(ctx, query)
	if nil != err {
		quote.Log.Debugf("liquidity: %s → %s  error: %s", query.SourceAccount, query.DestinationAccount, err)
		return err
	}

	reply.SourceLedger = q.SourceLedger
	reply.Points = q.Curve
	reply.AppliesToPrefix = q.AppliesToPrefix
	reply.SourceHoldDuration = seconds(q.SourceHoldDuration)
	reply.DestinationHoldDuration = seconds(q.DestinationHoldDuration)
	reply.ExpiresAt = q.ExpiresAt.UTC()
	return nil
}

// BySource - what a fixed source amount delivers
func (quote *Quote) BySource(arguments *Arguments, reply *AmountReply) error {
	return quote.amount(arguments, reply, true)
}

// ByDestination - what a fixed destination amount costs
func (quote *Quote) ByDestination(arguments *Arguments, reply *AmountReply) error {
	return quote.amount(arguments, reply, false)
}

func (quote *Quote) amount(arguments *Arguments, reply *AmountReply, bySource bool) error {

	if err := ratelimit.Limit(quote.Limiter); nil != err {
		return err
	}
	query, err := arguments.query()
	if nil != err {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), quoteTimeout)
	defer cancel()

	var q *quoter.Quote
	if bySource {
		query.SourceAmount = arguments.Amount
		q, err = quote.Quoter.QuoteBySourceAmount(ctx, query)
	} else {
		query.DestinationAmount = arguments.Amount
		q, err = quote.Quoter.QuoteByDestinationAmount(ctx, query)
	}
	if nil != err {
		quote.Log.Debugf("amount: %s  %s → %s  error: %s", arguments.Amount, query.SourceAccount, query.DestinationAccount, err)
		return err
	}

	reply.SourceLedger = q.SourceLedger
	reply.NextLedger = q.NextLedger
	reply.SourceAmount = q.SourceAmount
	reply.DestinationAmount = q.DestinationAmount
	reply.SourceHoldDuration = seconds(q.SourceHoldDuration)
	reply.DestinationHoldDuration = seconds(q.DestinationHoldDuration)
	return nil
}
