// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package quoter

import (
	"context"
	"math/big"
	"time"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/packet"
)

// NextHop - the outgoing transfer for an incoming payment
type NextHop struct {
	Ledger           string // ledger of the outgoing transfer
	Account          string // credited account
	Amount           string
	IsFinal          bool // Account is the payee
	MinMessageWindow time.Duration
}

// NextHop - where an incoming transfer of amount on sourceLedger
// carrying payment goes next
//
// on the final hop the payee receives exactly the payment's amount
// provided the transfer covers it, otherwise the next connector
// receives what the transfer buys on its ledger
func (q *Quoter) NextHop(ctx context.Context, sourceLedger string, amount string, payment *packet.Payment) (*NextHop, error) {
	sourceAmount, err := liquidity.ParseAmount(amount)
	if nil != err {
		return nil, fault.InvalidAmountSpecifiedError("invalid transfer amount: " + amount)
	}
	if !liquidity.IsPositive(sourceAmount) {
		return nil, fault.InvalidAmountSpecifiedError("sourceAmount must be positive")
	}

	hop, err := q.tables.FindBestHopForSourceAmount(sourceLedger, payment.Account, sourceAmount)
	if nil != err {
		return nil, q.routeError(Query{SourceAccount: sourceLedger, DestinationAccount: payment.Account}, err)
	}
	if err := q.connected(hop.SourceLedger, hop.DestinationLedger); nil != err {
		return nil, err
	}

	if hop.IsLocal {
		required, err := liquidity.ParseAmount(payment.Amount)
		if nil != err || !liquidity.IsPositive(required) {
			return nil, fault.InvalidAmountSpecifiedError("invalid payment amount: " + payment.Amount)
		}
		available := q.round(hop.DestinationLedger, hop.FinalAmount)
		if available.Cmp(required) < 0 && !q.coversQuote(sourceLedger, sourceAmount, payment.Account, required) {
			return nil, fault.UnacceptableRateError("Payment rate does not match the rate currently offered")
		}
		q.checkBalance(ctx, hop.DestinationLedger, required)
		return &NextHop{
			Ledger:           hop.DestinationLedger,
			Account:          payment.Account,
			Amount:           liquidity.FormatAmount(required),
			IsFinal:          true,
			MinMessageWindow: hop.MinMessageWindow,
		}, nil
	}

	outgoing := q.round(hop.DestinationLedger, hop.DestinationAmount)
	if !liquidity.IsPositive(outgoing) {
		return nil, fault.UnacceptableAmountError("Quoted destination is lower than minimum amount allowed")
	}
	q.checkBalance(ctx, hop.DestinationLedger, outgoing)
	return &NextHop{
		Ledger:           hop.DestinationLedger,
		Account:          hop.DestinationCreditAccount,
		Amount:           liquidity.FormatAmount(outgoing),
		IsFinal:          false,
		MinMessageWindow: hop.MinMessageWindow,
	}, nil
}

// true if amount is at least the truncated source amount a fixed
// destination quote for required asks for
func (q *Quoter) coversQuote(sourceLedger string, amount *big.Rat, destination string, required *big.Rat) bool {
	hop, err := q.tables.FindBestHopForDestinationAmount(sourceLedger, destination, required)
	if nil != err || !hop.IsLocal {
		return false
	}
	return amount.Cmp(q.round(hop.SourceLedger, hop.SourceAmount)) >= 0
}
