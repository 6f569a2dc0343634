// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package quoter

import (
	"context"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/liquidity"
)

// QuoteBySourceAmount - what a fixed source amount delivers
func (q *Quoter) QuoteBySourceAmount(ctx context.Context, query Query) (*Quote, error) {
	quote, err := q.bySourceAmount(ctx, query)
	q.metrics.Quote(KindBySource, err)
	return quote, err
}

// QuoteByDestinationAmount - what a fixed destination amount costs
func (q *Quoter) QuoteByDestinationAmount(ctx context.Context, query Query) (*Quote, error) {
	quote, err := q.byDestinationAmount(ctx, query)
	q.metrics.Quote(KindByDestination, err)
	return quote, err
}

func (q *Quoter) bySourceAmount(ctx context.Context, query Query) (*Quote, error) {
	amount, err := liquidity.ParseAmount(query.SourceAmount)
	if nil != err {
		return nil, err
	}
	if !liquidity.IsPositive(amount) {
		return nil, fault.InvalidAmountSpecifiedError("sourceAmount must be positive")
	}

	hop, err := q.tables.FindBestHopForSourceAmount(query.SourceAccount, query.DestinationAccount, amount)
	if nil != err {
		return nil, q.routeError(query, err)
	}
	hold, err := q.holdDuration(query.DestinationHoldDuration)
	if nil != err {
		return nil, err
	}
	if err := q.connected(hop.SourceLedger, hop.DestinationLedger); nil != err {
		return nil, err
	}

	quote := &Quote{
		SourceLedger:            hop.SourceLedger,
		NextLedger:              hop.DestinationLedger,
		SourceAmount:            liquidity.FormatAmount(amount),
		DestinationHoldDuration: hold,
	}

	if hop.IsLocal {
		destination := q.round(hop.DestinationLedger, hop.FinalAmount)
		if !liquidity.IsPositive(destination) {
			return nil, fault.UnacceptableAmountError("Quoted destination is lower than minimum amount allowed")
		}
		q.checkBalance(ctx, hop.DestinationLedger, destination)
		quote.DestinationAmount = liquidity.FormatAmount(destination)
		quote.SourceHoldDuration = hold + hop.MinMessageWindow
		return quote, nil
	}

	// ask the next connector for the rest of the path
	connector := hop.DestinationCreditAccount
	head, err := q.tables.FindBestHopForSourceAmount(hop.SourceLedger, connector, amount)
	if nil != err {
		return nil, q.routeError(query, err)
	}
	intermediate := q.round(hop.DestinationLedger, head.FinalAmount)

	// any connector on the next ledger is reached for the same amount
	tail := q.caches.For(hop.DestinationLedger).FindBestPathForSourceAmount(query.DestinationAccount, intermediate)
	if nil == tail {
		tail, err = q.remoteCurve(ctx, hop.DestinationLedger, connector, query.DestinationAccount, hold)
		if nil != err {
			return nil, err
		}
	}
	destination := q.roundFor(query.DestinationAccount, tail.Curve.Evaluate(intermediate))
	if !liquidity.IsPositive(destination) {
		return nil, fault.UnacceptableAmountError("Quoted destination is lower than minimum amount allowed")
	}
	q.checkBalance(ctx, hop.DestinationLedger, intermediate)

	quote.DestinationAmount = liquidity.FormatAmount(destination)
	quote.SourceHoldDuration = tail.SourceHoldDuration + head.MinMessageWindow
	return quote, nil
}

func (q *Quoter) byDestinationAmount(ctx context.Context, query Query) (*Quote, error) {
	amount, err := liquidity.ParseAmount(query.DestinationAmount)
	if nil != err {
		return nil, err
	}
	if !liquidity.IsPositive(amount) {
		return nil, fault.InvalidAmountSpecifiedError("destinationAmount must be positive")
	}

	hop, err := q.tables.FindBestHopForDestinationAmount(query.SourceAccount, query.DestinationAccount, amount)
	if nil != err {
		return nil, q.routeError(query, err)
	}
	hold, err := q.holdDuration(query.DestinationHoldDuration)
	if nil != err {
		return nil, err
	}
	if err := q.connected(hop.SourceLedger, hop.DestinationLedger); nil != err {
		return nil, err
	}

	quote := &Quote{
		SourceLedger:            hop.SourceLedger,
		NextLedger:              hop.DestinationLedger,
		DestinationAmount:       liquidity.FormatAmount(amount),
		DestinationHoldDuration: hold,
	}

	if hop.IsLocal {
		source := q.round(hop.SourceLedger, hop.SourceAmount)
		if !liquidity.IsPositive(source) {
			return nil, fault.UnacceptableAmountError("Quoted source is lower than minimum amount allowed")
		}
		q.checkBalance(ctx, hop.DestinationLedger, amount)
		quote.SourceAmount = liquidity.FormatAmount(source)
		quote.SourceHoldDuration = hold + hop.MinMessageWindow
		return quote, nil
	}

	// the next connector's curve says how much it must be sent
	connector := hop.DestinationCreditAccount
	tail, err := q.remoteCurve(ctx, hop.DestinationLedger, connector, query.DestinationAccount, hold)
	if nil != err {
		return nil, err
	}
	intermediate, err := tail.Curve.Invert(amount)
	if nil != err {
		return nil, err
	}
	head, err := q.tables.FindBestHopForDestinationAmount(hop.SourceLedger, connector, intermediate)
	if nil != err {
		return nil, q.routeError(query, err)
	}
	source := q.round(hop.SourceLedger, head.SourceAmount)
	if !liquidity.IsPositive(source) {
		return nil, fault.UnacceptableAmountError("Quoted source is lower than minimum amount allowed")
	}
	q.checkBalance(ctx, hop.DestinationLedger, intermediate)

	quote.SourceAmount = liquidity.FormatAmount(source)
	quote.SourceHoldDuration = tail.SourceHoldDuration + head.MinMessageWindow
	return quote, nil
}
