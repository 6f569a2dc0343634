// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package quoter

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/michielbdejong/ilp-connector/curvecache"
)

// QuoteLiquidity - combined curve of every route to the destination
func (q *Quoter) QuoteLiquidity(ctx context.Context, query Query) (*LiquidityQuote, error) {
	quote, err := q.quoteLiquidity(ctx, query)
	q.metrics.Quote(KindLiquidity, err)
	return quote, err
}

func (q *Quoter) quoteLiquidity(ctx context.Context, query Query) (*LiquidityQuote, error) {
	routes, err := q.tables.FindRoutes(query.SourceAccount, query.DestinationAccount)
	if nil != err {
		return nil, q.routeError(query, err)
	}
	hold, err := q.holdDuration(query.DestinationHoldDuration)
	if nil != err {
		return nil, err
	}

	hops := make([]string, 0, len(routes))
	for hop := range routes {
		hops = append(hops, hop)
	}
	sort.Strings(hops)

	sourceLedger := routes[hops[0]].SourceLedger
	for _, hop := range hops {
		if err := q.connected(sourceLedger, routes[hop].NextLedger); nil != err {
			return nil, err
		}
	}

	expiresAt := time.Now().Add(q.conf.QuoteExpiry)
	results := make([]*curvecache.Quote, len(hops))

	g, gctx := errgroup.WithContext(ctx)
	for i, hop := range hops {
		r := routes[hop]
		if r.IsLocal {
			results[i] = &curvecache.Quote{
				AppliesToPrefix:    r.DestinationLedger,
				NextHop:            hop,
				Curve:              r.Curve,
				SourceHoldDuration: hold + r.MinMessageWindow,
				ExpiresAt:          expiresAt,
			}
			continue
		}

		g.Go(func() error {
			tail, err := q.remoteCurve(gctx, r.NextLedger, r.NextHop, query.DestinationAccount, hold)
			if nil != err {
				return err
			}
			results[i] = &curvecache.Quote{
				AppliesToPrefix:    tail.AppliesToPrefix,
				NextHop:            r.NextHop,
				Curve:              r.HeadCurve.Compose(tail.Curve),
				SourceHoldDuration: tail.SourceHoldDuration + q.conf.MinMessageWindow,
				ExpiresAt:          tail.ExpiresAt,
			}
			return nil
		})
	}
	if err := g.Wait(); nil != err {
		return nil, err
	}

	combined := combine(results)
	return &LiquidityQuote{
		SourceLedger:            sourceLedger,
		Curve:                   combined.Curve,
		AppliesToPrefix:         combined.AppliesToPrefix,
		SourceHoldDuration:      combined.SourceHoldDuration,
		DestinationHoldDuration: hold,
		ExpiresAt:               combined.ExpiresAt,
	}, nil
}

// combine - best curve over all quotes
//
// the longest prefix wins, the hold is the longest needed by any
// path and the result lapses with the first quote to expire
func combine(quotes []*curvecache.Quote) *curvecache.Quote {
	result := *quotes[0]
	for _, next := range quotes[1:] {
		result.Curve = result.Curve.Combine(next.Curve)
		if len(next.AppliesToPrefix) > len(result.AppliesToPrefix) {
			result.AppliesToPrefix = next.AppliesToPrefix
		}
		if next.SourceHoldDuration > result.SourceHoldDuration {
			result.SourceHoldDuration = next.SourceHoldDuration
		}
		if next.ExpiresAt.Before(result.ExpiresAt) {
			result.ExpiresAt = next.ExpiresAt
		}
	}
	return &result
}
