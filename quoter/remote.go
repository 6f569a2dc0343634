// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package quoter

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/michielbdejong/ilp-connector/curvecache"
	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/packet"
)

// remoteCurve - curve from a connector on a ledger to a destination
//
// an unexpired cached curve from the same connector is used instead
// of asking again
func (q *Quoter) remoteCurve(ctx context.Context, ledgerPrefix string, connector string, destination string, hold time.Duration) (*curvecache.Quote, error) {
	cache := q.caches.For(ledgerPrefix)
	if cached := cache.Find(destination, connector); nil != cached {
		q.log.Debugf("cached curve from: %s  to: %s", connector, destination)
		return cached, nil
	}

	plugin, err := q.ledgers.Plugin(ledgerPrefix)
	if nil != err {
		return nil, err
	}
	request := &packet.LiquidityRequest{
		DestinationAccount:      destination,
		DestinationHoldDuration: hold,
	}
	reply, err := plugin.SendRequest(ctx, ledger.Message{
		Ledger: ledgerPrefix,
		From:   plugin.GetAccount(),
		To:     connector,
		Ilp:    request.Pack(),
	})
	if nil != err {
		return nil, errors.Wrapf(err, "liquidity quote from: %s", connector)
	}

	p, err := packet.Unpack(reply.Ilp)
	if nil != err {
		return nil, err
	}
	switch r := p.(type) {
	case *packet.LiquidityResponse:
		quote := &curvecache.Quote{
			AppliesToPrefix:    r.AppliesToPrefix,
			NextHop:            connector,
			Curve:              r.Curve,
			SourceHoldDuration: r.SourceHoldDuration,
			ExpiresAt:          r.ExpiresAt,
		}
		cache.Insert(r.AppliesToPrefix, quote)
		q.log.Debugf("curve from: %s  applies to: %s  expires: %s", connector, r.AppliesToPrefix, r.ExpiresAt)
		return quote, nil

	case *packet.Error:
		return nil, r.Err()

	default:
		return nil, fault.InvalidBodyError("unexpected reply to liquidity request: " + strconv.Itoa(int(p.Type())))
	}
}
