// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagerouter

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/prefix"
	"github.com/michielbdejong/ilp-connector/routing"
)

// RoutingUpdate - payload of a broadcast_routes message
type RoutingUpdate struct {
	NewRoutes            []routing.Advertisement `json:"new_routes"`
	HoldDownTime         int64                   `json:"hold_down_time"` // milliseconds
	UnreachableThroughMe []string                `json:"unreachable_through_me"`
}

// one day in milliseconds
const maxHoldDownTime = 24 * 60 * 60 * 1000

// Validate - check every part of an update before any is applied
func (u *RoutingUpdate) Validate() error {
	if u.HoldDownTime <= 0 || u.HoldDownTime > maxHoldDownTime {
		return fault.ErrHoldDownTimeInvalid
	}
	for i := range u.NewRoutes {
		if err := u.NewRoutes[i].Validate(); nil != err {
			return err
		}
	}
	for _, p := range u.UnreachableThroughMe {
		if !prefix.IsValidPrefix(p) {
			return fault.InvalidBodyError("invalid unreachable_through_me: " + p)
		}
	}
	return nil
}

// strict JSON decoding of a method payload
func decode(data json.RawMessage, v interface{}) error {
	if 0 == len(data) {
		return fault.InvalidBodyError("missing data")
	}
	d := json.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(v); nil != err {
		return fault.InvalidBodyError("invalid data: " + err.Error())
	}
	return nil
}

// ReceiveRoutes - apply a routing update from a peer
//
// withdrawals are applied before additions, routes not advertised by
// the sender itself are ignored and any change is broadcast onwards
func (r *Router) ReceiveRoutes(ctx context.Context, update RoutingUpdate, sender string) error {
	if err := update.Validate(); nil != err {
		r.log.Warnf("routes from: %s  rejected: %s", sender, err)
		r.metrics.Announcement(false)
		return err
	}
	r.metrics.Announcement(true)
	r.log.Debugf("routes from: %s  count: %d", sender, len(update.NewRoutes))

	r.tables.BumpConnector(sender, time.Duration(update.HoldDownTime)*time.Millisecond)

	lost := []string{}
	if 0 != len(update.UnreachableThroughMe) {
		r.log.Infof("broken routes to: %v  through: %s", update.UnreachableThroughMe, sender)
		for _, ledgerPrefix := range update.UnreachableThroughMe {
			lost = append(lost, r.tables.InvalidateConnectorsRoutesTo(sender, ledgerPrefix)...)
		}
	}

	if 0 == len(update.NewRoutes) && 0 == len(lost) {
		r.log.Infof("heartbeat from: %s", sender)
		return nil
	}

	changed := false
	for _, a := range update.NewRoutes {
		if a.SourceAccount != sender {
			r.log.Warnf("route to: %s  from: %s  claims source account: %s", a.DestinationLedger, sender, a.SourceAccount)
			continue
		}
		added, err := r.tables.AddRoute(a)
		if nil != err {
			r.log.Warnf("route to: %s  from: %s  rejected: %s", a.DestinationLedger, sender, err)
			continue
		}
		if added {
			changed = true
		}
	}
	r.log.Debugf("routes from: %s  provided: %d  changed: %t", sender, len(update.NewRoutes), changed)

	if (changed || 0 != len(lost)) && r.broadcastEnabled {
		r.broadcaster.MarkLedgersUnreachable(lost)
		go func() {
			if err := r.broadcaster.Broadcast(context.Background()); nil != err {
				r.log.Warnf("error broadcasting routes: %s", err)
			}
		}()
	}
	return nil
}
