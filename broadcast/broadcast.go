// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package broadcast - keep the local routes current and tell the peer
// connectors on every ledger what this connector can reach
package broadcast

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/messagebus"
	"github.com/michielbdejong/ilp-connector/messagerouter"
	"github.com/michielbdejong/ilp-connector/metrics"
	"github.com/michielbdejong/ilp-connector/routing"
)

// command of route change messages on the bus
const busCommand = "routes"

// Configuration - broadcast timing
type Configuration struct {
	Enabled          bool          // send routes to peers
	Interval         time.Duration // between periodic broadcasts
	RouteExpiry      time.Duration // hold down time announced to peers
	MinMessageWindow time.Duration // window of each local route
}

// Ledgers - plugins of the connector
type Ledgers interface {
	Prefixes() []string
	Plugin(ledger string) (ledger.Plugin, error)
}

// Backend - source of the local routes
type Backend interface {
	LocalRoutes(infos []ledger.Info, minMessageWindow time.Duration) []*routing.Route
	Changed() <-chan struct{}
}

// RouteBroadcaster - local route reload and route broadcast
type RouteBroadcaster struct {
	sync.Mutex

	log         *logger.L
	conf        Configuration
	tables      *routing.Tables
	ledgers     Ledgers
	backend     Backend
	metrics     *metrics.Metrics
	unreachable map[string]struct{} // prefixes to withdraw in the next broadcast
}

// New - create a broadcaster
func New(log *logger.L, conf Configuration, tables *routing.Tables, ledgers Ledgers, backend Backend, m *metrics.Metrics) *RouteBroadcaster {
	return &RouteBroadcaster{
		log:         log,
		conf:        conf,
		tables:      tables,
		ledgers:     ledgers,
		backend:     backend,
		metrics:     m,
		unreachable: make(map[string]struct{}),
	}
}

// ReloadLocalRoutes - rebuild the routes between this connector's
// ledgers from the backend
func (b *RouteBroadcaster) ReloadLocalRoutes() error {
	prefixes := b.ledgers.Prefixes()
	infos := make([]ledger.Info, 0, len(prefixes))
	for _, p := range prefixes {
		plugin, err := b.ledgers.Plugin(p)
		if nil != err {
			return err
		}
		infos = append(infos, plugin.GetInfo())
	}

	routes := b.backend.LocalRoutes(infos, b.conf.MinMessageWindow)
	if err := b.tables.SetLocalRoutes(routes); nil != err {
		b.log.Errorf("set local routes error: %s", err)
		return err
	}
	b.changed()
	return nil
}

// MarkLedgersUnreachable - withdraw prefixes in the next broadcast
func (b *RouteBroadcaster) MarkLedgersUnreachable(prefixes []string) {
	if 0 == len(prefixes) {
		return
	}
	b.Lock()
	for _, p := range prefixes {
		b.unreachable[p] = struct{}{}
	}
	b.Unlock()
	b.log.Infof("unreachable: %v", prefixes)
	b.changed()
}

// take the pending withdrawals
func (b *RouteBroadcaster) withdrawals() []string {
	b.Lock()
	defer b.Unlock()

	prefixes := make([]string, 0, len(b.unreachable))
	for p := range b.unreachable {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	b.unreachable = make(map[string]struct{})
	return prefixes
}

// Broadcast - send the routing table to every peer of every ledger
//
// a failure to reach one peer does not stop the others, the returned
// error names the last peer that failed
func (b *RouteBroadcaster) Broadcast(ctx context.Context) error {
	unreachable := b.withdrawals()
	holdDown := int64(b.conf.RouteExpiry / time.Millisecond)

	var (
		g       errgroup.Group
		mu      sync.Mutex
		lastErr error
		sent    int
	)

	for _, ledgerPrefix := range b.ledgers.Prefixes() {
		plugin, err := b.ledgers.Plugin(ledgerPrefix)
		if nil != err {
			b.log.Warnf("ledger: %s  error: %s", ledgerPrefix, err)
			continue
		}
		account := plugin.GetAccount()

		for _, peer := range plugin.GetInfo().Connectors {
			if peer == account {
				continue
			}

			update := messagerouter.RoutingUpdate{
				NewRoutes:            b.tables.Advertisements(ledgerPrefix, peer),
				HoldDownTime:         holdDown,
				UnreachableThroughMe: unreachable,
			}
			data, err := json.Marshal(update)
			if nil != err {
				b.log.Errorf("encode routes for: %s  error: %s", peer, err)
				continue
			}
			message := ledger.Message{
				Ledger: ledgerPrefix,
				From:   account,
				To:     peer,
				Custom: &ledger.Custom{
					Method: ledger.MethodBroadcastRoutes,
					Data:   data,
				},
			}

			p := plugin
			to := peer
			count := len(update.NewRoutes)
			g.Go(func() error {
				_, err := p.SendRequest(ctx, message)
				b.metrics.Broadcast(err)
				mu.Lock()
				defer mu.Unlock()
				if nil != err {
					b.log.Warnf("broadcast to: %s  error: %s", to, err)
					lastErr = errors.Wrapf(err, "broadcast to: %s", to)
					return nil
				}
				b.log.Debugf("broadcast to: %s  routes: %d  unreachable: %d", to, count, len(unreachable))
				sent += 1
				return nil
			})
		}
	}
	_ = g.Wait()

	b.log.Infof("broadcast sent: %d", sent)
	return lastErr
}

// RemoveExpiredRoutes - drop routes of peers that stopped announcing
// and withdraw them in the next broadcast
func (b *RouteBroadcaster) RemoveExpiredRoutes() []string {
	lost := b.tables.RemoveExpiredRoutes()
	if 0 != len(lost) {
		b.log.Infof("expired routes to: %v", lost)
		b.MarkLedgersUnreachable(lost)
	}
	b.metrics.SetRoutes(len(b.tables.Routes()))
	return lost
}

// route count changes are queued for listeners
func (b *RouteBroadcaster) changed() {
	count := len(b.tables.Routes())
	b.metrics.SetRoutes(count)
	buffer, err := json.Marshal(b.tables.Learned())
	if nil != err {
		b.log.Errorf("encode learned routes error: %s", err)
		return
	}
	messagebus.Bus.Routes.Send(busCommand, buffer)
}
