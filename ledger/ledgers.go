// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"context"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/prefix"
)

// Ledgers - the plugins of every ledger the connector is on
type Ledgers struct {
	sync.RWMutex
	log      *logger.L
	plugins  *prefix.Map[Plugin]
	inFlight sync.WaitGroup
}

// New - empty registry
func New(log *logger.L) *Ledgers {
	return &Ledgers{
		log:     log,
		plugins: prefix.New[Plugin](),
	}
}

// Add - register a plugin under the prefix it reports
func (l *Ledgers) Add(plugin Plugin) error {
	p := plugin.GetInfo().Prefix
	if !prefix.IsValidPrefix(p) {
		return fault.InvalidError("invalid ledger prefix: " + p)
	}

	l.Lock()
	defer l.Unlock()

	if _, ok := l.plugins.Get(p); ok {
		return fault.ErrDuplicateLedger
	}
	l.plugins.Insert(p, plugin)
	l.log.Infof("added ledger: %s  account: %s", p, plugin.GetAccount())
	return nil
}

// Plugin - plugin of a ledger prefix
func (l *Ledgers) Plugin(ledger string) (Plugin, error) {
	l.RLock()
	defer l.RUnlock()

	p, ok := l.plugins.Get(ledger)
	if !ok {
		return nil, fault.ErrLedgerNotFound
	}
	return p, nil
}

// Resolve - ledger prefix and plugin an address belongs to
func (l *Ledgers) Resolve(address string) (string, Plugin, bool) {
	l.RLock()
	defer l.RUnlock()
	return l.plugins.Resolve(address)
}

// Prefixes - sorted prefixes of all ledgers
func (l *Ledgers) Prefixes() []string {
	l.RLock()
	defer l.RUnlock()
	return l.plugins.Keys()
}

// Account - connector's own account on a ledger, empty if unknown
func (l *Ledgers) Account(ledger string) string {
	p, err := l.Plugin(ledger)
	if nil != err {
		return ""
	}
	return p.GetAccount()
}

// IsConnected - false for unknown or disconnected ledgers
func (l *Ledgers) IsConnected(ledger string) bool {
	p, err := l.Plugin(ledger)
	if nil != err {
		return false
	}
	return p.IsConnected()
}

// Connect - connect every plugin, stops at the first failure
func (l *Ledgers) Connect(ctx context.Context) error {
	for _, ledger := range l.Prefixes() {
		p, _ := l.Plugin(ledger)
		if err := p.Connect(ctx); nil != err {
			l.log.Errorf("connect ledger: %s  error: %s", ledger, err)
			return err
		}
		l.log.Infof("connected ledger: %s", ledger)
	}
	return nil
}

// Disconnect - disconnect every plugin and wait for events in flight
func (l *Ledgers) Disconnect() {
	for _, ledger := range l.Prefixes() {
		p, _ := l.Plugin(ledger)
		if err := p.Disconnect(); nil != err {
			l.log.Warnf("disconnect ledger: %s  error: %s", ledger, err)
		}
	}
	l.inFlight.Wait()
}

// Register - route the events and requests of every plugin
//
// each transfer event is handled by its own goroutine so that
// unrelated transfers never wait on each other
func (l *Ledgers) Register(events EventHandler, requests RequestHandler) {
	d := &dispatcher{
		log:      l.log,
		handler:  events,
		inFlight: &l.inFlight,
	}
	for _, ledger := range l.Prefixes() {
		p, _ := l.Plugin(ledger)
		p.RegisterEventHandler(d)
		p.RegisterRequestHandler(requests)
	}
}

// dispatcher - runs each event as an independent task
type dispatcher struct {
	log      *logger.L
	handler  EventHandler
	inFlight *sync.WaitGroup
}

func (d *dispatcher) spawn(ctx context.Context, event string, id string, f func(ctx context.Context) error) {
	d.inFlight.Add(1)
	go func() {
		defer d.inFlight.Done()
		if err := f(context.WithoutCancel(ctx)); nil != err {
			d.log.Errorf("%s: %s  error: %s", event, id, err)
		}
	}()
}

func (d *dispatcher) IncomingPrepare(ctx context.Context, transfer Transfer) error {
	d.spawn(ctx, "incoming_prepare", transfer.ID, func(ctx context.Context) error {
		return d.handler.IncomingPrepare(ctx, transfer)
	})
	return nil
}

func (d *dispatcher) IncomingTransfer(ctx context.Context, transfer Transfer) error {
	d.spawn(ctx, "incoming_transfer", transfer.ID, func(ctx context.Context) error {
		return d.handler.IncomingTransfer(ctx, transfer)
	})
	return nil
}

func (d *dispatcher) OutgoingFulfill(ctx context.Context, transfer Transfer, fulfillment string) error {
	d.spawn(ctx, "outgoing_fulfill", transfer.ID, func(ctx context.Context) error {
		return d.handler.OutgoingFulfill(ctx, transfer, fulfillment)
	})
	return nil
}

func (d *dispatcher) OutgoingReject(ctx context.Context, transfer Transfer, reason *fault.TransferError) error {
	d.spawn(ctx, "outgoing_reject", transfer.ID, func(ctx context.Context) error {
		return d.handler.OutgoingReject(ctx, transfer, reason)
	})
	return nil
}

func (d *dispatcher) OutgoingCancel(ctx context.Context, transfer Transfer, reason *fault.TransferError) error {
	d.spawn(ctx, "outgoing_cancel", transfer.ID, func(ctx context.Context) error {
		return d.handler.OutgoingCancel(ctx, transfer, reason)
	})
	return nil
}
