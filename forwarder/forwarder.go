// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package forwarder - pass incoming transfers on to the next ledger
// and relay their outcome back
//
// an incoming transfer moves through the states:
//
//   received → validating → quoting → forwarded → fulfilled | rejected | expired
//
// the outgoing transfer carries a note with the incoming transfer's
// ledger, id and amount so its fulfillment or rejection can be
// relayed without any in-memory state
package forwarder

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/messagebus"
	"github.com/michielbdejong/ilp-connector/metrics"
	"github.com/michielbdejong/ilp-connector/packet"
	"github.com/michielbdejong/ilp-connector/quoter"
	"github.com/michielbdejong/ilp-connector/storage"
)

// command of payment messages on the bus
const busCommand = "payment"

// rejection messages
const (
	messageInvalidPacket  = "source transfer has invalid ILP packet"
	messageAlreadyExpired = "Transfer has already expired"
	messageNotEnoughTime  = "Not enough time to send payment"
	messageTransferFailed = "destination transfer failed: "
)

// Configuration - forwarding limits
type Configuration struct {
	MinMessageWindow time.Duration // outgoing expiry is this much before the incoming one
}

// Ledgers - plugins of the connector
type Ledgers interface {
	Plugin(ledger string) (ledger.Plugin, error)
}

// Router - chooses the outgoing transfer
type Router interface {
	NextHop(ctx context.Context, sourceLedger string, amount string, payment *packet.Payment) (*quoter.NextHop, error)
}

// Notary - agreed expiry of atomic cases
type Notary interface {
	Expiry(ctx context.Context, cases []string, now time.Time) (time.Time, error)
}

// Records - payment records
type Records interface {
	Get(ledger string, transferID string) (*storage.Payment, error)
	Put(p *storage.Payment) error
}

// Forwarder - handles the transfer events of every ledger
type Forwarder struct {
	log     *logger.L
	lock    sync.Mutex // serialises changes to payment records
	conf    Configuration
	ledgers Ledgers
	router  Router
	notary  Notary
	records Records
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// New - create a forwarder
//
// notary may be nil if atomic payments are not supported, m may be nil
func New(log *logger.L, conf Configuration, ledgers Ledgers, router Router, notary Notary, records Records, m *metrics.Metrics) *Forwarder {
	return &Forwarder{
		log:     log,
		conf:    conf,
		ledgers: ledgers,
		router:  router,
		notary:  notary,
		records: records,
		metrics: m,
		now:     time.Now,
		newID:   newTransferID,
	}
}

// SetClock - replace the time source
func (f *Forwarder) SetClock(now func() time.Time) {
	f.now = now
}

// record a state change and queue it for publication
//
// the stored record is read first, a record never moves back to an
// earlier state and a final state is never replaced, returns false if
// the change was not applied
func (f *Forwarder) update(p *storage.Payment, state storage.PaymentState, reason string) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.advance(p, state, reason)
}

// caller must hold the lock
func (f *Forwarder) advance(p *storage.Payment, state storage.PaymentState, reason string) bool {
	current, err := f.records.Get(p.Ledger, p.TransferID)
	if nil == err {
		if current.State.IsFinal() || state.Precedes(current.State) {
			f.log.Debugf("payment: %s  is: %s  ignored: %s", p.TransferID, current.State, state)
			p.State = current.State
			p.Reason = current.Reason
			return false
		}
		if "" == p.OutgoingTransferID {
			p.OutgoingLedger = current.OutgoingLedger
			p.OutgoingTransferID = current.OutgoingTransferID
			p.OutgoingAmount = current.OutgoingAmount
		}
	} else if !fault.IsErrNotFound(err) {
		f.log.Errorf("payment: %s  read error: %s", p.TransferID, err)
	}

	p.State = state
	p.Reason = reason
	p.Modified = f.now().UTC()

	if err := f.records.Put(p); nil != err {
		f.log.Errorf("payment: %s  state: %s  record error: %s", p.TransferID, state, err)
	}
	if state.IsFinal() {
		f.metrics.Transfer(string(state))
	}

	buffer, err := json.Marshal(p)
	if nil != err {
		f.log.Errorf("payment: %s  encode error: %s", p.TransferID, err)
		return true
	}
	if !messagebus.Bus.Payments.Send(busCommand, buffer) {
		f.log.Debugf("payment: %s  queue full", p.TransferID)
	}
	return true
}

// claim an incoming transfer by moving its record to validating
//
// the second result is false if the transfer was already handled
func (f *Forwarder) receive(transfer ledger.Transfer) (*storage.Payment, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()

	p, err := f.records.Get(transfer.Ledger, transfer.ID)
	if nil == err && storage.StateReceived != p.State {
		f.log.Infof("transfer: %s  on: %s  already: %s", transfer.ID, transfer.Ledger, p.State)
		return p, false
	}
	if nil != err {
		if !fault.IsErrNotFound(err) {
			f.log.Errorf("transfer: %s  on: %s  record error: %s", transfer.ID, transfer.Ledger, err)
		}
		p = &storage.Payment{
			Ledger:     transfer.Ledger,
			TransferID: transfer.ID,
			Amount:     transfer.Amount,
		}
		f.advance(p, storage.StateReceived, "")
	}
	f.advance(p, storage.StateValidating, "")
	return p, true
}

// record of the incoming transfer named by an outgoing transfer's note
func (f *Forwarder) source(note *ledger.NoteToSelf) *storage.Payment {
	p, err := f.records.Get(note.SourceTransferLedger, note.SourceTransferID)
	if nil == err {
		return p
	}
	return &storage.Payment{
		Ledger:     note.SourceTransferLedger,
		TransferID: note.SourceTransferID,
		Amount:     note.SourceTransferAmount,
	}
}
