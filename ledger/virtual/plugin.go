// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package virtual

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/liquidity"
)

// Plugin - one account of a virtual ledger
type Plugin struct {
	sync.RWMutex

	ledger    *Ledger
	account   string
	connected bool
	events    ledger.EventHandler
	requests  ledger.RequestHandler
}

// Connect - mark connected
func (p *Plugin) Connect(ctx context.Context) error {
	p.Lock()
	defer p.Unlock()
	p.connected = true
	return nil
}

// Disconnect - mark disconnected
func (p *Plugin) Disconnect() error {
	p.Lock()
	defer p.Unlock()
	p.connected = false
	return nil
}

// IsConnected - connection flag
func (p *Plugin) IsConnected() bool {
	p.RLock()
	defer p.RUnlock()
	return p.connected
}

// GetInfo - description of the ledger
func (p *Plugin) GetInfo() ledger.Info {
	return p.ledger.info
}

// GetAccount - the account this plugin operates
func (p *Plugin) GetAccount() string {
	return p.account
}

// GetBalance - current balance of the account
func (p *Plugin) GetBalance(ctx context.Context) (string, error) {
	if !p.IsConnected() {
		return "", p.notConnected()
	}
	return p.ledger.Balance(p.account)
}

// SendTransfer - debit this account and hold or credit the recipient
func (p *Plugin) SendTransfer(ctx context.Context, transfer ledger.Transfer) error {
	if !p.IsConnected() {
		return p.notConnected()
	}
	if "" == transfer.ID || "" == transfer.Account {
		return fault.ErrMissingParameters
	}
	amount, err := liquidity.ParseAmount(transfer.Amount)
	if nil != err {
		return err
	}
	if !liquidity.IsPositive(amount) {
		return fault.InvalidAmountSpecifiedError("transfer amount must be positive")
	}
	if !transfer.ExpiresAt.IsZero() && !time.Now().Before(transfer.ExpiresAt) {
		return fault.ErrTransferExpired
	}

	l := p.ledger
	l.Lock()
	if _, ok := l.balances[transfer.Account]; !ok {
		l.Unlock()
		return fault.ErrUnknownAccount
	}
	if _, ok := l.transfers[transfer.ID]; ok {
		l.Unlock()
		return fault.ErrDuplicateTransfer
	}
	if l.balances[p.account].Cmp(amount) < 0 {
		l.Unlock()
		return fault.ErrInsufficientLedgerBalance
	}

	r := &record{
		transfer: transfer,
		from:     p.account,
		amount:   amount,
		state:    StatePrepared,
	}
	r.transfer.Amount = liquidity.FormatAmount(amount)
	l.balances[p.account] = new(big.Rat).Sub(l.balances[p.account], amount)
	if "" == transfer.ExecutionCondition {
		r.state = StateExecuted
		l.credit(transfer.Account, amount)
	}
	l.transfers[transfer.ID] = r
	incoming := l.incoming(r)
	l.Unlock()

	l.log.Infof("transfer: %s  from: %s  to: %s  amount: %s  state: %s", transfer.ID, p.account, transfer.Account, r.transfer.Amount, r.state)

	h := l.events(transfer.Account)
	if nil == h {
		return nil
	}
	if StateExecuted == r.state {
		err = h.IncomingTransfer(ctx, incoming)
	} else {
		err = h.IncomingPrepare(ctx, incoming)
	}
	if nil != err {
		l.log.Warnf("incoming event: %s  error: %s", transfer.ID, err)
	}
	return nil
}

// SendRequest - deliver a message to another account of the ledger
// and return its reply
func (p *Plugin) SendRequest(ctx context.Context, message ledger.Message) (ledger.Message, error) {
	if !p.IsConnected() {
		return ledger.Message{}, p.notConnected()
	}

	l := p.ledger
	l.Lock()
	recipient, ok := l.plugins[message.To]
	l.Unlock()
	if !ok {
		return ledger.Message{}, fault.ErrUnknownAccount
	}

	recipient.RLock()
	handler := recipient.requests
	connected := recipient.connected
	recipient.RUnlock()
	if nil == handler || !connected {
		return ledger.Message{}, fault.ExternalError("no reply from: " + message.To)
	}

	message.Ledger = l.info.Prefix
	message.From = p.account
	reply, err := handler.HandleRequest(ctx, message)
	if nil != err {
		return ledger.Message{}, err
	}
	reply.Ledger = l.info.Prefix
	reply.From = message.To
	reply.To = p.account
	return reply, nil
}

// FulfillCondition - execute a transfer held for this account
func (p *Plugin) FulfillCondition(ctx context.Context, transferID string, fulfillment string) error {
	if !p.IsConnected() {
		return p.notConnected()
	}

	l := p.ledger
	l.Lock()
	r, err := p.held(transferID)
	if nil != err {
		l.Unlock()
		return err
	}
	if "" == r.transfer.ExecutionCondition {
		l.Unlock()
		return fault.ErrTransferWithoutCondition
	}
	condition, err := Condition(fulfillment)
	if nil != err || condition != r.transfer.ExecutionCondition {
		l.Unlock()
		return fault.ErrUnexpectedFulfillment
	}
	r.state = StateExecuted
	l.credit(p.account, r.amount)
	outgoing := l.outgoing(r)
	l.Unlock()

	l.log.Infof("transfer: %s  executed", transferID)

	if h := l.events(r.from); nil != h {
		if err := h.OutgoingFulfill(ctx, outgoing, fulfillment); nil != err {
			l.log.Warnf("outgoing fulfill: %s  error: %s", transferID, err)
		}
	}
	return nil
}

// RejectIncomingTransfer - refuse a transfer held for this account
func (p *Plugin) RejectIncomingTransfer(ctx context.Context, transferID string, reason *fault.TransferError) error {
	if !p.IsConnected() {
		return p.notConnected()
	}

	l := p.ledger
	l.Lock()
	r, err := p.held(transferID)
	if nil != err {
		l.Unlock()
		return err
	}
	r.state = StateRejected
	l.credit(r.from, r.amount)
	outgoing := l.outgoing(r)
	l.Unlock()

	if nil == reason {
		reason = fault.NewTransferError(fault.CodeInternalError, fault.NameInternalError, "rejected", p.account)
	}
	l.log.Infof("transfer: %s  rejected: %s", transferID, reason)

	if h := l.events(r.from); nil != h {
		if err := h.OutgoingReject(ctx, outgoing, reason); nil != err {
			l.log.Warnf("outgoing reject: %s  error: %s", transferID, err)
		}
	}
	return nil
}

// RegisterEventHandler - receiver of transfer events of this account
func (p *Plugin) RegisterEventHandler(handler ledger.EventHandler) {
	p.Lock()
	defer p.Unlock()
	p.events = handler
}

// RegisterRequestHandler - receiver of messages to this account
func (p *Plugin) RegisterRequestHandler(handler ledger.RequestHandler) {
	p.Lock()
	defer p.Unlock()
	p.requests = handler
}

func (p *Plugin) notConnected() error {
	return fault.LedgerNotConnectedError(`No connection to ledger "` + p.ledger.info.Prefix + `"`)
}

// prepared transfer to this account, hold the ledger lock
func (p *Plugin) held(transferID string) (*record, error) {
	r, ok := p.ledger.transfers[transferID]
	if !ok || p.account != r.transfer.Account {
		return nil, fault.ErrTransferNotFound
	}
	switch r.state {
	case StateExecuted:
		return nil, fault.ErrTransferAlreadyExecuted
	case StateRejected:
		return nil, fault.ErrTransferAlreadyRejected
	}
	if !r.transfer.ExpiresAt.IsZero() && time.Now().After(r.transfer.ExpiresAt) {
		return nil, fault.ErrTransferExpired
	}
	return r, nil
}
