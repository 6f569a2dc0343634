// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package virtual

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/prefix"
)

// how often held transfers are checked for expiry
const sweepInterval = 500 * time.Millisecond

// State - of a transfer on the ledger
type State int

// transfer states
const (
	StateUnknown State = iota
	StatePrepared
	StateExecuted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StatePrepared:
		return "prepared"
	case StateExecuted:
		return "executed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type record struct {
	transfer ledger.Transfer // as submitted, Account is the recipient
	from     string
	amount   *big.Rat
	state    State
}

// Ledger - accounts and transfers under one prefix
type Ledger struct {
	sync.Mutex

	log       *logger.L
	info      ledger.Info
	balances  map[string]*big.Rat
	plugins   map[string]*Plugin
	transfers map[string]*record
}

// New - empty ledger
func New(info ledger.Info, log *logger.L) (*Ledger, error) {
	if !prefix.IsValidPrefix(info.Prefix) {
		return nil, fault.InvalidError("invalid ledger prefix: " + info.Prefix)
	}
	return &Ledger{
		log:       log,
		info:      info,
		balances:  make(map[string]*big.Rat),
		plugins:   make(map[string]*Plugin),
		transfers: make(map[string]*record),
	}, nil
}

// Prefix - of the ledger
func (l *Ledger) Prefix() string {
	return l.info.Prefix
}

// Open - create an account and return the plugin that operates it
func (l *Ledger) Open(account string, balance string) (*Plugin, error) {
	if !prefix.IsValidAddress(account) || !prefix.Matches(l.info.Prefix, account) {
		return nil, fault.InvalidError("account not on ledger " + l.info.Prefix + ": " + account)
	}
	amount, err := liquidity.ParseAmount(balance)
	if nil != err {
		return nil, err
	}

	l.Lock()
	defer l.Unlock()

	if _, ok := l.balances[account]; ok {
		return nil, fault.ExistsError("account already open: " + account)
	}
	l.balances[account] = amount
	p := &Plugin{
		ledger:  l,
		account: account,
	}
	l.plugins[account] = p
	l.log.Infof("open account: %s  balance: %s", account, balance)
	return p, nil
}

// Balance - of an account
func (l *Ledger) Balance(account string) (string, error) {
	l.Lock()
	defer l.Unlock()

	b, ok := l.balances[account]
	if !ok {
		return "", fault.ErrUnknownAccount
	}
	return liquidity.FormatAmount(b), nil
}

// State - of a transfer
func (l *Ledger) State(id string) State {
	l.Lock()
	defer l.Unlock()

	r, ok := l.transfers[id]
	if !ok {
		return StateUnknown
	}
	return r.state
}

// ExpireTransfers - return the funds of held transfers past their
// expiry and tell the senders
//
// returns the ids of the expired transfers
func (l *Ledger) ExpireTransfers(ctx context.Context, now time.Time) []string {
	l.Lock()
	expired := make([]*record, 0)
	for _, r := range l.transfers {
		if StatePrepared == r.state && !r.transfer.ExpiresAt.IsZero() && now.After(r.transfer.ExpiresAt) {
			r.state = StateRejected
			l.credit(r.from, r.amount)
			expired = append(expired, r)
		}
	}
	l.Unlock()

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].transfer.ID < expired[j].transfer.ID
	})

	ids := make([]string, len(expired))
	for i, r := range expired {
		ids[i] = r.transfer.ID
		l.log.Infof("transfer: %s  expired", r.transfer.ID)
		reason := fault.NewTransferError(fault.CodeTransferTimedOut, fault.NameTransferTimedOut, "transfer expired", l.info.Prefix)
		if h := l.events(r.from); nil != h {
			if err := h.OutgoingCancel(ctx, l.outgoing(r), reason); nil != err {
				l.log.Warnf("outgoing cancel: %s  error: %s", r.transfer.ID, err)
			}
		}
	}
	return ids
}

// Run - background expiry of held transfers
func (l *Ledger) Run(args interface{}, shutdown <-chan struct{}) {
	l.log.Info("starting…")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case now := <-ticker.C:
			l.ExpireTransfers(context.Background(), now)
		}
	}
	l.log.Info("stopped")
}

// internal routines, hold the lock before calling

func (l *Ledger) credit(account string, amount *big.Rat) {
	l.balances[account] = new(big.Rat).Add(l.balances[account], amount)
}

// transfer as the sender sees it
func (l *Ledger) outgoing(r *record) ledger.Transfer {
	t := r.transfer
	t.Direction = ledger.Outgoing
	t.Ledger = l.info.Prefix
	return t
}

// transfer as the recipient sees it
func (l *Ledger) incoming(r *record) ledger.Transfer {
	t := r.transfer
	t.Direction = ledger.Incoming
	t.Ledger = l.info.Prefix
	t.Account = r.from
	t.NoteToSelf = nil
	return t
}

// event handler of an account, nil if none, takes the plugin lock
func (l *Ledger) events(account string) ledger.EventHandler {
	l.Lock()
	p, ok := l.plugins[account]
	l.Unlock()
	if !ok {
		return nil
	}
	p.RLock()
	defer p.RUnlock()
	return p.events
}
