// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package forwarder

import (
	"context"
	"time"

	"github.com/pborman/uuid"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/packet"
	"github.com/michielbdejong/ilp-connector/storage"
)

func newTransferID() string {
	return uuid.NewRandom().String()
}

// IncomingPrepare - a transfer held for the connector
func (f *Forwarder) IncomingPrepare(ctx context.Context, transfer ledger.Transfer) error {
	return f.forward(ctx, transfer)
}

// IncomingTransfer - an optimistic transfer already credited to the
// connector
func (f *Forwarder) IncomingTransfer(ctx context.Context, transfer ledger.Transfer) error {
	return f.forward(ctx, transfer)
}

func (f *Forwarder) forward(ctx context.Context, transfer ledger.Transfer) error {
	p, fresh := f.receive(transfer)
	if !fresh {
		return nil
	}

	sourcePlugin, err := f.ledgers.Plugin(transfer.Ledger)
	if nil != err {
		f.log.Errorf("transfer: %s  on unknown ledger: %s", transfer.ID, transfer.Ledger)
		return err
	}
	self := sourcePlugin.GetAccount()

	payment, err := packet.UnpackPayment(transfer.Ilp)
	if nil != err {
		f.log.Warnf("transfer: %s  invalid packet: %s", transfer.ID, err)
		f.reject(ctx, sourcePlugin, p, fault.NewTransferError(fault.CodeInvalidPacket, fault.NameInvalidPacket, messageInvalidPacket, self))
		return nil
	}

	now := f.now()
	var expiresAt time.Time
	if !transfer.ExpiresAt.IsZero() {
		if transfer.ExpiresAt.Before(now) {
			f.reject(ctx, sourcePlugin, p, fault.NewTransferError(fault.CodeInsufficientTimeout, fault.NameInsufficientTimeout, messageAlreadyExpired, self))
			return nil
		}
		expiresAt = transfer.ExpiresAt.Add(-f.conf.MinMessageWindow)
		if expiresAt.Before(now) {
			f.reject(ctx, sourcePlugin, p, fault.NewTransferError(fault.CodeInsufficientTimeout, fault.NameInsufficientTimeout, messageNotEnoughTime, self))
			return nil
		}
	}

	// atomic mode: the cases decide the expiry, a transfer whose cases
	// cannot be agreed is left to time out
	if 0 != len(transfer.Cases) {
		if nil == f.notary {
			f.log.Warnf("transfer: %s  has cases but no notary is configured", transfer.ID)
			f.update(p, storage.StateValidating, "atomic mode not supported")
			return nil
		}
		expiresAt, err = f.notary.Expiry(ctx, transfer.Cases, now)
		if nil != err {
			f.log.Warnf("transfer: %s  cases: %v  not forwarded: %s", transfer.ID, transfer.Cases, err)
			f.update(p, storage.StateValidating, err.Error())
			return nil
		}
	}

	f.update(p, storage.StateQuoting, "")

	hop, err := f.router.NextHop(ctx, transfer.Ledger, transfer.Amount, payment)
	if nil != err {
		f.log.Warnf("transfer: %s  to: %s  no next hop: %s", transfer.ID, payment.Account, err)
		code, name := fault.CodeOf(err)
		f.reject(ctx, sourcePlugin, p, fault.NewTransferError(code, name, err.Error(), self))
		return nil
	}

	outgoing := ledger.Transfer{
		ID:                 f.newID(),
		Direction:          ledger.Outgoing,
		Ledger:             hop.Ledger,
		Account:            hop.Account,
		Amount:             hop.Amount,
		ExecutionCondition: transfer.ExecutionCondition,
		ExpiresAt:          expiresAt,
		Ilp:                transfer.Ilp,
		NoteToSelf: &ledger.NoteToSelf{
			SourceTransferID:     transfer.ID,
			SourceTransferLedger: transfer.Ledger,
			SourceTransferAmount: transfer.Amount,
		},
		Cases: transfer.Cases,
	}
	p.OutgoingLedger = outgoing.Ledger
	p.OutgoingTransferID = outgoing.ID
	p.OutgoingAmount = outgoing.Amount

	// recorded first, the outcome of the outgoing transfer can arrive
	// before SendTransfer returns
	f.update(p, storage.StateForwarded, "")

	err = f.send(ctx, outgoing)
	if nil != err {
		f.log.Errorf("transfer: %s  outgoing: %s  on: %s  error: %s", transfer.ID, outgoing.ID, outgoing.Ledger, err)
		f.reject(ctx, sourcePlugin, p, fault.NewTransferError(fault.CodeLedgerUnreachable, fault.NameLedgerUnreachable, messageTransferFailed+err.Error(), outgoing.Account))
		return err
	}

	f.log.Infof("transfer: %s  forwarded as: %s  to: %s  amount: %s", transfer.ID, outgoing.ID, outgoing.Account, outgoing.Amount)
	if "" == outgoing.ExecutionCondition {
		f.update(p, storage.StateFulfilled, "")
	}
	return nil
}

// submit the outgoing transfer
func (f *Forwarder) send(ctx context.Context, outgoing ledger.Transfer) error {
	plugin, err := f.ledgers.Plugin(outgoing.Ledger)
	if nil != err {
		return err
	}
	return plugin.SendTransfer(ctx, outgoing)
}

// reject an incoming transfer, a ledger refusing the rejection is
// only logged
func (f *Forwarder) reject(ctx context.Context, plugin ledger.Plugin, p *storage.Payment, reason *fault.TransferError) {
	f.log.Infof("transfer: %s  rejected: %s", p.TransferID, reason)
	if err := plugin.RejectIncomingTransfer(ctx, p.TransferID, reason); nil != err {
		f.log.Warnf("transfer: %s  reject error: %s", p.TransferID, err)
	}
	f.update(p, storage.StateRejected, reason.Error())
}
