// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package forwarder

import (
	"context"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/storage"
)

// OutgoingFulfill - pass the fulfillment back to the incoming transfer
func (f *Forwarder) OutgoingFulfill(ctx context.Context, transfer ledger.Transfer, fulfillment string) error {
	note, err := noteOf(transfer)
	if nil != err {
		return err
	}
	p := f.source(note)

	plugin, err := f.ledgers.Plugin(note.SourceTransferLedger)
	if nil != err {
		f.log.Errorf("transfer: %s  source ledger: %s  error: %s", transfer.ID, note.SourceTransferLedger, err)
		return nil
	}
	if err := plugin.FulfillCondition(ctx, note.SourceTransferID, fulfillment); nil != err {
		f.log.Warnf("transfer: %s  source: %s  fulfill error: %s", transfer.ID, note.SourceTransferID, err)
		return nil
	}

	f.log.Infof("transfer: %s  fulfilled source: %s", transfer.ID, note.SourceTransferID)
	f.update(p, storage.StateFulfilled, "")
	return nil
}

// OutgoingReject - the next hop refused the transfer
func (f *Forwarder) OutgoingReject(ctx context.Context, transfer ledger.Transfer, reason *fault.TransferError) error {
	return f.relay(ctx, transfer, reason, storage.StateRejected)
}

// OutgoingCancel - the outgoing transfer expired on its ledger
func (f *Forwarder) OutgoingCancel(ctx context.Context, transfer ledger.Transfer, reason *fault.TransferError) error {
	return f.relay(ctx, transfer, reason, storage.StateExpired)
}

// reject the incoming transfer with the reason received, marked as
// passing through this connector
func (f *Forwarder) relay(ctx context.Context, transfer ledger.Transfer, reason *fault.TransferError, state storage.PaymentState) error {
	note, err := noteOf(transfer)
	if nil != err {
		return err
	}
	p := f.source(note)

	plugin, err := f.ledgers.Plugin(note.SourceTransferLedger)
	if nil != err {
		return err
	}
	if nil == reason {
		reason = fault.NewTransferError(fault.CodeInternalError, fault.NameInternalError, "no reason given", transfer.Ledger)
	}
	forwarded := reason.Forwarded(plugin.GetAccount())

	if err := plugin.RejectIncomingTransfer(ctx, note.SourceTransferID, forwarded); nil != err {
		f.log.Warnf("transfer: %s  source: %s  reject error: %s", transfer.ID, note.SourceTransferID, err)
		return err
	}

	f.log.Infof("transfer: %s  %s source: %s  reason: %s", transfer.ID, state, note.SourceTransferID, reason)
	f.update(p, state, forwarded.Error())
	return nil
}

func noteOf(transfer ledger.Transfer) (*ledger.NoteToSelf, error) {
	if nil == transfer.NoteToSelf || "" == transfer.NoteToSelf.SourceTransferID {
		return nil, fault.ErrMissingSourceTransferID
	}
	return transfer.NoteToSelf, nil
}
