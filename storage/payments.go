// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/michielbdejong/ilp-connector/fault"
)

// PaymentState - progress of an incoming transfer through the connector
type PaymentState string

// payment states in the order they are reached
const (
	StateReceived   PaymentState = "received"
	StateValidating PaymentState = "validating"
	StateQuoting    PaymentState = "quoting"
	StateForwarded  PaymentState = "forwarded"
	StateFulfilled  PaymentState = "fulfilled"
	StateRejected   PaymentState = "rejected"
	StateExpired    PaymentState = "expired"
)

// IsFinal - no further change is possible
func (s PaymentState) IsFinal() bool {
	switch s {
	case StateFulfilled, StateRejected, StateExpired:
		return true
	default:
		return false
	}
}

// Precedes - true if s is reached before other
func (s PaymentState) Precedes(other PaymentState) bool {
	return s.rank() < other.rank()
}

func (s PaymentState) rank() int {
	switch s {
	case StateReceived:
		return 0
	case StateValidating:
		return 1
	case StateQuoting:
		return 2
	case StateForwarded:
		return 3
	default:
		return 4
	}
}

// Payment - the record of one incoming transfer
type Payment struct {
	Ledger             string       `json:"ledger"`
	TransferID         string       `json:"transfer_id"`
	Amount             string       `json:"amount"`
	State              PaymentState `json:"state"`
	OutgoingLedger     string       `json:"outgoing_ledger,omitempty"`
	OutgoingTransferID string       `json:"outgoing_transfer_id,omitempty"`
	OutgoingAmount     string       `json:"outgoing_amount,omitempty"`
	Reason             string       `json:"reason,omitempty"`
	Modified           time.Time    `json:"modified"`
}

func paymentKey(ledger string, transferID string) []byte {
	return []byte(ledger + "\x00" + transferID)
}

// Payments - payment records kept in the payments pool
type Payments struct{}

// Get - read a payment record
func (Payments) Get(ledger string, transferID string) (*Payment, error) {
	buffer, err := Pool.Payments.Get(paymentKey(ledger, transferID))
	if nil != err {
		return nil, err
	}
	if nil == buffer {
		return nil, fault.ErrPaymentNotFound
	}
	var p Payment
	if err := json.Unmarshal(buffer, &p); nil != err {
		return nil, errors.Wrap(err, "decode payment")
	}
	return &p, nil
}

// Put - write a payment record
func (Payments) Put(p *Payment) error {
	if "" == p.Ledger || "" == p.TransferID {
		return fault.ErrMissingParameters
	}
	buffer, err := json.Marshal(p)
	if nil != err {
		return errors.Wrap(err, "encode payment")
	}
	return Pool.Payments.Put(paymentKey(p.Ledger, p.TransferID), buffer)
}

// List - up to count payment records after a position
//
// returns the records and the position to continue from
func (Payments) List(start []byte, count int) ([]*Payment, []byte, error) {
	cursor := Pool.Payments.NewFetchCursor()
	if nil == cursor {
		return nil, nil, fault.ErrNotInitialised
	}
	if nil != start {
		key := make([]byte, len(start), len(start)+1)
		copy(key, start)
		cursor.Seek(append(key, 0x00))
	}
	elements, err := cursor.Fetch(count)
	if nil != err {
		return nil, nil, err
	}

	payments := make([]*Payment, 0, len(elements))
	var next []byte
	for _, e := range elements {
		var p Payment
		if err := json.Unmarshal(e.Value, &p); nil != err {
			return nil, nil, errors.Wrap(err, "decode payment")
		}
		payments = append(payments, &p)
		next = e.Key
	}
	return payments, next, nil
}
