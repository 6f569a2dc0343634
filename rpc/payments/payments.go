// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package payments

import (
	"encoding/hex"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/rpc/ratelimit"
	"github.com/michielbdejong/ilp-connector/storage"
)

const (
	rateLimitPayments = 200
	rateBurstPayments = 100
)

// limit for count
const maximumPaymentList = 100

// Records - stored payment records
type Records interface {
	Get(ledger string, transferID string) (*storage.Payment, error)
	List(start []byte, count int) ([]*storage.Payment, []byte, error)
}

// Payments - type for RPC calls
type Payments struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Records Records
}

// New - create the payments RPC handler
func New(log *logger.L, records Records) *Payments {
	return &Payments{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitPayments, rateBurstPayments),
		Records: records,
	}
}

// GetArguments - the incoming transfer to look up
type GetArguments struct {
	Ledger     string `json:"ledger"`
	TransferID string `json:"transfer_id"`
}

// Get - the record of one incoming transfer
func (payments *Payments) Get(arguments *GetArguments, reply *storage.Payment) error {

	if err := ratelimit.Limit(payments.Limiter); nil != err {
		return err
	}
	if "" == arguments.Ledger || "" == arguments.TransferID {
		return fault.ErrMissingParameters
	}

	p, err := payments.Records.Get(arguments.Ledger, arguments.TransferID)
	if nil != err {
		return err
	}
	*reply = *p
	return nil
}

// ListArguments - position is the hex key returned by a previous call
type ListArguments struct {
	Start string `json:"start"`
	Count int    `json:"count"`
}

// ListReply - a page of payment records
type ListReply struct {
	Payments  []*storage.Payment `json:"payments"`
	NextStart string             `json:"next_start"`
}

// List - page through the payment records
func (payments *Payments) List(arguments *ListArguments, reply *ListReply) error {

	if err := ratelimit.LimitN(payments.Limiter, arguments.Count, maximumPaymentList); nil != err {
		return err
	}

	var start []byte
	if "" != arguments.Start {
		s, err := hex.DecodeString(arguments.Start)
		if nil != err {
			return fault.ErrInvalidStart
		}
		start = s
	}

	records, next, err := payments.Records.List(start, arguments.Count)
	if nil != err {
		return err
	}

	reply.Payments = records
	reply.NextStart = hex.EncodeToString(next)
	if nil == next {
		reply.NextStart = arguments.Start
	}
	return nil
}
