// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagerouter

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/quoter"
)

// QuoteRequest - payload of a quote_request message
//
// exactly one of the amounts must be given, durations are seconds
type QuoteRequest struct {
	ID                        string `json:"id"`
	SourceAddress             string `json:"source_address"`
	DestinationAddress        string `json:"destination_address"`
	SourceAmount              string `json:"source_amount,omitempty"`
	DestinationAmount         string `json:"destination_amount,omitempty"`
	DestinationExpiryDuration string `json:"destination_expiry_duration,omitempty"`
}

// QuoteResponse - payload of a quote_response message
type QuoteResponse struct {
	ID                        string `json:"id"`
	SourceConnectorAccount    string `json:"source_connector_account"`
	SourceLedger              string `json:"source_ledger"`
	SourceAmount              string `json:"source_amount"`
	DestinationLedger         string `json:"destination_ledger"`
	DestinationAmount         string `json:"destination_amount"`
	SourceExpiryDuration      string `json:"source_expiry_duration"`
	DestinationExpiryDuration string `json:"destination_expiry_duration"`
}

// ErrorResponse - payload of an error message
type ErrorResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (q *QuoteRequest) validate() error {
	if "" == q.SourceAddress {
		return fault.InvalidBodyError("Missing required parameter: source_address")
	}
	if "" == q.DestinationAddress {
		return fault.InvalidBodyError("Missing required parameter: destination_address")
	}
	if "" == q.SourceAmount && "" == q.DestinationAmount {
		return fault.NoAmountSpecifiedError("Exactly one of source_amount or destination_amount must be specified")
	}
	if "" != q.SourceAmount && "" != q.DestinationAmount {
		return fault.InvalidBodyError("Exactly one of source_amount or destination_amount must be specified")
	}
	return nil
}

func (q *QuoteRequest) holdDuration() (time.Duration, error) {
	if "" == q.DestinationExpiryDuration {
		return 0, nil
	}
	seconds, err := strconv.ParseFloat(q.DestinationExpiryDuration, 64)
	if nil != err || seconds < 0 {
		return 0, fault.InvalidBodyError("invalid destination_expiry_duration: " + q.DestinationExpiryDuration)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

// answer a JSON quote request with a quote_response or an error
func (r *Router) handleQuoteRequest(ctx context.Context, data json.RawMessage, sender string) *ledger.Custom {
	var request QuoteRequest
	response, err := r.quote(ctx, data, &request, sender)
	if nil != err {
		r.log.Debugf("quote request: %s  from: %s  error: %s", request.ID, sender, err)
		return custom(ledger.MethodError, ErrorResponse{
			ID:      request.ID,
			Name:    fault.Kind(err),
			Message: err.Error(),
		})
	}
	return custom(ledger.MethodQuoteResponse, response)
}

func (r *Router) quote(ctx context.Context, data json.RawMessage, request *QuoteRequest, sender string) (*QuoteResponse, error) {
	if err := decode(data, request); nil != err {
		return nil, err
	}
	if err := request.validate(); nil != err {
		return nil, err
	}
	hold, err := request.holdDuration()
	if nil != err {
		return nil, err
	}

	query := quoter.Query{
		SourceAccount:           request.SourceAddress,
		DestinationAccount:      request.DestinationAddress,
		SourceAmount:            request.SourceAmount,
		DestinationAmount:       request.DestinationAmount,
		DestinationHoldDuration: hold,
	}
	var q *quoter.Quote
	if "" != request.SourceAmount {
		q, err = r.quoter.QuoteBySourceAmount(ctx, query)
	} else {
		q, err = r.quoter.QuoteByDestinationAmount(ctx, query)
	}
	if nil != err {
		return nil, err
	}

	account, _ := r.tables.Account(q.SourceLedger)
	return &QuoteResponse{
		ID:                        request.ID,
		SourceConnectorAccount:    account,
		SourceLedger:              q.SourceLedger,
		SourceAmount:              q.SourceAmount,
		DestinationLedger:         q.NextLedger,
		DestinationAmount:         q.DestinationAmount,
		SourceExpiryDuration:      seconds(q.SourceHoldDuration),
		DestinationExpiryDuration: seconds(q.DestinationHoldDuration),
	}, nil
}

func custom(method string, v interface{}) *ledger.Custom {
	data, err := json.Marshal(v)
	fault.PanicIfError("marshal "+method, err)
	return &ledger.Custom{
		Method: method,
		Data:   data,
	}
}
