// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the contract between the connector and the
// adapters for each ledger it holds an account on
package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/michielbdejong/ilp-connector/fault"
)

//go:generate mockgen -source=plugin.go -destination=mocks/plugin.go -package=mocks

// Direction - incoming or outgoing relative to the connector
type Direction string

// transfer directions
const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

// NoteToSelf - correlation record carried by an outgoing transfer
type NoteToSelf struct {
	SourceTransferID     string `json:"source_transfer_id"`
	SourceTransferLedger string `json:"source_transfer_ledger"`
	SourceTransferAmount string `json:"source_transfer_amount"`
}

// Transfer - a transfer as seen by the connector
type Transfer struct {
	ID                 string      `json:"id"`
	Direction          Direction   `json:"direction"`
	Ledger             string      `json:"ledger"`
	Account            string      `json:"account"`
	Amount             string      `json:"amount"`
	ExecutionCondition string      `json:"executionCondition,omitempty"`
	ExpiresAt          time.Time   `json:"expiresAt"`
	Ilp                []byte      `json:"ilp,omitempty"`
	NoteToSelf         *NoteToSelf `json:"noteToSelf,omitempty"`
	Cases              []string    `json:"cases,omitempty"`
}

// Info - static description of a ledger
type Info struct {
	Prefix       string   `json:"prefix"`
	CurrencyCode string   `json:"currency_code"`
	Precision    int      `json:"precision"`
	Scale        int      `json:"scale"`
	Connectors   []string `json:"connectors"`
}

// Custom - a method call between connectors
type Custom struct {
	Method string          `json:"method"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// message methods
const (
	MethodBroadcastRoutes = "broadcast_routes"
	MethodQuoteRequest    = "quote_request"
	MethodQuoteResponse   = "quote_response"
	MethodError           = "error"
)

// Message - a message between two accounts on one ledger
//
// carries either a binary packet or a custom method call
type Message struct {
	Ledger string  `json:"ledger"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Ilp    []byte  `json:"ilp,omitempty"`
	Custom *Custom `json:"custom,omitempty"`
}

// EventHandler - receives transfer events from a ledger
type EventHandler interface {
	IncomingPrepare(ctx context.Context, transfer Transfer) error
	IncomingTransfer(ctx context.Context, transfer Transfer) error
	OutgoingFulfill(ctx context.Context, transfer Transfer, fulfillment string) error
	OutgoingReject(ctx context.Context, transfer Transfer, reason *fault.TransferError) error
	OutgoingCancel(ctx context.Context, transfer Transfer, reason *fault.TransferError) error
}

// RequestHandler - answers a message addressed to the connector
type RequestHandler interface {
	HandleRequest(ctx context.Context, request Message) (Message, error)
}

// Plugin - adapter for one ledger account
type Plugin interface {
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool
	GetInfo() Info
	GetAccount() string
	GetBalance(ctx context.Context) (string, error)
	SendTransfer(ctx context.Context, transfer Transfer) error
	SendRequest(ctx context.Context, message Message) (Message, error)
	FulfillCondition(ctx context.Context, transferID string, fulfillment string) error
	RejectIncomingTransfer(ctx context.Context, transferID string, reason *fault.TransferError) error
	RegisterEventHandler(handler EventHandler)
	RegisterRequestHandler(handler RequestHandler)
}
