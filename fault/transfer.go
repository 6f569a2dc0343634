// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// ILP error codes used when rejecting a transfer
const (
	CodeInternalError       = "T00"
	CodeLedgerUnreachable   = "T01"
	CodeInvalidPacket       = "S01"
	CodeUnreachable         = "F02"
	CodeTransferTimedOut    = "R00"
	CodeInsufficientAmount  = "R01"
	CodeInsufficientTimeout = "R03"
)

// ILP error names matching the codes above
const (
	NameInternalError       = "Internal Error"
	NameLedgerUnreachable   = "Ledger Unreachable"
	NameInvalidPacket       = "Invalid Packet"
	NameUnreachable         = "Unreachable"
	NameTransferTimedOut    = "Transfer Timed Out"
	NameInsufficientAmount  = "Insufficient Source Amount"
	NameInsufficientTimeout = "Insufficient Timeout"
)

// TransferError - the reason attached to a rejected transfer
//
// a connector relaying a rejection sets ForwardedBy and keeps
// every other field as it was received
type TransferError struct {
	Code           string                 `json:"code"`
	Name           string                 `json:"name"`
	Message        string                 `json:"message"`
	TriggeredBy    string                 `json:"triggered_by"`
	ForwardedBy    string                 `json:"forwarded_by,omitempty"`
	TriggeredAt    string                 `json:"triggered_at,omitempty"`
	AdditionalInfo map[string]interface{} `json:"additional_info"`
}

// Error - the error interface
func (e *TransferError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Code, e.Name, e.Message)
}

// Forwarded - copy of the error marked with the relaying connector
func (e *TransferError) Forwarded(by string) *TransferError {
	f := *e
	f.ForwardedBy = by
	if nil == f.AdditionalInfo {
		f.AdditionalInfo = map[string]interface{}{}
	}
	return &f
}

// NewTransferError - build a rejection reason
func NewTransferError(code string, name string, message string, triggeredBy string) *TransferError {
	return &TransferError{
		Code:           code,
		Name:           name,
		Message:        message,
		TriggeredBy:    triggeredBy,
		AdditionalInfo: map[string]interface{}{},
	}
}

// CodeOf - map an error kind onto an ILP code and name
func CodeOf(e error) (string, string) {
	switch {
	case IsErrNoRouteFound(e), IsErrAssetsNotTraded(e):
		return CodeUnreachable, NameUnreachable
	case IsErrUnacceptableAmount(e), IsErrUnacceptableRate(e), IsErrAmountTooLarge(e):
		return CodeInsufficientAmount, NameInsufficientAmount
	case IsErrUnacceptableExpiry(e):
		return CodeInsufficientTimeout, NameInsufficientTimeout
	case IsErrLedgerNotConnected(e), IsErrExternal(e):
		return CodeLedgerUnreachable, NameLedgerUnreachable
	case IsErrInvalidBody(e), IsErrInvalidAmountSpecified(e), IsErrNoAmountSpecified(e):
		return CodeInvalidPacket, NameInvalidPacket
	default:
		return CodeInternalError, NameInternalError
	}
}
