// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised         = ExistsError("already initialised")
	ErrCaseExpired                = InvalidError("Transfer has already expired")
	ErrCaseExpiriesDisagree       = InvalidError("case expiries do not agree")
	ErrCaseExpiryMissing          = InvalidError("Cases must have an expiry.")
	ErrCaseExpiryTooFar           = InvalidError("Destination transfer expiry is too far in the future. The connector's money would need to be held for too long")
	ErrConnectorAccountMismatch   = InvalidError("source account does not belong to source ledger")
	ErrConfigurationNotTable      = InvalidError("configuration did not return a table")
	ErrDuplicateLedger            = ExistsError("ledger already registered")
	ErrDuplicateTransfer          = ExistsError("transfer id already used")
	ErrHoldDownTimeInvalid        = InvalidError("hold down time must be positive")
	ErrIncompleteCurve            = InvalidError("curve needs at least two points")
	ErrInsufficientLedgerBalance  = ProcessError("insufficient balance")
	ErrInvalidCount               = InvalidError("invalid count")
	ErrInvalidCurve               = InvalidError("curve points must be non-decreasing")
	ErrInvalidIPAddress           = InvalidError("invalid IP address")
	ErrInvalidLoggerChannel       = InvalidError("invalid logger channel")
	ErrInvalidPacketLength        = InvalidError("invalid packet length")
	ErrInvalidPortNumber          = InvalidError("invalid port number")
	ErrInvalidRate                = InvalidError("rate must be positive")
	ErrInvalidSpread              = InvalidError("spread must be between zero and one")
	ErrInvalidStart               = InvalidError("invalid start position")
	ErrInvalidStructPointer       = InvalidError("invalid struct pointer")
	ErrLedgerNotFound             = NotFoundError("ledger not found")
	ErrMissingParameters          = InvalidError("missing parameters")
	ErrMissingPublishTopic        = InvalidError("missing payments topic")
	ErrMissingSourceTransferID    = InvalidError("noteToSelf is missing source_transfer_id")
	ErrNotInitialised             = NotFoundError("not initialised")
	ErrPaymentNotFound            = NotFoundError("payment not found")
	ErrRateLimiting               = ProcessError("rate limiting")
	ErrReservedPrefix             = InvalidError("destination ledger uses the reserved peer prefix")
	ErrRouteNotFound              = NotFoundError("route not found")
	ErrSourceLedgerNotLocal       = InvalidError("source ledger is not a local ledger")
	ErrTransferAlreadyExecuted    = ExistsError("transfer already executed")
	ErrTransferAlreadyRejected    = ExistsError("transfer already rejected")
	ErrTransferExpired            = InvalidError("transfer has expired")
	ErrTransferNotFound           = NotFoundError("transfer not found")
	ErrTransferWithoutCondition   = InvalidError("transfer has no execution condition")
	ErrUnexpectedFulfillment      = InvalidError("fulfillment does not match the execution condition")
	ErrUnknownAccount             = NotFoundError("account is not known to the ledger")
	ErrUnsupportedLedgerType      = InvalidError("unsupported ledger type")
	ErrUnsupportedMessageEncoding = InvalidError("message carries neither a packet nor a method")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// IsErrExists - determine the class of an error
func IsErrExists(e error) bool { var t ExistsError; return errors.As(e, &t) }

// IsErrInvalid - determine the class of an error
func IsErrInvalid(e error) bool { var t InvalidError; return errors.As(e, &t) }

// IsErrNotFound - determine the class of an error
func IsErrNotFound(e error) bool { var t NotFoundError; return errors.As(e, &t) }

// IsErrProcess - determine the class of an error
func IsErrProcess(e error) bool { var t ProcessError; return errors.As(e, &t) }
