// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"errors"
)

// kinds raised while quoting and forwarding
type AmountTooLargeError GenericError
type AssetsNotTradedError GenericError
type ExternalError GenericError
type InvalidAmountSpecifiedError GenericError
type InvalidBodyError GenericError
type LedgerNotConnectedError GenericError
type NoAmountSpecifiedError GenericError
type NoRouteFoundError GenericError
type UnacceptableAmountError GenericError
type UnacceptableExpiryError GenericError
type UnacceptableRateError GenericError

func (e AmountTooLargeError) Error() string         { return string(e) }
func (e AssetsNotTradedError) Error() string        { return string(e) }
func (e ExternalError) Error() string               { return string(e) }
func (e InvalidAmountSpecifiedError) Error() string { return string(e) }
func (e InvalidBodyError) Error() string            { return string(e) }
func (e LedgerNotConnectedError) Error() string     { return string(e) }
func (e NoAmountSpecifiedError) Error() string      { return string(e) }
func (e NoRouteFoundError) Error() string           { return string(e) }
func (e UnacceptableAmountError) Error() string     { return string(e) }
func (e UnacceptableExpiryError) Error() string     { return string(e) }
func (e UnacceptableRateError) Error() string       { return string(e) }

// kind names as they appear in an error response to a peer
const (
	KindAmountTooLarge         = "AmountTooLargeError"
	KindAssetsNotTraded        = "AssetsNotTradedError"
	KindExternal               = "ExternalError"
	KindInvalidAmountSpecified = "InvalidAmountSpecifiedError"
	KindInvalidBody            = "InvalidBodyError"
	KindLedgerNotConnected     = "LedgerNotConnectedError"
	KindNoAmountSpecified      = "NoAmountSpecifiedError"
	KindNoRouteFound           = "NoRouteFoundError"
	KindUnacceptableAmount     = "UnacceptableAmountError"
	KindUnacceptableExpiry     = "UnacceptableExpiryError"
	KindUnacceptableRate       = "UnacceptableRateError"
	KindUnknown                = "Error"
)

// determine the kind of an error, looking through any wrapping
func IsErrAmountTooLarge(e error) bool         { var t AmountTooLargeError; return errors.As(e, &t) }
func IsErrAssetsNotTraded(e error) bool        { var t AssetsNotTradedError; return errors.As(e, &t) }
func IsErrExternal(e error) bool               { var t ExternalError; return errors.As(e, &t) }
func IsErrInvalidAmountSpecified(e error) bool { var t InvalidAmountSpecifiedError; return errors.As(e, &t) }
func IsErrInvalidBody(e error) bool            { var t InvalidBodyError; return errors.As(e, &t) }
func IsErrLedgerNotConnected(e error) bool     { var t LedgerNotConnectedError; return errors.As(e, &t) }
func IsErrNoAmountSpecified(e error) bool      { var t NoAmountSpecifiedError; return errors.As(e, &t) }
func IsErrNoRouteFound(e error) bool           { var t NoRouteFoundError; return errors.As(e, &t) }
func IsErrUnacceptableAmount(e error) bool     { var t UnacceptableAmountError; return errors.As(e, &t) }
func IsErrUnacceptableExpiry(e error) bool     { var t UnacceptableExpiryError; return errors.As(e, &t) }
func IsErrUnacceptableRate(e error) bool       { var t UnacceptableRateError; return errors.As(e, &t) }

// Kind - name of the kind of a quoting error
func Kind(e error) string {
	switch {
	case IsErrAmountTooLarge(e):
		return KindAmountTooLarge
	case IsErrAssetsNotTraded(e):
		return KindAssetsNotTraded
	case IsErrExternal(e):
		return KindExternal
	case IsErrInvalidAmountSpecified(e):
		return KindInvalidAmountSpecified
	case IsErrInvalidBody(e):
		return KindInvalidBody
	case IsErrLedgerNotConnected(e):
		return KindLedgerNotConnected
	case IsErrNoAmountSpecified(e):
		return KindNoAmountSpecified
	case IsErrNoRouteFound(e):
		return KindNoRouteFound
	case IsErrUnacceptableAmount(e):
		return KindUnacceptableAmount
	case IsErrUnacceptableExpiry(e):
		return KindUnacceptableExpiry
	case IsErrUnacceptableRate(e):
		return KindUnacceptableRate
	default:
		return KindUnknown
	}
}

// FromKind - rebuild a typed error from a kind name and message
// received from a peer
func FromKind(kind string, message string) error {
	switch kind {
	case KindAmountTooLarge:
		return AmountTooLargeError(message)
	case KindAssetsNotTraded:
		return AssetsNotTradedError(message)
	case KindExternal:
		return ExternalError(message)
	case KindInvalidAmountSpecified:
		return InvalidAmountSpecifiedError(message)
	case KindInvalidBody:
		return InvalidBodyError(message)
	case KindLedgerNotConnected:
		return LedgerNotConnectedError(message)
	case KindNoAmountSpecified:
		return NoAmountSpecifiedError(message)
	case KindNoRouteFound:
		return NoRouteFoundError(message)
	case KindUnacceptableAmount:
		return UnacceptableAmountError(message)
	case KindUnacceptableExpiry:
		return UnacceptableExpiryError(message)
	case KindUnacceptableRate:
		return UnacceptableRateError(message)
	default:
		return ExternalError(message)
	}
}
