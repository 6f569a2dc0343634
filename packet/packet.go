// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package packet

import (
	"strconv"
	"time"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/util"
)

// Type - leading byte of a packet
type Type byte

// packet types
const (
	TypePayment                    Type = 1
	TypeQuoteLiquidityRequest      Type = 2
	TypeQuoteLiquidityResponse     Type = 3
	TypeQuoteBySourceRequest       Type = 4
	TypeQuoteBySourceResponse      Type = 5
	TypeQuoteByDestinationRequest  Type = 6
	TypeQuoteByDestinationResponse Type = 7
	TypeError                      Type = 8
)

// Packet - any packet that can be sent
type Packet interface {
	Type() Type
	Pack() []byte
}

// Payment - forwarding instructions carried by a transfer
type Payment struct {
	Account string // final destination address
	Amount  string // amount to deliver at destination
	Data    []byte // opaque to connectors
}

// LiquidityRequest - ask for a curve towards a destination
type LiquidityRequest struct {
	DestinationAccount      string
	DestinationHoldDuration time.Duration
}

// LiquidityResponse - curve from the responder's account on the
// shared ledger to the destination
type LiquidityResponse struct {
	Curve              *liquidity.Curve
	AppliesToPrefix    string
	SourceHoldDuration time.Duration
	ExpiresAt          time.Time
}

// BySourceRequest - ask what a fixed source amount delivers
type BySourceRequest struct {
	DestinationAccount      string
	SourceAmount            string
	DestinationHoldDuration time.Duration
}

// BySourceResponse - quoted destination amount
type BySourceResponse struct {
	DestinationAmount  string
	SourceHoldDuration time.Duration
}

// ByDestinationRequest - ask what a fixed destination amount costs
type ByDestinationRequest struct {
	DestinationAccount      string
	DestinationAmount       string
	DestinationHoldDuration time.Duration
}

// ByDestinationResponse - quoted source amount
type ByDestinationResponse struct {
	SourceAmount       string
	SourceHoldDuration time.Duration
}

// Error - a quoting failure returned to the requester
type Error struct {
	Kind    string // fault kind name
	Message string
}

// Err - rebuild the typed error
func (e *Error) Err() error {
	return fault.FromKind(e.Kind, e.Message)
}

// ErrorFrom - error packet for a failure
func ErrorFrom(err error) *Error {
	return &Error{
		Kind:    fault.Kind(err),
		Message: err.Error(),
	}
}

func (p *Payment) Type() Type               { return TypePayment }
func (p *LiquidityRequest) Type() Type      { return TypeQuoteLiquidityRequest }
func (p *LiquidityResponse) Type() Type     { return TypeQuoteLiquidityResponse }
func (p *BySourceRequest) Type() Type       { return TypeQuoteBySourceRequest }
func (p *BySourceResponse) Type() Type      { return TypeQuoteBySourceResponse }
func (p *ByDestinationRequest) Type() Type  { return TypeQuoteByDestinationRequest }
func (p *ByDestinationResponse) Type() Type { return TypeQuoteByDestinationResponse }
func (p *Error) Type() Type                 { return TypeError }

// Pack - binary form
func (p *Payment) Pack() []byte {
	buffer := []byte{byte(TypePayment)}
	buffer = util.PackBytes(buffer, []byte(p.Account))
	buffer = util.PackBytes(buffer, []byte(p.Amount))
	return util.PackBytes(buffer, p.Data)
}

// Pack - binary form
func (p *LiquidityRequest) Pack() []byte {
	buffer := []byte{byte(TypeQuoteLiquidityRequest)}
	buffer = util.PackBytes(buffer, []byte(p.DestinationAccount))
	return packDuration(buffer, p.DestinationHoldDuration)
}

// Pack - binary form
func (p *LiquidityResponse) Pack() []byte {
	buffer := []byte{byte(TypeQuoteLiquidityResponse)}
	buffer = p.Curve.Pack(buffer)
	buffer = util.PackBytes(buffer, []byte(p.AppliesToPrefix))
	buffer = packDuration(buffer, p.SourceHoldDuration)
	return append(buffer, util.ToVarint64(uint64(p.ExpiresAt.UnixMilli()))...)
}

// Pack - binary form
func (p *BySourceRequest) Pack() []byte {
	buffer := []byte{byte(TypeQuoteBySourceRequest)}
	buffer = util.PackBytes(buffer, []byte(p.DestinationAccount))
	buffer = util.PackBytes(buffer, []byte(p.SourceAmount))
	return packDuration(buffer, p.DestinationHoldDuration)
}

// Pack - binary form
func (p *BySourceResponse) Pack() []byte {
	buffer := []byte{byte(TypeQuoteBySourceResponse)}
	buffer = util.PackBytes(buffer, []byte(p.DestinationAmount))
	return packDuration(buffer, p.SourceHoldDuration)
}

// Pack - binary form
func (p *ByDestinationRequest) Pack() []byte {
	buffer := []byte{byte(TypeQuoteByDestinationRequest)}
	buffer = util.PackBytes(buffer, []byte(p.DestinationAccount))
	buffer = util.PackBytes(buffer, []byte(p.DestinationAmount))
	return packDuration(buffer, p.DestinationHoldDuration)
}

// Pack - binary form
func (p *ByDestinationResponse) Pack() []byte {
	buffer := []byte{byte(TypeQuoteByDestinationResponse)}
	buffer = util.PackBytes(buffer, []byte(p.SourceAmount))
	return packDuration(buffer, p.SourceHoldDuration)
}

// Pack - binary form
func (p *Error) Pack() []byte {
	buffer := []byte{byte(TypeError)}
	buffer = util.PackBytes(buffer, []byte(p.Kind))
	return util.PackBytes(buffer, []byte(p.Message))
}

// Unpack - decode any packet
//
// an unknown type or a malformed body is an InvalidBodyError
func Unpack(buffer []byte) (Packet, error) {
	if 0 == len(buffer) {
		return nil, fault.InvalidBodyError("empty packet")
	}

	r := &reader{buffer: buffer[1:]}
	var p Packet

	switch Type(buffer[0]) {
	case TypePayment:
		p = &Payment{
			Account: r.string(),
			Amount:  r.string(),
			Data:    r.bytes(),
		}
	case TypeQuoteLiquidityRequest:
		p = &LiquidityRequest{
			DestinationAccount:      r.string(),
			DestinationHoldDuration: r.duration(),
		}
	case TypeQuoteLiquidityResponse:
		p = &LiquidityResponse{
			Curve:              r.curve(),
			AppliesToPrefix:    r.string(),
			SourceHoldDuration: r.duration(),
			ExpiresAt:          r.time(),
		}
	case TypeQuoteBySourceRequest:
		p = &BySourceRequest{
			DestinationAccount:      r.string(),
			SourceAmount:            r.string(),
			DestinationHoldDuration: r.duration(),
		}
	case TypeQuoteBySourceResponse:
		p = &BySourceResponse{
			DestinationAmount:  r.string(),
			SourceHoldDuration: r.duration(),
		}
	case TypeQuoteByDestinationRequest:
		p = &ByDestinationRequest{
			DestinationAccount:      r.string(),
			DestinationAmount:       r.string(),
			DestinationHoldDuration: r.duration(),
		}
	case TypeQuoteByDestinationResponse:
		p = &ByDestinationResponse{
			SourceAmount:       r.string(),
			SourceHoldDuration: r.duration(),
		}
	case TypeError:
		p = &Error{
			Kind:    r.string(),
			Message: r.string(),
		}
	default:
		return nil, fault.InvalidBodyError("Packet has unexpected type: " + strconv.Itoa(int(buffer[0])))
	}

	if nil != r.err {
		return nil, fault.InvalidBodyError("malformed packet: " + r.err.Error())
	}
	if 0 != len(r.buffer) {
		return nil, fault.InvalidBodyError("malformed packet: trailing data")
	}
	return p, nil
}

// UnpackPayment - decode a packet that must be a payment
func UnpackPayment(buffer []byte) (*Payment, error) {
	p, err := Unpack(buffer)
	if nil != err {
		return nil, err
	}
	payment, ok := p.(*Payment)
	if !ok {
		return nil, fault.InvalidBodyError("packet is not a payment")
	}
	return payment, nil
}

func packDuration(buffer []byte, d time.Duration) []byte {
	if d < 0 {
		d = 0
	}
	return append(buffer, util.ToVarint64(uint64(d/time.Millisecond))...)
}

// sequential field reader, the first failure sticks
type reader struct {
	buffer []byte
	err    error
}

func (r *reader) bytes() []byte {
	if nil != r.err {
		return nil
	}
	data, n := util.UnpackBytes(r.buffer)
	if 0 == n {
		r.err = fault.ErrInvalidPacketLength
		return nil
	}
	r.buffer = r.buffer[n:]
	return data
}

func (r *reader) string() string {
	return string(r.bytes())
}

func (r *reader) uint() uint64 {
	if nil != r.err {
		return 0
	}
	value, n := util.FromVarint64(r.buffer)
	if 0 == n {
		r.err = fault.ErrInvalidPacketLength
		return 0
	}
	r.buffer = r.buffer[n:]
	return value
}

func (r *reader) duration() time.Duration {
	return time.Duration(r.uint()) * time.Millisecond
}

func (r *reader) time() time.Time {
	ms := r.uint()
	if nil != r.err {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}

func (r *reader) curve() *liquidity.Curve {
	if nil != r.err {
		return nil
	}
	c, n, err := liquidity.Unpack(r.buffer)
	if nil != err {
		r.err = err
		return nil
	}
	r.buffer = r.buffer[n:]
	return c
}
