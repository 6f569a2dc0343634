// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagerouter - answer the messages other connectors send
// to the connector's ledger accounts
//
// a message carries either a binary quote request, answered with a
// binary response or error packet, or a method call: route
// broadcasts update the routing tables and JSON quote requests are
// answered with a quote_response or error method
package messagerouter

import (
	"context"
	"strconv"

	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/metrics"
	"github.com/michielbdejong/ilp-connector/packet"
	"github.com/michielbdejong/ilp-connector/quoter"
	"github.com/michielbdejong/ilp-connector/routing"
)

// Quoter - the quoting operations offered to peers
type Quoter interface {
	QuoteLiquidity(ctx context.Context, query quoter.Query) (*quoter.LiquidityQuote, error)
	QuoteBySourceAmount(ctx context.Context, query quoter.Query) (*quoter.Quote, error)
	QuoteByDestinationAmount(ctx context.Context, query quoter.Query) (*quoter.Quote, error)
}

// Broadcaster - sends the routing tables to the peers
type Broadcaster interface {
	MarkLedgersUnreachable(prefixes []string)
	Broadcast(ctx context.Context) error
}

// Router - handles requests from every ledger
type Router struct {
	log              *logger.L
	tables           *routing.Tables
	quoter           Quoter
	broadcaster      Broadcaster
	broadcastEnabled bool
	metrics          *metrics.Metrics
}

// New - create a message router
//
// broadcaster may be nil when broadcasting is disabled, m may be nil
func New(log *logger.L, tables *routing.Tables, q Quoter, broadcaster Broadcaster, broadcastEnabled bool, m *metrics.Metrics) *Router {
	return &Router{
		log:              log,
		tables:           tables,
		quoter:           q,
		broadcaster:      broadcaster,
		broadcastEnabled: broadcastEnabled && nil != broadcaster,
		metrics:          m,
	}
}

// HandleRequest - answer one message
//
// only an unusable message is an error, failures of the request
// itself are reported to the sender in the reply
func (r *Router) HandleRequest(ctx context.Context, request ledger.Message) (ledger.Message, error) {
	reply := ledger.Message{
		Ledger: request.Ledger,
		From:   request.To,
		To:     request.From,
	}

	if nil != request.Ilp {
		reply.Ilp = r.handlePacket(ctx, request.Ilp, request.From).Pack()
		return reply, nil
	}

	if nil == request.Custom {
		return ledger.Message{}, fault.ErrUnsupportedMessageEncoding
	}

	switch request.Custom.Method {
	case ledger.MethodBroadcastRoutes:
		var payload RoutingUpdate
		if err := decode(request.Custom.Data, &payload); nil != err {
			r.metrics.Announcement(false)
			return ledger.Message{}, err
		}
		if err := r.ReceiveRoutes(ctx, payload, request.From); nil != err {
			return ledger.Message{}, err
		}
		return reply, nil

	case ledger.MethodQuoteRequest:
		reply.Custom = r.handleQuoteRequest(ctx, request.Custom.Data, request.From)
		return reply, nil

	default:
		r.log.Debugf("ignoring unknown request method: %q  from: %s", request.Custom.Method, request.From)
		return reply, nil
	}
}

// answer a binary quote request, the requester is the source
func (r *Router) handlePacket(ctx context.Context, buffer []byte, sender string) packet.Packet {
	p, err := packet.Unpack(buffer)
	if nil != err {
		r.log.Warnf("packet from: %s  error: %s", sender, err)
		return packet.ErrorFrom(err)
	}

	switch request := p.(type) {
	case *packet.LiquidityRequest:
		q, err := r.quoter.QuoteLiquidity(ctx, quoter.Query{
			SourceAccount:           sender,
			DestinationAccount:      request.DestinationAccount,
			DestinationHoldDuration: request.DestinationHoldDuration,
		})
		if nil != err {
			return packet.ErrorFrom(err)
		}
		return &packet.LiquidityResponse{
			Curve:              q.Curve,
			AppliesToPrefix:    q.AppliesToPrefix,
			SourceHoldDuration: q.SourceHoldDuration,
			ExpiresAt:          q.ExpiresAt,
		}

	case *packet.BySourceRequest:
		q, err := r.quoter.QuoteBySourceAmount(ctx, quoter.Query{
			SourceAccount:           sender,
			DestinationAccount:      request.DestinationAccount,
			SourceAmount:            request.SourceAmount,
			DestinationHoldDuration: request.DestinationHoldDuration,
		})
		if nil != err {
			return packet.ErrorFrom(err)
		}
		return &packet.BySourceResponse{
			DestinationAmount:  q.DestinationAmount,
			SourceHoldDuration: q.SourceHoldDuration,
		}

	case *packet.ByDestinationRequest:
		q, err := r.quoter.QuoteByDestinationAmount(ctx, quoter.Query{
			SourceAccount:           sender,
			DestinationAccount:      request.DestinationAccount,
			DestinationAmount:       request.DestinationAmount,
			DestinationHoldDuration: request.DestinationHoldDuration,
		})
		if nil != err {
			return packet.ErrorFrom(err)
		}
		return &packet.ByDestinationResponse{
			SourceAmount:       q.SourceAmount,
			SourceHoldDuration: q.SourceHoldDuration,
		}

	default:
		return packet.ErrorFrom(fault.InvalidBodyError("Packet has unexpected type: " + strconv.Itoa(int(p.Type()))))
	}
}
