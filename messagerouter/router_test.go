// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagerouter_test

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/messagerouter"
	"github.com/michielbdejong/ilp-connector/packet"
	"github.com/michielbdejong/ilp-connector/quoter"
	"github.com/michielbdejong/ilp-connector/routing"
)

type fakeQuoter struct {
	query quoter.Query
	err   error
}

func (f *fakeQuoter) QuoteLiquidity(_ context.Context, query quoter.Query) (*quoter.LiquidityQuote, error) {
	f.query = query
	if nil != f.err {
		return nil, f.err
	}
	c, _ := liquidity.FromStrings([][2]string{{"0", "0"}, {"100", "200"}})
	return &quoter.LiquidityQuote{
		SourceLedger:       "eur-ledger.",
		Curve:              c,
		AppliesToPrefix:    "usd-ledger.",
		SourceHoldDuration: 6 * time.Second,
		ExpiresAt:          time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeQuoter) QuoteBySourceAmount(_ context.Context, query quoter.Query) (*quoter.Quote, error) {
	f.query = query
	if nil != f.err {
		return nil, f.err
	}
	return &quoter.Quote{
		SourceLedger:            "eur-ledger.",
		NextLedger:              "usd-ledger.",
		SourceAmount:            query.SourceAmount,
		DestinationAmount:       "105",
		SourceHoldDuration:      6 * time.Second,
		DestinationHoldDuration: 5 * time.Second,
	}, nil
}

func (f *fakeQuoter) QuoteByDestinationAmount(_ context.Context, query quoter.Query) (*quoter.Quote, error) {
	f.query = query
	if nil != f.err {
		return nil, f.err
	}
	return &quoter.Quote{
		SourceLedger:            "eur-ledger.",
		NextLedger:              "usd-ledger.",
		SourceAmount:            "95",
		DestinationAmount:       query.DestinationAmount,
		SourceHoldDuration:      6 * time.Second,
		DestinationHoldDuration: 5 * time.Second,
	}, nil
}

type fakeBroadcaster struct {
	unreachable chan []string
	broadcasts  chan struct{}
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{
		unreachable: make(chan []string, 10),
		broadcasts:  make(chan struct{}, 10),
	}
}

func (f *fakeBroadcaster) MarkLedgersUnreachable(prefixes []string) {
	f.unreachable <- prefixes
}

func (f *fakeBroadcaster) Broadcast(_ context.Context) error {
	f.broadcasts <- struct{}{}
	return nil
}

func (f *fakeBroadcaster) waitBroadcast(t *testing.T) {
	select {
	case <-f.broadcasts:
	case <-time.After(time.Second):
		t.Fatal("no broadcast")
	}
}

func (f *fakeBroadcaster) noBroadcast(t *testing.T) {
	select {
	case <-f.broadcasts:
		t.Fatal("unexpected broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func setup(t *testing.T) (*messagerouter.Router, *routing.Tables, *fakeQuoter, *fakeBroadcaster) {
	tables := routing.New(logger.New(category), time.Minute)
	tables.AddLocalLedger("eur-ledger.", "eur-ledger.mark")
	tables.AddLocalLedger("usd-ledger.", "usd-ledger.mark")
	err := tables.SetLocalRoutes([]*routing.Route{
		{
			SourceLedger:      "eur-ledger.",
			DestinationLedger: "usd-ledger.",
			Curve:             liquidity.Linear(big.NewRat(1000000, 1), big.NewRat(1, 1)),
			MinMessageWindow:  time.Second,
		},
		{
			SourceLedger:      "usd-ledger.",
			DestinationLedger: "eur-ledger.",
			Curve:             liquidity.Linear(big.NewRat(1000000, 1), big.NewRat(1, 1)),
			MinMessageWindow:  time.Second,
		},
	})
	require.Nil(t, err, "local routes")

	q := &fakeQuoter{}
	b := newFakeBroadcaster()
	return messagerouter.New(logger.New(category), tables, q, b, true, nil), tables, q, b
}

func broadcastMessage(t *testing.T, from string, update messagerouter.RoutingUpdate) ledger.Message {
	data, err := json.Marshal(update)
	require.Nil(t, err, "marshal")
	return ledger.Message{
		Ledger: "eur-ledger.",
		From:   from,
		To:     "eur-ledger.mark",
		Custom: &ledger.Custom{
			Method: ledger.MethodBroadcastRoutes,
			Data:   data,
		},
	}
}

func advertisement(t *testing.T, account string, destination string) routing.Advertisement {
	c, err := liquidity.FromStrings([][2]string{{"0", "0"}, {"200", "100"}})
	require.Nil(t, err, "curve")
	return routing.Advertisement{
		SourceLedger:      "eur-ledger.",
		DestinationLedger: destination,
		SourceAccount:     account,
		MinMessageWindow:  1,
		Points:            c,
	}
}

func TestUnsupportedMessage(t *testing.T) {
	r, _, _, _ := setup(t)

	_, err := r.HandleRequest(context.Background(), ledger.Message{
		Ledger: "eur-ledger.",
		From:   "eur-ledger.mary",
		To:     "eur-ledger.mark",
	})
	assert.Equal(t, fault.ErrUnsupportedMessageEncoding, err)
}

func TestUnknownMethodIgnored(t *testing.T) {
	r, _, _, b := setup(t)

	reply, err := r.HandleRequest(context.Background(), ledger.Message{
		Ledger: "eur-ledger.",
		From:   "eur-ledger.mary",
		To:     "eur-ledger.mark",
		Custom: &ledger.Custom{Method: "foo"},
	})
	assert.Nil(t, err)
	assert.Nil(t, reply.Custom)
	assert.Equal(t, "eur-ledger.mary", reply.To)
	b.noBroadcast(t)
}

func TestReceiveRoutes(t *testing.T) {
	r, tables, _, b := setup(t)

	_, err := r.HandleRequest(context.Background(), broadcastMessage(t, "eur-ledger.mary", messagerouter.RoutingUpdate{
		NewRoutes:    []routing.Advertisement{advertisement(t, "eur-ledger.mary", "xrp-ledger.")},
		HoldDownTime: 45000,
	}))
	assert.Nil(t, err)
	assert.True(t, tables.HasRouteTo("xrp-ledger."))
	assert.Equal(t, routing.PeerActive, tables.PeerState("eur-ledger.mary"))

	select {
	case lost := <-b.unreachable:
		assert.Equal(t, 0, len(lost))
	case <-time.After(time.Second):
		t.Fatal("no unreachable call")
	}
	b.waitBroadcast(t)

	learned := tables.Learned()
	require.Equal(t, 1, len(learned))
	assert.WithinDuration(t, time.Now().Add(45*time.Second), learned[0].ExpiresAt, 5*time.Second)
}

func TestSpoofedRouteIgnored(t *testing.T) {
	r, tables, _, b := setup(t)

	_, err := r.HandleRequest(context.Background(), broadcastMessage(t, "eur-ledger.mary", messagerouter.RoutingUpdate{
		NewRoutes:    []routing.Advertisement{advertisement(t, "eur-ledger.martin", "xrp-ledger.")},
		HoldDownTime: 45000,
	}))
	assert.Nil(t, err)
	assert.False(t, tables.HasRouteTo("xrp-ledger."))
	assert.Equal(t, 0, len(tables.Learned()))
	b.noBroadcast(t)
}

func TestHeartbeat(t *testing.T) {
	r, tables, _, b := setup(t)

	_, err := r.HandleRequest(context.Background(), broadcastMessage(t, "eur-ledger.mary", messagerouter.RoutingUpdate{
		NewRoutes:    []routing.Advertisement{},
		HoldDownTime: 45000,
	}))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(tables.Learned()))
	b.noBroadcast(t)
}

func TestUnreachableThroughMe(t *testing.T) {
	r, tables, _, b := setup(t)
	ctx := context.Background()

	_, err := r.HandleRequest(ctx, broadcastMessage(t, "eur-ledger.mary", messagerouter.RoutingUpdate{
		NewRoutes:    []routing.Advertisement{advertisement(t, "eur-ledger.mary", "xrp-ledger.")},
		HoldDownTime: 45000,
	}))
	require.Nil(t, err)
	<-b.unreachable
	b.waitBroadcast(t)
	require.True(t, tables.HasRouteTo("xrp-ledger."))

	_, err = r.HandleRequest(ctx, broadcastMessage(t, "eur-ledger.mary", messagerouter.RoutingUpdate{
		NewRoutes:            []routing.Advertisement{},
		HoldDownTime:         45000,
		UnreachableThroughMe: []string{"xrp-ledger."},
	}))
	assert.Nil(t, err)
	assert.False(t, tables.HasRouteTo("xrp-ledger."))

	select {
	case lost := <-b.unreachable:
		assert.Contains(t, lost, "xrp-ledger.")
	case <-time.After(time.Second):
		t.Fatal("no unreachable call")
	}
	b.waitBroadcast(t)
}

func TestInvalidRoutingUpdate(t *testing.T) {
	r, tables, _, b := setup(t)

	_, err := r.HandleRequest(context.Background(), broadcastMessage(t, "eur-ledger.mary", messagerouter.RoutingUpdate{
		NewRoutes:    []routing.Advertisement{advertisement(t, "eur-ledger.mary", "xrp-ledger.")},
		HoldDownTime: 0,
	}))
	assert.Equal(t, fault.ErrHoldDownTimeInvalid, err)

	_, err = r.HandleRequest(context.Background(), broadcastMessage(t, "eur-ledger.mary", messagerouter.RoutingUpdate{
		NewRoutes:    []routing.Advertisement{advertisement(t, "eur-ledger.mary", "xrp-ledger.")},
		HoldDownTime: 1 << 62,
	}))
	assert.Equal(t, fault.ErrHoldDownTimeInvalid, err, "hold down time overflows")

	slow := advertisement(t, "eur-ledger.mary", "xrp-ledger.")
	slow.MinMessageWindow = 1 << 40
	_, err = r.HandleRequest(context.Background(), broadcastMessage(t, "eur-ledger.mary", messagerouter.RoutingUpdate{
		NewRoutes:    []routing.Advertisement{slow},
		HoldDownTime: 45000,
	}))
	assert.True(t, fault.IsErrInvalidBody(err), "message window overflows")

	bad := advertisement(t, "eur-ledger.mary", "xrp-ledger.")
	bad.Points = nil
	_, err = r.HandleRequest(context.Background(), broadcastMessage(t, "eur-ledger.mary", messagerouter.RoutingUpdate{
		NewRoutes:    []routing.Advertisement{advertisement(t, "eur-ledger.mary", "abc-ledger."), bad},
		HoldDownTime: 45000,
	}))
	assert.True(t, fault.IsErrInvalidBody(err))

	_, err = r.HandleRequest(context.Background(), ledger.Message{
		Ledger: "eur-ledger.",
		From:   "eur-ledger.mary",
		To:     "eur-ledger.mark",
		Custom: &ledger.Custom{
			Method: ledger.MethodBroadcastRoutes,
			Data:   json.RawMessage(`{"new_routes":[],"hold_down_time":1,"extra":true}`),
		},
	})
	assert.True(t, fault.IsErrInvalidBody(err))

	assert.Equal(t, 0, len(tables.Learned()))
	assert.False(t, tables.HasRouteTo("abc-ledger."))
	b.noBroadcast(t)
}

func TestBroadcastDisabled(t *testing.T) {
	_, tables, q, b := setup(t)
	r := messagerouter.New(logger.New(category), tables, q, b, false, nil)

	err := r.ReceiveRoutes(context.Background(), messagerouter.RoutingUpdate{
		NewRoutes:    []routing.Advertisement{advertisement(t, "eur-ledger.mary", "xrp-ledger.")},
		HoldDownTime: 45000,
	}, "eur-ledger.mary")
	assert.Nil(t, err)
	assert.True(t, tables.HasRouteTo("xrp-ledger."))
	b.noBroadcast(t)
}

func packetMessage(p packet.Packet) ledger.Message {
	return ledger.Message{
		Ledger: "eur-ledger.",
		From:   "eur-ledger.alice",
		To:     "eur-ledger.mark",
		Ilp:    p.Pack(),
	}
}

func TestLiquidityPacket(t *testing.T) {
	r, _, q, _ := setup(t)

	reply, err := r.HandleRequest(context.Background(), packetMessage(&packet.LiquidityRequest{
		DestinationAccount:      "usd-ledger.bob",
		DestinationHoldDuration: 5 * time.Second,
	}))
	require.Nil(t, err)
	assert.Equal(t, "eur-ledger.", reply.Ledger)
	assert.Equal(t, "eur-ledger.mark", reply.From)
	assert.Equal(t, "eur-ledger.alice", reply.To)

	assert.Equal(t, "eur-ledger.alice", q.query.SourceAccount)
	assert.Equal(t, "usd-ledger.bob", q.query.DestinationAccount)
	assert.Equal(t, 5*time.Second, q.query.DestinationHoldDuration)

	p, err := packet.Unpack(reply.Ilp)
	require.Nil(t, err)
	response, ok := p.(*packet.LiquidityResponse)
	require.True(t, ok, "response type")
	assert.Equal(t, "usd-ledger.", response.AppliesToPrefix)
	assert.Equal(t, 6*time.Second, response.SourceHoldDuration)
	assert.Equal(t, [][2]string{{"0", "0"}, {"100", "200"}}, response.Curve.Strings())
}

func TestAmountPackets(t *testing.T) {
	r, _, q, _ := setup(t)
	ctx := context.Background()

	reply, err := r.HandleRequest(ctx, packetMessage(&packet.BySourceRequest{
		DestinationAccount:      "usd-ledger.bob",
		SourceAmount:            "100",
		DestinationHoldDuration: 5 * time.Second,
	}))
	require.Nil(t, err)
	assert.Equal(t, "100", q.query.SourceAmount)
	p, err := packet.Unpack(reply.Ilp)
	require.Nil(t, err)
	bySource, ok := p.(*packet.BySourceResponse)
	require.True(t, ok, "by source type")
	assert.Equal(t, "105", bySource.DestinationAmount)

	reply, err = r.HandleRequest(ctx, packetMessage(&packet.ByDestinationRequest{
		DestinationAccount:      "usd-ledger.bob",
		DestinationAmount:       "100",
		DestinationHoldDuration: 5 * time.Second,
	}))
	require.Nil(t, err)
	p, err = packet.Unpack(reply.Ilp)
	require.Nil(t, err)
	byDestination, ok := p.(*packet.ByDestinationResponse)
	require.True(t, ok, "by destination type")
	assert.Equal(t, "95", byDestination.SourceAmount)
	assert.Equal(t, 6*time.Second, byDestination.SourceHoldDuration)
}

func TestErrorPackets(t *testing.T) {
	r, _, q, _ := setup(t)
	ctx := context.Background()

	q.err = fault.NoRouteFoundError("No route found from: eur-ledger. to: xrp-ledger.")
	reply, err := r.HandleRequest(ctx, packetMessage(&packet.LiquidityRequest{
		DestinationAccount: "xrp-ledger.bob",
	}))
	require.Nil(t, err)
	p, err := packet.Unpack(reply.Ilp)
	require.Nil(t, err)
	e, ok := p.(*packet.Error)
	require.True(t, ok, "error type")
	assert.Equal(t, fault.KindNoRouteFound, e.Kind)
	assert.True(t, fault.IsErrNoRouteFound(e.Err()))

	reply, err = r.HandleRequest(ctx, packetMessage(&packet.BySourceResponse{
		DestinationAmount: "1",
	}))
	require.Nil(t, err)
	p, err = packet.Unpack(reply.Ilp)
	require.Nil(t, err)
	e, ok = p.(*packet.Error)
	require.True(t, ok, "error type")
	assert.Equal(t, fault.KindInvalidBody, e.Kind)
	assert.Equal(t, "Packet has unexpected type: 5", e.Message)
}

func quoteMessage(t *testing.T, request interface{}) ledger.Message {
	data, err := json.Marshal(request)
	require.Nil(t, err, "marshal")
	return ledger.Message{
		Ledger: "eur-ledger.",
		From:   "eur-ledger.alice",
		To:     "eur-ledger.mark",
		Custom: &ledger.Custom{
			Method: ledger.MethodQuoteRequest,
			Data:   data,
		},
	}
}

func TestQuoteRequest(t *testing.T) {
	r, _, q, _ := setup(t)

	reply, err := r.HandleRequest(context.Background(), quoteMessage(t, messagerouter.QuoteRequest{
		ID:                        "e2a5e2d9-5a8c-4de2-bd33-4e7bb4a0e4a9",
		SourceAddress:             "eur-ledger.alice",
		DestinationAddress:        "usd-ledger.bob",
		SourceAmount:              "100",
		DestinationExpiryDuration: "5",
	}))
	require.Nil(t, err)
	require.NotNil(t, reply.Custom)
	assert.Equal(t, ledger.MethodQuoteResponse, reply.Custom.Method)
	assert.Equal(t, 5*time.Second, q.query.DestinationHoldDuration)

	var response messagerouter.QuoteResponse
	require.Nil(t, json.Unmarshal(reply.Custom.Data, &response))
	assert.Equal(t, messagerouter.QuoteResponse{
		ID:                        "e2a5e2d9-5a8c-4de2-bd33-4e7bb4a0e4a9",
		SourceConnectorAccount:    "eur-ledger.mark",
		SourceLedger:              "eur-ledger.",
		SourceAmount:              "100",
		DestinationLedger:         "usd-ledger.",
		DestinationAmount:         "105",
		SourceExpiryDuration:      "6",
		DestinationExpiryDuration: "5",
	}, response)
}

func TestQuoteRequestErrors(t *testing.T) {
	r, _, q, _ := setup(t)
	ctx := context.Background()

	reply, err := r.HandleRequest(ctx, quoteMessage(t, messagerouter.QuoteRequest{
		ID:                 "1",
		SourceAddress:      "eur-ledger.alice",
		DestinationAddress: "usd-ledger.bob",
	}))
	require.Nil(t, err)
	assert.Equal(t, ledger.MethodError, reply.Custom.Method)
	var response messagerouter.ErrorResponse
	require.Nil(t, json.Unmarshal(reply.Custom.Data, &response))
	assert.Equal(t, "1", response.ID)
	assert.Equal(t, fault.KindNoAmountSpecified, response.Name)

	q.err = fault.UnacceptableExpiryError("Destination expiry duration is too long")
	reply, err = r.HandleRequest(ctx, quoteMessage(t, messagerouter.QuoteRequest{
		ID:                        "2",
		SourceAddress:             "eur-ledger.alice",
		DestinationAddress:        "usd-ledger.bob",
		DestinationAmount:         "100",
		DestinationExpiryDuration: "100",
	}))
	require.Nil(t, err)
	assert.Equal(t, ledger.MethodError, reply.Custom.Method)
	require.Nil(t, json.Unmarshal(reply.Custom.Data, &response))
	assert.Equal(t, "2", response.ID)
	assert.Equal(t, fault.KindUnacceptableExpiry, response.Name)
	assert.Equal(t, "Destination expiry duration is too long", response.Message)
}
