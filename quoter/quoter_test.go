// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package quoter_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michielbdejong/ilp-connector/backend"
	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/ledger/mocks"
	"github.com/michielbdejong/ilp-connector/ledger/virtual"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/packet"
	"github.com/michielbdejong/ilp-connector/quoter"
	"github.com/michielbdejong/ilp-connector/routing"
)

var configuration = quoter.Configuration{
	QuoteExpiry:            10 * time.Second,
	MaxHoldTime:            10 * time.Second,
	DefaultDestinationHold: 5 * time.Second,
	MinMessageWindow:       time.Second,
}

var currencies = []ledger.Info{
	{Prefix: "cad-ledger.", CurrencyCode: "CAD"},
	{Prefix: "cny-ledger.", CurrencyCode: "CNY"},
	{Prefix: "eur-ledger.", CurrencyCode: "EUR"},
	{Prefix: "usd-ledger.", CurrencyCode: "USD"},
}

type fixture struct {
	tables  *routing.Tables
	ledgers map[string]*virtual.Ledger
	plugins map[string]*virtual.Plugin
	quoter  *quoter.Quoter
}

type failingBalances struct{}

func (failingBalances) Get(ctx context.Context, ledger string) (*big.Rat, error) {
	return nil, fault.ExternalError("balance unavailable")
}

// four local ledgers, all but CNY traded
func setup(t *testing.T, scale int, balances quoter.Balances) *fixture {
	log := logger.New(category)

	rates, err := backend.New(log, backend.Configuration{
		Spread: "0.002",
		Base:   "EUR",
		Rates:  map[string]string{"USD": "1.0592", "CAD": "1.3583"},
	})
	require.Nil(t, err, "backend")

	f := &fixture{
		tables:  routing.New(log, time.Minute),
		ledgers: make(map[string]*virtual.Ledger),
		plugins: make(map[string]*virtual.Plugin),
	}
	ledgers := ledger.New(log)
	infos := make([]ledger.Info, len(currencies))
	for i, info := range currencies {
		info.Scale = scale
		info.Precision = 20
		infos[i] = info

		l, err := virtual.New(info, log)
		require.Nil(t, err, "virtual ledger")
		p, err := l.Open(info.Prefix+"mark", "1000000000")
		require.Nil(t, err, "open account")
		require.Nil(t, p.Connect(context.Background()), "connect")
		require.Nil(t, ledgers.Add(p), "add plugin")

		f.ledgers[info.Prefix] = l
		f.plugins[info.Prefix] = p
		f.tables.AddLocalLedger(info.Prefix, p.GetAccount())
	}
	require.Nil(t, f.tables.SetLocalRoutes(rates.LocalRoutes(infos, time.Second)), "local routes")

	f.quoter = quoter.New(log, configuration, f.tables, ledgers, balances, nil)
	return f
}

// a peer on the EUR ledger that reaches random-ledger. at half the amount
func (f *fixture) addPeer(t *testing.T, ctl *gomock.Controller) *mocks.MockRequestHandler {
	curve, err := liquidity.FromStrings([][2]string{{"0", "0"}, {"200", "100"}})
	require.Nil(t, err, "curve")

	mary, err := f.ledgers["eur-ledger."].Open("eur-ledger.mary", "0")
	require.Nil(t, err, "open mary")
	require.Nil(t, mary.Connect(context.Background()), "connect mary")

	handler := mocks.NewMockRequestHandler(ctl)
	mary.RegisterRequestHandler(handler)

	_, err = f.tables.AddRoute(routing.Advertisement{
		SourceLedger:      "eur-ledger.",
		DestinationLedger: "random-ledger.",
		SourceAccount:     "eur-ledger.mary",
		MinMessageWindow:  1,
		Points:            curve,
	})
	require.Nil(t, err, "add route")
	return handler
}

func liquidityReply(t *testing.T) func(context.Context, ledger.Message) (ledger.Message, error) {
	return func(ctx context.Context, request ledger.Message) (ledger.Message, error) {
		p, err := packet.Unpack(request.Ilp)
		require.Nil(t, err, "request packet")
		r, ok := p.(*packet.LiquidityRequest)
		require.True(t, ok, "liquidity request")
		assert.Equal(t, "random-ledger.bob", r.DestinationAccount, "destination")
		assert.Equal(t, 5*time.Second, r.DestinationHoldDuration, "hold")

		curve, _ := liquidity.FromStrings([][2]string{{"0", "0"}, {"200", "100"}})
		response := &packet.LiquidityResponse{
			Curve:              curve,
			AppliesToPrefix:    "random-ledger.",
			SourceHoldDuration: 6 * time.Second,
			ExpiresAt:          time.Now().Add(10 * time.Second),
		}
		return ledger.Message{Ilp: response.Pack()}, nil
	}
}

func TestZeroAmounts(t *testing.T) {
	f := setup(t, 0, nil)
	ctx := context.Background()

	_, err := f.quoter.QuoteBySourceAmount(ctx, quoter.Query{
		SourceAmount:       "0",
		SourceAccount:      "eur-ledger.alice",
		DestinationAccount: "usd-ledger.bob",
	})
	assert.True(t, fault.IsErrInvalidAmountSpecified(err), "source kind")
	assert.EqualError(t, err, "sourceAmount must be positive", "source message")

	_, err = f.quoter.QuoteByDestinationAmount(ctx, quoter.Query{
		DestinationAmount:  "0",
		SourceAccount:      "eur-ledger.alice",
		DestinationAccount: "usd-ledger.bob",
	})
	assert.True(t, fault.IsErrInvalidAmountSpecified(err), "destination kind")
	assert.EqualError(t, err, "destinationAmount must be positive", "destination message")
}

func TestNoRoute(t *testing.T) {
	f := setup(t, 0, nil)
	ctx := context.Background()

	items := []struct {
		source      string
		destination string
	}{
		{"fake-ledger.foley", "usd-ledger.bob"},
		{"eur-ledger.alice", "example.fake.blah"},
		{"usd-ledger.alice", "usd-ledger.bob"},
		{"cny-ledger.bob", "usd-ledger.bob"},
	}
	for _, item := range items {
		_, err := f.quoter.QuoteBySourceAmount(ctx, quoter.Query{
			SourceAmount:            "100",
			SourceAccount:           item.source,
			DestinationAccount:      item.destination,
			DestinationHoldDuration: time.Second,
		})
		assert.True(t, fault.IsErrNoRouteFound(err), "kind: %s → %s", item.source, item.destination)
		assert.EqualError(t, err, "No route found from: "+item.source+" to: "+item.destination, "message")
	}

	_, err := f.quoter.QuoteLiquidity(ctx, quoter.Query{
		SourceAccount:      "fake-ledger.foley",
		DestinationAccount: "usd-ledger.bob",
	})
	assert.True(t, fault.IsErrNoRouteFound(err), "liquidity")
}

func TestAmountTooSmall(t *testing.T) {
	f := setup(t, 0, nil)

	_, err := f.quoter.QuoteBySourceAmount(context.Background(), quoter.Query{
		SourceAmount:       "0.00001",
		SourceAccount:      "eur-ledger.alice",
		DestinationAccount: "usd-ledger.bob",
	})
	assert.True(t, fault.IsErrUnacceptableAmount(err), "kind")
	assert.EqualError(t, err, "Quoted destination is lower than minimum amount allowed", "message")
}

func TestHoldTooLong(t *testing.T) {
	f := setup(t, 0, nil)

	_, err := f.quoter.QuoteBySourceAmount(context.Background(), quoter.Query{
		SourceAmount:            "100",
		SourceAccount:           "eur-ledger.alice",
		DestinationAccount:      "usd-ledger.bob",
		DestinationHoldDuration: 10001 * time.Millisecond,
	})
	assert.True(t, fault.IsErrUnacceptableExpiry(err), "kind")
	assert.Contains(t, err.Error(), "Destination expiry duration is too long", "message")
}

func TestLedgerNotConnected(t *testing.T) {
	ctx := context.Background()
	for _, prefix := range []string{"eur-ledger.", "usd-ledger."} {
		f := setup(t, 0, nil)
		require.Nil(t, f.plugins[prefix].Disconnect(), "disconnect")

		_, err := f.quoter.QuoteByDestinationAmount(ctx, quoter.Query{
			DestinationAmount:       "100",
			SourceAccount:           "eur-ledger.alice",
			DestinationAccount:      "usd-ledger.bob",
			DestinationHoldDuration: 5 * time.Second,
		})
		assert.True(t, fault.IsErrLedgerNotConnected(err), "kind")
		assert.EqualError(t, err, `No connection to ledger "`+prefix+`"`, "message")
	}
}

func TestFixedSourceAmounts(t *testing.T) {
	f := setup(t, 0, nil)

	items := []struct {
		source      string
		destination string
		amount      string
	}{
		{"eur-ledger.alice", "usd-ledger.bob", "1057081"},
		{"usd-ledger.bob", "eur-ledger.alice", "942220"},
		{"usd-ledger.bob", "cad-ledger.carl", "1279818"},
		{"cad-ledger.carl", "usd-ledger.bob", "778238"},
	}
	for _, item := range items {
		quote, err := f.quoter.QuoteBySourceAmount(context.Background(), quoter.Query{
			SourceAmount:            "1000000",
			SourceAccount:           item.source,
			DestinationAccount:      item.destination,
			DestinationHoldDuration: 5 * time.Second,
		})
		require.Nil(t, err, "quote %s → %s", item.source, item.destination)
		assert.Equal(t, "1000000", quote.SourceAmount, "source amount")
		assert.Equal(t, item.amount, quote.DestinationAmount, "%s → %s", item.source, item.destination)
		assert.Equal(t, 6*time.Second, quote.SourceHoldDuration, "source hold")
		assert.Equal(t, 5*time.Second, quote.DestinationHoldDuration, "destination hold")
	}
}

func TestFixedDestinationAmount(t *testing.T) {
	f := setup(t, 0, nil)

	quote, err := f.quoter.QuoteByDestinationAmount(context.Background(), quoter.Query{
		DestinationAmount:       "1000000",
		SourceAccount:           "eur-ledger.alice",
		DestinationAccount:      "usd-ledger.bob",
		DestinationHoldDuration: 5 * time.Second,
	})
	require.Nil(t, err, "quote")
	assert.Equal(t, &quoter.Quote{
		SourceLedger:            "eur-ledger.",
		NextLedger:              "usd-ledger.",
		SourceAmount:            "946000",
		DestinationAmount:       "1000000",
		SourceHoldDuration:      6 * time.Second,
		DestinationHoldDuration: 5 * time.Second,
	}, quote, "quote")
}

func TestPayingFixedDestinationQuote(t *testing.T) {
	f := setup(t, 0, nil)
	ctx := context.Background()

	quote, err := f.quoter.QuoteByDestinationAmount(ctx, quoter.Query{
		DestinationAmount:       "1000000",
		SourceAccount:           "eur-ledger.alice",
		DestinationAccount:      "usd-ledger.bob",
		DestinationHoldDuration: 5 * time.Second,
	})
	require.Nil(t, err, "quote")
	require.Equal(t, "946000", quote.SourceAmount, "quoted source")

	payment := &packet.Payment{Account: "usd-ledger.bob", Amount: "1000000"}
	hop, err := f.quoter.NextHop(ctx, "eur-ledger.", quote.SourceAmount, payment)
	require.Nil(t, err, "paying the quoted amount")
	assert.Equal(t, "usd-ledger.", hop.Ledger, "ledger")
	assert.Equal(t, "1000000", hop.Amount, "delivered amount")
	assert.True(t, hop.IsFinal, "final")

	_, err = f.quoter.NextHop(ctx, "eur-ledger.", "945999", payment)
	assert.True(t, fault.IsErrUnacceptableRate(err), "below the quoted source")
}

func TestBalanceFailureIgnored(t *testing.T) {
	f := setup(t, 0, failingBalances{})

	quote, err := f.quoter.QuoteBySourceAmount(context.Background(), quoter.Query{
		SourceAmount:            "1500001",
		SourceAccount:           "eur-ledger.alice",
		DestinationAccount:      "usd-ledger.bob",
		DestinationHoldDuration: 10 * time.Second,
	})
	assert.Nil(t, err, "quote")
	assert.NotNil(t, quote, "quote")
}

func TestDefaultHold(t *testing.T) {
	f := setup(t, 0, nil)

	quote, err := f.quoter.QuoteBySourceAmount(context.Background(), quoter.Query{
		SourceAmount:       "100",
		SourceAccount:      "eur-ledger.alice",
		DestinationAccount: "usd-ledger.bob",
	})
	require.Nil(t, err, "quote")
	assert.Equal(t, 5*time.Second, quote.DestinationHoldDuration, "default destination hold")
}

func TestLocalLiquidity(t *testing.T) {
	f := setup(t, 0, nil)

	quote, err := f.quoter.QuoteLiquidity(context.Background(), quoter.Query{
		SourceAccount:           "eur-ledger.alice",
		DestinationAccount:      "usd-ledger.bob",
		DestinationHoldDuration: 5 * time.Second,
	})
	require.Nil(t, err, "quote")
	assert.Equal(t, "eur-ledger.", quote.SourceLedger, "source ledger")
	assert.Equal(t, "usd-ledger.", quote.AppliesToPrefix, "prefix")
	assert.Equal(t, 6*time.Second, quote.SourceHoldDuration, "source hold")
	assert.Equal(t, 5*time.Second, quote.DestinationHoldDuration, "destination hold")
	assert.True(t, quote.ExpiresAt.After(time.Now().Add(9*time.Second)), "expiry")
	assert.Equal(t, "1057081.6", liquidity.FormatAmount(quote.Curve.Evaluate(liquidity.MustParseAmount("1000000"))), "curve")
}

func TestRemoteQuotes(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	f := setup(t, 4, nil)
	handler := f.addPeer(t, ctl)

	// later quotes use the cached curve
	handler.EXPECT().HandleRequest(gomock.Any(), gomock.Any()).DoAndReturn(liquidityReply(t)).Times(1)

	ctx := context.Background()
	quote, err := f.quoter.QuoteBySourceAmount(ctx, quoter.Query{
		SourceAmount:            "100",
		SourceAccount:           "usd-ledger.alice",
		DestinationAccount:      "random-ledger.bob",
		DestinationHoldDuration: 5 * time.Second,
	})
	require.Nil(t, err, "by source")
	assert.Equal(t, &quoter.Quote{
		SourceLedger:            "usd-ledger.",
		NextLedger:              "eur-ledger.",
		SourceAmount:            "100",
		DestinationAmount:       "47.111",
		SourceHoldDuration:      7 * time.Second,
		DestinationHoldDuration: 5 * time.Second,
	}, quote, "by source")

	// only the intermediate amount is truncated to the EUR ledger
	quote, err = f.quoter.QuoteBySourceAmount(ctx, quoter.Query{
		SourceAmount:            "100.0001",
		SourceAccount:           "usd-ledger.alice",
		DestinationAccount:      "random-ledger.bob",
		DestinationHoldDuration: 5 * time.Second,
	})
	require.Nil(t, err, "by source")
	assert.Equal(t, "47.11105", quote.DestinationAmount, "remote destination amount")

	quote, err = f.quoter.QuoteByDestinationAmount(ctx, quoter.Query{
		DestinationAmount:       "47.111",
		SourceAccount:           "usd-ledger.alice",
		DestinationAccount:      "random-ledger.bob",
		DestinationHoldDuration: 5 * time.Second,
	})
	require.Nil(t, err, "by destination")
	assert.Equal(t, "99.9999", quote.SourceAmount, "source amount")
	assert.Equal(t, 7*time.Second, quote.SourceHoldDuration, "source hold")

	lq, err := f.quoter.QuoteLiquidity(ctx, quoter.Query{
		SourceAccount:           "usd-ledger.alice",
		DestinationAccount:      "random-ledger.bob",
		DestinationHoldDuration: 5 * time.Second,
	})
	require.Nil(t, err, "liquidity")
	assert.Equal(t, "random-ledger.", lq.AppliesToPrefix, "prefix")
	assert.Equal(t, 7*time.Second, lq.SourceHoldDuration, "source hold")

	head := liquidity.MustParseAmount("100")
	head.Mul(head, liquidity.MustParseAmount("0.998"))
	head.Quo(head, liquidity.MustParseAmount("1.0592"))
	expected := new(big.Rat).Quo(head, big.NewRat(2, 1))
	actual := lq.Curve.Evaluate(liquidity.MustParseAmount("100"))
	assert.Equal(t, 0, expected.Cmp(actual), "composed curve: %s", liquidity.FormatAmount(actual))
	assert.Equal(t, 1, f.quoter.Caches().For("eur-ledger.").Len(), "cached curves")
}

func TestRemoteError(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	f := setup(t, 4, nil)
	handler := f.addPeer(t, ctl)
	handler.EXPECT().HandleRequest(gomock.Any(), gomock.Any()).Return(
		ledger.Message{Ilp: packet.ErrorFrom(fault.NoRouteFoundError("No route found from: eur-ledger.mary to: random-ledger.bob")).Pack()},
		nil,
	).Times(1)

	_, err := f.quoter.QuoteBySourceAmount(context.Background(), quoter.Query{
		SourceAmount:       "100",
		SourceAccount:      "usd-ledger.alice",
		DestinationAccount: "random-ledger.bob",
	})
	assert.True(t, fault.IsErrNoRouteFound(err), "remote kind")
	assert.Equal(t, 0, f.quoter.Caches().For("eur-ledger.").Len(), "failure not cached")
}

func TestNextHop(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	f := setup(t, 4, nil)
	f.addPeer(t, ctl)
	ctx := context.Background()

	hop, err := f.quoter.NextHop(ctx, "usd-ledger.", "100", &packet.Payment{Account: "eur-ledger.bob", Amount: "50"})
	require.Nil(t, err, "final hop")
	assert.Equal(t, &quoter.NextHop{
		Ledger:           "eur-ledger.",
		Account:          "eur-ledger.bob",
		Amount:           "50",
		IsFinal:          true,
		MinMessageWindow: time.Second,
	}, hop, "final hop")

	_, err = f.quoter.NextHop(ctx, "usd-ledger.", "100", &packet.Payment{Account: "eur-ledger.bob", Amount: "95"})
	assert.True(t, fault.IsErrUnacceptableRate(err), "rate too low")

	hop, err = f.quoter.NextHop(ctx, "usd-ledger.", "100", &packet.Payment{Account: "random-ledger.bob", Amount: "40"})
	require.Nil(t, err, "intermediate hop")
	assert.Equal(t, "eur-ledger.", hop.Ledger, "intermediate ledger")
	assert.Equal(t, "eur-ledger.mary", hop.Account, "next connector")
	assert.Equal(t, "94.222", hop.Amount, "intermediate amount")
	assert.False(t, hop.IsFinal, "intermediate")

	_, err = f.quoter.NextHop(ctx, "usd-ledger.", "100", &packet.Payment{Account: "nowhere.bob", Amount: "1"})
	assert.True(t, fault.IsErrNoRouteFound(err), "no route")
}
