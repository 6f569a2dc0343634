// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package balance_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michielbdejong/ilp-connector/balance"
	"github.com/michielbdejong/ilp-connector/background"
	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/ledger/mocks"
	"github.com/michielbdejong/ilp-connector/liquidity"
)

func setup(t *testing.T, ctl *gomock.Controller, ttl time.Duration) (*balance.Cache, *mocks.MockPlugin) {
	m := mocks.NewMockPlugin(ctl)
	m.EXPECT().GetInfo().Return(ledger.Info{Prefix: "usd-ledger."}).AnyTimes()
	m.EXPECT().GetAccount().Return("usd-ledger.mark").AnyTimes()

	ledgers := ledger.New(logger.New(category))
	require.Nil(t, ledgers.Add(m), "add plugin")
	return balance.New(logger.New(category), ledgers, ttl), m
}

func TestCachedRead(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c, m := setup(t, ctl, time.Minute)
	m.EXPECT().GetBalance(gomock.Any()).Return("123.45", nil).Times(1)

	for i := 0; i < 3; i += 1 {
		b, err := c.Get(context.Background(), "usd-ledger.")
		assert.Nil(t, err, "get")
		assert.Equal(t, "123.45", liquidity.FormatAmount(b), "balance")
	}
}

func TestInvalidate(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c, m := setup(t, ctl, time.Minute)
	gomock.InOrder(
		m.EXPECT().GetBalance(gomock.Any()).Return("1", nil),
		m.EXPECT().GetBalance(gomock.Any()).Return("2", nil),
	)

	b, err := c.Get(context.Background(), "usd-ledger.")
	assert.Nil(t, err, "first get")
	assert.Equal(t, "1", liquidity.FormatAmount(b), "first balance")

	c.Invalidate("usd-ledger.")
	b, err = c.Get(context.Background(), "usd-ledger.")
	assert.Nil(t, err, "second get")
	assert.Equal(t, "2", liquidity.FormatAmount(b), "second balance")
}

func TestExpiry(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c, m := setup(t, ctl, 10*time.Millisecond)
	m.EXPECT().GetBalance(gomock.Any()).Return("7", nil).Times(2)

	p := background.Start(background.Processes{c}, nil)
	defer p.Stop()

	_, err := c.Get(context.Background(), "usd-ledger.")
	assert.Nil(t, err, "first get")
	time.Sleep(30 * time.Millisecond)
	_, err = c.Get(context.Background(), "usd-ledger.")
	assert.Nil(t, err, "second get")
}

func TestFailureIsExternal(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c, m := setup(t, ctl, time.Minute)
	gomock.InOrder(
		m.EXPECT().GetBalance(gomock.Any()).Return("", fmt.Errorf("timeout")),
		m.EXPECT().GetBalance(gomock.Any()).Return("5", nil),
	)

	_, err := c.Get(context.Background(), "usd-ledger.")
	assert.True(t, fault.IsErrExternal(err), "external error")

	b, err := c.Get(context.Background(), "usd-ledger.")
	assert.Nil(t, err, "retry")
	assert.Equal(t, "5", liquidity.FormatAmount(b), "balance")

	_, err = c.Get(context.Background(), "cad-ledger.")
	assert.Equal(t, fault.ErrLedgerNotFound, err, "unknown ledger")
}
