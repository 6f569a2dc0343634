// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node_test

import (
	"context"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michielbdejong/ilp-connector/counter"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/ledger/virtual"
	"github.com/michielbdejong/ilp-connector/routing"
	"github.com/michielbdejong/ilp-connector/rpc/node"
)

func TestNodeInfo(t *testing.T) {
	log := logger.New(category)

	l, err := virtual.New(ledger.Info{
		Prefix:       "usd-ledger.",
		CurrencyCode: "USD",
		Scale:        2,
		Precision:    10,
		Connectors:   []string{"usd-ledger.mark", "usd-ledger.mary"},
	}, log)
	require.Nil(t, err, "new ledger")
	mark, err := l.Open("usd-ledger.mark", "100")
	require.Nil(t, err, "open account")
	require.Nil(t, mark.Connect(context.Background()), "connect")

	ledgers := ledger.New(log)
	require.Nil(t, ledgers.Add(mark), "add ledger")

	tables := routing.New(log, time.Minute)
	tables.AddLocalLedger("usd-ledger.", "usd-ledger.mark")
	tables.BumpConnector("usd-ledger.mary", time.Minute)

	ctr := counter.Counter(3)
	n := node.New(log, time.Now().Add(-time.Hour), "1.2.3", &ctr, ledgers, tables)

	var reply node.InfoReply
	err = n.Info(&node.InfoArguments{}, &reply)
	require.Nil(t, err, "wrong info")

	assert.Equal(t, "1.2.3", reply.Version, "wrong version")
	assert.Equal(t, uint64(3), reply.RPCs, "wrong rpc count")
	assert.Equal(t, 0, reply.Routes, "wrong route count")
	require.Equal(t, 1, len(reply.Ledgers), "wrong ledger count")

	info := reply.Ledgers[0]
	assert.Equal(t, "usd-ledger.", info.Prefix, "wrong prefix")
	assert.Equal(t, "usd-ledger.mark", info.Account, "wrong account")
	assert.Equal(t, "USD", info.Currency, "wrong currency")
	assert.Equal(t, 2, info.Scale, "wrong scale")
	assert.True(t, info.Connected, "not connected")
	assert.Equal(t, []node.PeerInfo{{Account: "usd-ledger.mary", State: "ACTIVE"}}, info.Peers, "wrong peers")
}
