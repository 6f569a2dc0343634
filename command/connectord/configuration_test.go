// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfiguration = `
local M = {}

M.data_directory = "."

M.ledgers = {
    {
        prefix = "eur-ledger.",
        currency = "EUR",
        scale = 4,
        account = "eur-ledger.mark",
        balance = "1000",
        peers = { "eur-ledger.mary" },
    },
    {
        prefix = "usd-ledger.",
        currency = "USD",
        scale = 2,
        account = "usd-ledger.mark",
    },
}

M.backend = {
    spread = "0.002",
    base = "EUR",
    rates = {
        USD = "1.0592",
    },
    rates_file = "rates.json",
}

M.client_rpc = {
    maximum_connections = 5,
    listen = { "127.0.0.1:2130" },
}

M.routing = {
    route_expiry = 60,
}

return M
`

func writeConfiguration(t *testing.T, text string) (string, string) {
	directory := t.TempDir()
	fileName := filepath.Join(directory, "connectord.conf")
	err := os.WriteFile(fileName, []byte(text), 0600)
	require.Nil(t, err, "write configuration error")
	return directory, fileName
}

func TestGetConfiguration(t *testing.T) {
	directory, fileName := writeConfiguration(t, minimalConfiguration)

	c, err := getConfiguration(fileName)
	require.Nil(t, err, "wrong configuration error")

	assert.Equal(t, filepath.Clean(directory)+string(filepath.Separator), c.DataDirectory, "wrong data directory")
	assert.Equal(t, filepath.Join(directory, defaultLevelDBDirectory, defaultDatabase), c.Database.Name, "wrong database")
	assert.Equal(t, filepath.Join(directory, defaultLogDirectory), c.Logging.Directory, "wrong log directory")
	assert.Equal(t, filepath.Join(directory, "rates.json"), c.Backend.RatesFile, "wrong rates file")

	require.Equal(t, 2, len(c.Ledgers), "wrong ledger count")
	assert.Equal(t, virtualLedgerType, c.Ledgers[0].Type, "wrong default type")
	assert.Equal(t, "1000", c.Ledgers[0].Balance, "wrong balance")
	assert.Equal(t, []string{"eur-ledger.mary"}, c.Ledgers[0].Peers, "wrong peers")
	assert.Equal(t, "0", c.Ledgers[1].Balance, "wrong default balance")

	assert.Equal(t, "EUR", c.Backend.Base, "wrong base")
	assert.Equal(t, "1.0592", c.Backend.Rates["USD"], "wrong rate")

	assert.Equal(t, uint64(5), c.ClientRPC.MaximumConnections, "wrong maximum connections")
	assert.Equal(t, []string{"127.0.0.1:2130"}, c.ClientRPC.Listen, "wrong listen")

	// explicit value kept, others defaulted
	assert.True(t, c.Routing.Broadcast, "broadcast should default on")
	assert.Equal(t, 60, c.Routing.RouteExpiry, "wrong route expiry")
	assert.Equal(t, 30*time.Second, seconds(c.Routing.BroadcastInterval), "wrong broadcast interval")
	assert.Equal(t, time.Second, seconds(c.Routing.MinMessageWindow), "wrong min message window")
	assert.Equal(t, 10*time.Second, seconds(c.Routing.MaxHoldTime), "wrong max hold time")
	assert.Equal(t, 10*time.Second, seconds(c.Routing.QuoteExpiry), "wrong quote expiry")
	assert.Equal(t, 5*time.Second, seconds(c.Routing.DefaultDestinationHold), "wrong default hold")
	assert.Equal(t, 5*time.Second, seconds(c.Routing.BalanceCacheExpiry), "wrong balance cache expiry")

	info, err := os.Stat(filepath.Join(directory, defaultLevelDBDirectory))
	require.Nil(t, err, "database directory not created")
	assert.True(t, info.IsDir(), "database path is not a directory")
}

func TestGetConfigurationErrors(t *testing.T) {
	items := []struct {
		name string
		text string
	}{
		{"no ledgers", `return { data_directory = "." }`},
		{"no account", `return { data_directory = ".", ledgers = { { prefix = "eur-ledger." } } }`},
		{"bad type", `return { data_directory = ".", ledgers = { { prefix = "eur-ledger.", account = "eur-ledger.mark", type = "five-bells" } } }`},
		{"no data directory", `return { ledgers = { { prefix = "eur-ledger.", account = "eur-ledger.mark" } } }`},
		{"hold too long", `return { data_directory = ".", ledgers = { { prefix = "eur-ledger.", account = "eur-ledger.mark" } }, routing = { default_destination_hold = 20 } }`},
		{"zero interval", `return { data_directory = ".", ledgers = { { prefix = "eur-ledger.", account = "eur-ledger.mark" } }, routing = { broadcast_interval = 0 } }`},
		{"plain name", `return { data_directory = ".", ledgers = { { prefix = "eur-ledger.", account = "eur-ledger.mark" } }, database = { name = "sub/connector.leveldb" } }`},
	}

	for _, item := range items {
		_, fileName := writeConfiguration(t, item.text)
		_, err := getConfiguration(fileName)
		assert.NotNil(t, err, "%s: no error", item.name)
	}
}
