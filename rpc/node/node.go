// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"sort"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/michielbdejong/ilp-connector/counter"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/routing"
	"github.com/michielbdejong/ilp-connector/rpc/ratelimit"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// Ledgers - plugins of the connector
type Ledgers interface {
	Prefixes() []string
	Plugin(ledger string) (ledger.Plugin, error)
}

// Node - type for RPC calls
type Node struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Start   time.Time
	Version string
	Ledgers Ledgers
	Tables  *routing.Tables
	counter *counter.Counter
}

// New - create the node RPC handler
func New(log *logger.L, start time.Time, version string, counter *counter.Counter, ledgers Ledgers, tables *routing.Tables) *Node {
	return &Node{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitNode, rateBurstNode),
		Start:   start,
		Version: version,
		Ledgers: ledgers,
		Tables:  tables,
		counter: counter,
	}
}

// ---

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	Version string       `json:"version"`
	Uptime  string       `json:"uptime"`
	RPCs    uint64       `json:"rpcs"`
	Routes  int          `json:"routes"`
	Ledgers []LedgerInfo `json:"ledgers"`
}

// LedgerInfo - one ledger the connector holds an account on
type LedgerInfo struct {
	Prefix    string     `json:"prefix"`
	Account   string     `json:"account"`
	Currency  string     `json:"currency"`
	Scale     int        `json:"scale"`
	Connected bool       `json:"connected"`
	Peers     []PeerInfo `json:"peers"`
}

// PeerInfo - liveness of a peer connector
type PeerInfo struct {
	Account string `json:"account"`
	State   string `json:"state"`
}

// Info - return the state of this connector
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	prefixes := node.Ledgers.Prefixes()
	sort.Strings(prefixes)

	ledgers := make([]LedgerInfo, 0, len(prefixes))
	for _, p := range prefixes {
		plugin, err := node.Ledgers.Plugin(p)
		if nil != err {
			node.Log.Warnf("ledger: %s  error: %s", p, err)
			continue
		}
		info := plugin.GetInfo()
		account := plugin.GetAccount()

		peers := make([]PeerInfo, 0, len(info.Connectors))
		for _, c := range info.Connectors {
			if c == account {
				continue
			}
			peers = append(peers, PeerInfo{
				Account: c,
				State:   node.Tables.PeerState(c).String(),
			})
		}

		ledgers = append(ledgers, LedgerInfo{
			Prefix:    p,
			Account:   account,
			Currency:  info.CurrencyCode,
			Scale:     info.Scale,
			Connected: plugin.IsConnected(),
			Peers:     peers,
		})
	}

	reply.Version = node.Version
	reply.Uptime = time.Since(node.Start).String()
	reply.RPCs = node.counter.Uint64()
	reply.Routes = len(node.Tables.Routes())
	reply.Ledgers = ledgers
	return nil
}
