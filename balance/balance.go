// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package balance - recently read balances of the connector's
// ledger accounts
package balance

import (
	"context"
	"math/big"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/jellydator/ttlcache/v3"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/liquidity"
)

// Source - where plugins are found
type Source interface {
	Plugin(ledger string) (ledger.Plugin, error)
}

// Cache - balance per ledger prefix
type Cache struct {
	log    *logger.L
	source Source
	items  *ttlcache.Cache[string, *big.Rat]
}

// New - balances are read again once ttl has passed
func New(log *logger.L, source Source, ttl time.Duration) *Cache {
	return &Cache{
		log:    log,
		source: source,
		items: ttlcache.New[string, *big.Rat](
			ttlcache.WithTTL[string, *big.Rat](ttl),
			ttlcache.WithDisableTouchOnHit[string, *big.Rat](),
		),
	}
}

// Get - balance of the connector on a ledger
//
// a failed read is an ExternalError and is not cached
func (c *Cache) Get(ctx context.Context, ledgerPrefix string) (*big.Rat, error) {
	if item := c.items.Get(ledgerPrefix); nil != item && !item.IsExpired() {
		return new(big.Rat).Set(item.Value()), nil
	}

	plugin, err := c.source.Plugin(ledgerPrefix)
	if nil != err {
		return nil, err
	}
	s, err := plugin.GetBalance(ctx)
	if nil != err {
		c.log.Warnf("balance: %s  error: %s", ledgerPrefix, err)
		return nil, fault.ExternalError("balance of " + ledgerPrefix + ": " + err.Error())
	}
	b, err := liquidity.ParseAmount(s)
	if nil != err {
		return nil, fault.ExternalError("balance of " + ledgerPrefix + ": " + err.Error())
	}

	c.log.Debugf("balance: %s  amount: %s", ledgerPrefix, s)
	c.items.Set(ledgerPrefix, b, ttlcache.DefaultTTL)
	return new(big.Rat).Set(b), nil
}

// Invalidate - forget the balance of a ledger
func (c *Cache) Invalidate(ledgerPrefix string) {
	c.items.Delete(ledgerPrefix)
}

// Run - background removal of stale entries
func (c *Cache) Run(args interface{}, shutdown <-chan struct{}) {
	c.log.Info("starting…")
	go c.items.Start()
	<-shutdown
	c.items.Stop()
	c.log.Info("stopped")
}
