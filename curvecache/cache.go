// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package curvecache - liquidity curves fetched directly from peers
//
// Quotes are bucketed by the destination prefix they apply to and
// are filtered by expiry when read, nothing sweeps them in the
// background
package curvecache

import (
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/prefix"
)

// Quote - a remote liquidity quote
type Quote struct {
	AppliesToPrefix    string
	NextHop            string           // connector that supplied the curve
	Curve              *liquidity.Curve // amount sent to NextHop → amount at destination
	SourceHoldDuration time.Duration
	ExpiresAt          time.Time
}

// Cache - quotes received over one ledger
type Cache struct {
	sync.Mutex
	buckets *prefix.Map[*cache.Cache]
}

// New - empty cache
func New() *Cache {
	return &Cache{
		buckets: prefix.New[*cache.Cache](),
	}
}

// Insert - add a quote to the bucket of a destination prefix
//
// a newer quote from the same next hop replaces the older one
func (c *Cache) Insert(destinationPrefix string, q *Quote) {
	ttl := time.Until(q.ExpiresAt)
	if ttl <= 0 {
		return
	}

	c.Lock()
	defer c.Unlock()

	bucket, ok := c.buckets.Get(destinationPrefix)
	if !ok {
		// zero cleanup interval: expiry is only checked on read
		bucket = cache.New(cache.NoExpiration, 0)
		c.buckets.Insert(destinationPrefix, bucket)
	}
	bucket.Set(q.NextHop, q, ttl)
}

// FindBestPathForSourceAmount - unexpired quote giving the most at
// destination, nil if there is none
func (c *Cache) FindBestPathForSourceAmount(destination string, sourceAmount *big.Rat) *Quote {
	var best *Quote
	var bestAmount *big.Rat
	for _, q := range c.live(destination) {
		amount := q.Curve.Evaluate(sourceAmount)
		if nil == best || amount.Cmp(bestAmount) > 0 {
			best = q
			bestAmount = amount
		}
	}
	return best
}

// Find - unexpired quote from a particular next hop, nil if none
func (c *Cache) Find(destination string, nextHop string) *Quote {
	for _, q := range c.live(destination) {
		if nextHop == q.NextHop {
			return q
		}
	}
	return nil
}

// Len - unexpired quotes in all buckets
func (c *Cache) Len() int {
	c.Lock()
	defer c.Unlock()

	n := 0
	c.buckets.Each(func(_ string, bucket *cache.Cache) bool {
		n += len(bucket.Items())
		return true
	})
	return n
}

// quotes of the bucket of the longest matching prefix, ordered by hop
func (c *Cache) live(destination string) []*Quote {
	c.Lock()
	defer c.Unlock()

	_, bucket, ok := c.buckets.Resolve(destination)
	if !ok {
		return nil
	}

	now := time.Now()
	items := bucket.Items() // excludes expired items
	hops := make([]string, 0, len(items))
	for hop := range items {
		hops = append(hops, hop)
	}
	sort.Strings(hops)

	quotes := make([]*Quote, 0, len(hops))
	for _, hop := range hops {
		q := items[hop].Object.(*Quote)
		if now.Before(q.ExpiresAt) {
			quotes = append(quotes, q)
		}
	}
	return quotes
}

// Caches - one cache per ledger the quotes were received over
type Caches struct {
	sync.Mutex
	ledgers map[string]*Cache
}

// NewCaches - empty set of caches
func NewCaches() *Caches {
	return &Caches{
		ledgers: make(map[string]*Cache),
	}
}

// For - the cache of a ledger, created on first use
func (cs *Caches) For(ledger string) *Cache {
	cs.Lock()
	defer cs.Unlock()

	c, ok := cs.ledgers[ledger]
	if !ok {
		c = New()
		cs.ledgers[ledger] = c
	}
	return c
}
