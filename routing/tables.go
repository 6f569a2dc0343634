// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routing

import (
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/prefix"
)

// PeerState - liveness of a peer connector
type PeerState int

// peer states
const (
	PeerUnknown PeerState = iota // never heard from
	PeerActive                   // hold down timer running
	PeerStale                    // hold down lapsed, routes pending removal
)

func (s PeerState) String() string {
	switch s {
	case PeerActive:
		return "ACTIVE"
	case PeerStale:
		return "STALE"
	default:
		return "UNKNOWN"
	}
}

// destination prefix → next hop → route
type table = prefix.Map[map[string]*Route]

// LearnedRoute - an advertisement and when it lapses
type LearnedRoute struct {
	Advertisement Advertisement
	ExpiresAt     time.Time
}

// advertisement as received with its hold down expiry
type learned struct {
	advertisement Advertisement
	expiresAt     time.Time
}

// Tables - all routing tables of this connector
type Tables struct {
	sync.RWMutex

	log            *logger.L
	expiryDuration time.Duration

	accounts   map[string]string   // local ledger → own account on it
	sources    *prefix.Map[*table] // local ledger → table
	learned    map[string]*learned // learned key → advertisement
	connectors map[string]time.Time
}

// New - create empty tables, routes from peers expire after
// expiryDuration unless refreshed
func New(log *logger.L, expiryDuration time.Duration) *Tables {
	return &Tables{
		log:            log,
		expiryDuration: expiryDuration,
		accounts:       make(map[string]string),
		sources:        prefix.New[*table](),
		learned:        make(map[string]*learned),
		connectors:     make(map[string]time.Time),
	}
}

// AddLocalLedger - register a ledger this connector holds an account on
func (t *Tables) AddLocalLedger(ledger string, account string) {
	t.Lock()
	defer t.Unlock()

	t.accounts[ledger] = account
	if _, ok := t.sources.Get(ledger); !ok {
		t.sources.Insert(ledger, prefix.New[map[string]*Route]())
	}
}

// LocalLedgers - sorted list of local ledger prefixes
func (t *Tables) LocalLedgers() []string {
	t.RLock()
	defer t.RUnlock()
	return t.sources.Keys()
}

// Account - own account on a local ledger
func (t *Tables) Account(ledger string) (string, bool) {
	t.RLock()
	defer t.RUnlock()
	a, ok := t.accounts[ledger]
	return a, ok
}

// SetLocalRoutes - replace all local routes and recompose every
// learned route on top of them
func (t *Tables) SetLocalRoutes(routes []*Route) error {
	t.Lock()
	defer t.Unlock()

	for _, r := range routes {
		if _, ok := t.sources.Get(r.SourceLedger); !ok {
			return fault.ErrSourceLedgerNotLocal
		}
	}

	// start from empty tables, learned routes are derived again below
	for _, ledger := range t.sources.Keys() {
		t.sources.Insert(ledger, prefix.New[map[string]*Route]())
	}

	for _, r := range routes {
		local := r.clone()
		local.IsLocal = true
		local.NextLedger = r.DestinationLedger
		local.NextHop = t.accounts[r.DestinationLedger]
		local.HeadCurve = r.Curve
		local.ExpiresAt = time.Time{}
		t.put(local)
	}

	for _, l := range t.learned {
		t.compose(l)
	}
	t.log.Infof("local routes: %d  learned routes: %d", len(routes), len(t.learned))
	return nil
}

// AddRoute - merge a route advertised by a peer
//
// returns true if any composed route is new or has a different
// curve or message window than before
func (t *Tables) AddRoute(a Advertisement) (bool, error) {
	if err := a.Validate(); nil != err {
		return false, err
	}
	if !prefix.Matches(a.SourceLedger, a.SourceAccount) {
		return false, fault.ErrConnectorAccountMismatch
	}
	if prefix.IsReserved(a.DestinationLedger) {
		return false, fault.ErrReservedPrefix
	}

	t.Lock()
	defer t.Unlock()

	if _, ok := t.sources.Get(a.SourceLedger); !ok {
		return false, fault.ErrSourceLedgerNotLocal
	}

	expiresAt := time.Now().Add(t.expiryDuration)
	if e, ok := t.connectors[a.SourceAccount]; ok && e.After(time.Now()) {
		expiresAt = e
	}

	l := &learned{
		advertisement: a,
		expiresAt:     expiresAt,
	}
	t.learned[learnedKey(a.SourceAccount, a.DestinationLedger)] = l
	return t.compose(l), nil
}

// Restore - re-add a route saved before shutdown with its original expiry
func (t *Tables) Restore(a Advertisement, expiresAt time.Time) (bool, error) {
	if !expiresAt.After(time.Now()) {
		return false, nil
	}
	changed, err := t.AddRoute(a)
	if nil != err || !changed {
		return changed, err
	}

	t.Lock()
	defer t.Unlock()
	if l, ok := t.learned[learnedKey(a.SourceAccount, a.DestinationLedger)]; ok {
		l.expiresAt = expiresAt
		t.setExpiry(a.SourceAccount, a.DestinationLedger, expiresAt)
	}
	return true, nil
}

// BumpConnector - refresh the hold down of every route via a connector
func (t *Tables) BumpConnector(connector string, holdDown time.Duration) {
	t.Lock()
	defer t.Unlock()

	expiresAt := time.Now().Add(holdDown)
	t.connectors[connector] = expiresAt

	for _, l := range t.learned {
		if connector == l.advertisement.SourceAccount {
			l.expiresAt = expiresAt
		}
	}
	t.each(func(r *Route) {
		if !r.IsLocal && connector == r.NextHop {
			r.ExpiresAt = expiresAt
		}
	})
}

// InvalidateConnectorsRoutesTo - drop routes through a connector that
// reach a prefix
//
// returns the destination prefixes that lost a route
func (t *Tables) InvalidateConnectorsRoutesTo(connector string, ledgerPrefix string) []string {
	t.Lock()
	defer t.Unlock()

	for k, l := range t.learned {
		a := l.advertisement
		if connector == a.SourceAccount && prefix.Matches(ledgerPrefix, a.DestinationLedger) {
			delete(t.learned, k)
		}
	}

	return t.remove(func(r *Route) bool {
		return !r.IsLocal && connector == r.NextHop && prefix.Matches(ledgerPrefix, r.DestinationLedger)
	})
}

// RemoveExpiredRoutes - drop routes whose hold down lapsed
//
// returns the destination prefixes that lost a route
func (t *Tables) RemoveExpiredRoutes() []string {
	t.Lock()
	defer t.Unlock()

	now := time.Now()
	for k, l := range t.learned {
		if now.After(l.expiresAt) {
			delete(t.learned, k)
		}
	}
	return t.remove(func(r *Route) bool {
		return r.expired(now)
	})
}

// PeerState - liveness of a connector
func (t *Tables) PeerState(connector string) PeerState {
	t.RLock()
	defer t.RUnlock()

	expiresAt, ok := t.connectors[connector]
	if !ok {
		return PeerUnknown
	}
	if time.Now().After(expiresAt) {
		return PeerStale
	}
	return PeerActive
}

// FindBestHopForSourceAmount - route giving the most at destination
func (t *Tables) FindBestHopForSourceAmount(source string, destination string, sourceAmount *big.Rat) (*Hop, error) {
	t.RLock()
	defer t.RUnlock()

	sourceLedger, candidates, err := t.candidates(source, destination)
	if nil != err {
		return nil, err
	}

	var best *Route
	var bestAmount *big.Rat
	for _, r := range candidates {
		amount := r.Curve.Evaluate(sourceAmount)
		if nil == best || better(amount.Cmp(bestAmount), r, best) {
			best = r
			bestAmount = amount
		}
	}
	return hop(sourceLedger, best, sourceAmount, bestAmount), nil
}

// FindBestHopForDestinationAmount - route needing the least source amount
func (t *Tables) FindBestHopForDestinationAmount(source string, destination string, destinationAmount *big.Rat) (*Hop, error) {
	t.RLock()
	defer t.RUnlock()

	sourceLedger, candidates, err := t.candidates(source, destination)
	if nil != err {
		return nil, err
	}

	var best *Route
	var bestAmount *big.Rat
	for _, r := range candidates {
		amount, err := r.Curve.Invert(destinationAmount)
		if nil != err {
			continue
		}
		if nil == best || better(bestAmount.Cmp(amount), r, best) {
			best = r
			bestAmount = amount
		}
	}
	if nil == best {
		return nil, fault.AssetsNotTradedError("no route can deliver " + liquidity.FormatAmount(destinationAmount) + " to: " + destination)
	}
	return hop(sourceLedger, best, bestAmount, destinationAmount), nil
}

// FindRoutes - every unexpired route from source towards destination
// keyed by next hop
func (t *Tables) FindRoutes(source string, destination string) (map[string]*Route, error) {
	t.RLock()
	defer t.RUnlock()

	_, candidates, err := t.candidates(source, destination)
	if nil != err {
		return nil, err
	}
	routes := make(map[string]*Route, len(candidates))
	for _, r := range candidates {
		routes[r.NextHop] = r.clone()
	}
	return routes, nil
}

// Routes - copy of every route, ordered by source then destination
func (t *Tables) Routes() []*Route {
	t.RLock()
	defer t.RUnlock()

	routes := make([]*Route, 0)
	t.each(func(r *Route) {
		routes = append(routes, r.clone())
	})
	return routes
}

// Advertisements - what a peer on ledger may be told
//
// for each destination the curves of all routes not through the
// peer are combined, reserved prefixes are never advertised
func (t *Tables) Advertisements(ledger string, peer string) []Advertisement {
	t.RLock()
	defer t.RUnlock()

	tbl, ok := t.sources.Get(ledger)
	if !ok {
		return nil
	}
	account := t.accounts[ledger]
	now := time.Now()

	result := make([]Advertisement, 0, tbl.Len())
	tbl.Each(func(destination string, routes map[string]*Route) bool {
		if prefix.IsReserved(destination) {
			return true
		}
		var curve *liquidity.Curve
		window := time.Duration(0)
		for _, hop := range sortedHops(routes) {
			r := routes[hop]
			if peer == r.NextHop || r.expired(now) {
				continue
			}
			if nil == curve {
				curve = r.Curve
			} else {
				curve = curve.Combine(r.Curve)
			}
			if r.MinMessageWindow > window {
				window = r.MinMessageWindow
			}
		}
		if nil != curve {
			result = append(result, Advertisement{
				SourceLedger:      ledger,
				DestinationLedger: destination,
				SourceAccount:     account,
				MinMessageWindow:  int64((window + time.Second - 1) / time.Second),
				Points:            curve,
			})
		}
		return true
	})
	return result
}

// Learned - advertisements received from peers with their expiry
func (t *Tables) Learned() []LearnedRoute {
	t.RLock()
	defer t.RUnlock()

	keys := make([]string, 0, len(t.learned))
	for k := range t.learned {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]LearnedRoute, len(keys))
	for i, k := range keys {
		l := t.learned[k]
		result[i] = LearnedRoute{
			Advertisement: l.advertisement,
			ExpiresAt:     l.expiresAt,
		}
	}
	return result
}

// HasRouteTo - true if any source table can reach the prefix
func (t *Tables) HasRouteTo(destination string) bool {
	t.RLock()
	defer t.RUnlock()

	found := false
	now := time.Now()
	t.sources.Each(func(_ string, tbl *table) bool {
		if routes, ok := tbl.Get(destination); ok {
			for _, r := range routes {
				if !r.expired(now) {
					found = true
				}
			}
		}
		return !found
	})
	return found
}

// internal routines, hold the lock before calling

func learnedKey(account string, destination string) string {
	return account + " " + destination
}

// compose a learned route with each local route that reaches the
// ledger it was learned on
func (t *Tables) compose(l *learned) bool {
	a := l.advertisement
	changed := false

	t.sources.Each(func(sourceLedger string, tbl *table) bool {
		if sourceLedger == a.SourceLedger {
			return true
		}
		head := t.localRoute(tbl, a.SourceLedger)
		if nil == head {
			return true
		}

		r := &Route{
			SourceLedger:      sourceLedger,
			NextLedger:        a.SourceLedger,
			DestinationLedger: a.DestinationLedger,
			NextHop:           a.SourceAccount,
			Curve:             head.Curve.Compose(a.Points),
			HeadCurve:         head.Curve,
			MinMessageWindow:  head.MinMessageWindow + a.window(),
			IsLocal:           false,
			ExpiresAt:         l.expiresAt,
		}

		routes, _ := tbl.Get(a.DestinationLedger)
		existing := routes[a.SourceAccount]
		if nil == existing || !existing.Curve.Equal(r.Curve) || existing.MinMessageWindow != r.MinMessageWindow {
			changed = true
		}
		t.put(r)
		return true
	})
	return changed
}

// local route from a table to a ledger
func (t *Tables) localRoute(tbl *table, ledger string) *Route {
	routes, ok := tbl.Get(ledger)
	if !ok {
		return nil
	}
	for _, r := range routes {
		if r.IsLocal {
			return r
		}
	}
	return nil
}

func (t *Tables) put(r *Route) {
	tbl, ok := t.sources.Get(r.SourceLedger)
	if !ok {
		return
	}
	routes, ok := tbl.Get(r.DestinationLedger)
	if !ok {
		routes = make(map[string]*Route)
		tbl.Insert(r.DestinationLedger, routes)
	}
	routes[r.NextHop] = r
}

func (t *Tables) setExpiry(connector string, destination string, expiresAt time.Time) {
	t.each(func(r *Route) {
		if !r.IsLocal && connector == r.NextHop && destination == r.DestinationLedger {
			r.ExpiresAt = expiresAt
		}
	})
}

// visit every route in a stable order
func (t *Tables) each(f func(r *Route)) {
	t.sources.Each(func(_ string, tbl *table) bool {
		tbl.Each(func(_ string, routes map[string]*Route) bool {
			for _, hop := range sortedHops(routes) {
				f(routes[hop])
			}
			return true
		})
		return true
	})
}

// delete matching routes, returns affected destinations
func (t *Tables) remove(match func(r *Route) bool) []string {
	lost := make(map[string]struct{})
	t.sources.Each(func(_ string, tbl *table) bool {
		for _, destination := range tbl.Keys() {
			routes, _ := tbl.Get(destination)
			for hop, r := range routes {
				if match(r) {
					delete(routes, hop)
					lost[destination] = struct{}{}
				}
			}
			if 0 == len(routes) {
				tbl.Delete(destination)
			}
		}
		return true
	})

	result := make([]string, 0, len(lost))
	for p := range lost {
		result = append(result, p)
	}
	sort.Strings(result)
	return result
}

// resolve the source ledger and the unexpired routes for destination
func (t *Tables) candidates(source string, destination string) (string, []*Route, error) {
	sourceLedger, tbl, ok := t.sources.Resolve(source)
	if !ok {
		return "", nil, fault.ErrRouteNotFound
	}
	_, routes, ok := tbl.Resolve(destination)
	if !ok {
		return sourceLedger, nil, fault.ErrRouteNotFound
	}

	now := time.Now()
	result := make([]*Route, 0, len(routes))
	for _, hop := range sortedHops(routes) {
		r := routes[hop]
		if !r.expired(now) {
			result = append(result, r)
		}
	}
	if 0 == len(result) {
		return sourceLedger, nil, fault.ErrRouteNotFound
	}
	return sourceLedger, result, nil
}

// cmp > 0 means the candidate amount is better, ties go to local routes
func better(cmp int, candidate *Route, best *Route) bool {
	if cmp != 0 {
		return cmp > 0
	}
	return candidate.IsLocal && !best.IsLocal
}

func hop(sourceLedger string, r *Route, sourceAmount *big.Rat, finalAmount *big.Rat) *Hop {
	h := &Hop{
		IsLocal:           r.IsLocal,
		SourceLedger:      sourceLedger,
		SourceAmount:      sourceAmount,
		DestinationLedger: r.NextLedger,
		FinalLedger:       r.DestinationLedger,
		FinalAmount:       finalAmount,
		MinMessageWindow:  r.MinMessageWindow,
	}
	if r.IsLocal {
		h.DestinationAmount = finalAmount
	} else {
		h.DestinationCreditAccount = r.NextHop
		h.DestinationAmount = r.HeadCurve.Evaluate(sourceAmount)
	}
	return h
}

func sortedHops(routes map[string]*Route) []string {
	hops := make([]string, 0, len(routes))
	for hop := range routes {
		hops = append(hops, hop)
	}
	sort.Strings(hops)
	return hops
}
