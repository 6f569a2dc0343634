// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package backend - exchange rates behind the local routes
//
// Rates are quoted against a base currency, the rate from currency
// A to currency B is rates[B] / rates[A] less the spread, offered
// as a straight line up to a fixed liquidity limit
package backend

import (
	"math/big"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/routing"
)

// largest source amount of a local curve
var curveLimit = liquidity.MustParseAmount("1000000000000")

// Configuration - from the configuration file
type Configuration struct {
	Spread          string            `gluamapper:"spread" json:"spread"`
	Base            string            `gluamapper:"base" json:"base"`
	Rates           map[string]string `gluamapper:"rates" json:"rates"`
	RatesURL        string            `gluamapper:"rates_url" json:"rates_url"`
	RatesFile       string            `gluamapper:"rates_file" json:"rates_file"`
	RefreshInterval int               `gluamapper:"refresh_interval" json:"refresh_interval"` // seconds
}

// FixedRates - rates table with spread
type FixedRates struct {
	sync.RWMutex

	log      *logger.L
	spread   *big.Rat
	rates    map[string]*big.Rat // currency → units per base unit
	url      string
	file     string
	interval time.Duration
	client   *http.Client
	changed  chan struct{}
}

// New - backend from configuration
func New(log *logger.L, conf Configuration) (*FixedRates, error) {
	spread := big.NewRat(0, 1)
	if "" != conf.Spread {
		s, err := liquidity.ParseAmount(conf.Spread)
		if nil != err {
			return nil, err
		}
		spread = s
	}
	if spread.Sign() < 0 || spread.Cmp(big.NewRat(1, 1)) >= 0 {
		return nil, fault.ErrInvalidSpread
	}

	b := &FixedRates{
		log:      log,
		spread:   spread,
		rates:    make(map[string]*big.Rat),
		url:      conf.RatesURL,
		file:     conf.RatesFile,
		interval: time.Duration(conf.RefreshInterval) * time.Second,
		client:   &http.Client{Timeout: 10 * time.Second},
		changed:  make(chan struct{}, 1),
	}
	if len(conf.Rates) > 0 {
		if err := b.SetRates(conf.Base, conf.Rates); nil != err {
			return nil, err
		}
	}
	return b, nil
}

// SetRates - replace the rate table
//
// the base currency has rate one whether listed or not
func (b *FixedRates) SetRates(base string, rates map[string]string) error {
	table := make(map[string]*big.Rat, len(rates)+1)
	for currency, s := range rates {
		r, err := liquidity.ParseAmount(s)
		if nil != err {
			return err
		}
		if !liquidity.IsPositive(r) {
			return fault.ErrInvalidRate
		}
		table[currency] = r
	}
	if "" != base {
		table[base] = big.NewRat(1, 1)
	}

	b.Lock()
	b.rates = table
	b.Unlock()

	b.log.Infof("rates: %d currencies  base: %s", len(table), base)

	select {
	case b.changed <- struct{}{}:
	default:
	}
	return nil
}

// Changed - signalled after the rates are replaced
func (b *FixedRates) Changed() <-chan struct{} {
	return b.changed
}

// Currencies - sorted list of traded currencies
func (b *FixedRates) Currencies() []string {
	b.RLock()
	defer b.RUnlock()

	currencies := make([]string, 0, len(b.rates))
	for c := range b.rates {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)
	return currencies
}

// Rate - destination units per source unit after the spread
func (b *FixedRates) Rate(source string, destination string) (*big.Rat, error) {
	b.RLock()
	defer b.RUnlock()

	s, ok := b.rates[source]
	if !ok {
		return nil, fault.AssetsNotTradedError("This connector does not support the given asset pair: " + source + "/" + destination)
	}
	d, ok := b.rates[destination]
	if !ok {
		return nil, fault.AssetsNotTradedError("This connector does not support the given asset pair: " + source + "/" + destination)
	}

	rate := new(big.Rat).Quo(d, s)
	return rate.Mul(rate, new(big.Rat).Sub(big.NewRat(1, 1), b.spread)), nil
}

// Curve - liquidity curve between two currencies
func (b *FixedRates) Curve(source string, destination string) (*liquidity.Curve, error) {
	rate, err := b.Rate(source, destination)
	if nil != err {
		return nil, err
	}
	return liquidity.Linear(curveLimit, rate), nil
}

// LocalRoutes - a route between every pair of ledgers whose
// currencies are traded
func (b *FixedRates) LocalRoutes(infos []ledger.Info, minMessageWindow time.Duration) []*routing.Route {
	routes := make([]*routing.Route, 0, len(infos)*len(infos))
	for _, source := range infos {
		for _, destination := range infos {
			if source.Prefix == destination.Prefix {
				continue
			}
			curve, err := b.Curve(source.CurrencyCode, destination.CurrencyCode)
			if nil != err {
				b.log.Debugf("no route: %s → %s  error: %s", source.Prefix, destination.Prefix, err)
				continue
			}
			routes = append(routes, &routing.Route{
				SourceLedger:      source.Prefix,
				DestinationLedger: destination.Prefix,
				Curve:             curve,
				MinMessageWindow:  minMessageWindow,
			})
		}
	}
	return routes
}
