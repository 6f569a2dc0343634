// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routes

import (
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/michielbdejong/ilp-connector/liquidity"
	"github.com/michielbdejong/ilp-connector/routing"
	"github.com/michielbdejong/ilp-connector/rpc/ratelimit"
)

const (
	rateLimitRoutes = 200
	rateBurstRoutes = 100
)

// limit for count
const maximumRouteList = 100

// Routes - type for RPC calls
type Routes struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Tables  *routing.Tables
}

// New - create the routes RPC handler
func New(log *logger.L, tables *routing.Tables) *Routes {
	return &Routes{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitRoutes, rateBurstRoutes),
		Tables:  tables,
	}
}

// ListArguments - arguments for RPC
type ListArguments struct {
	Start uint64 `json:"start,string"`
	Count int    `json:"count"`
}

// Entry - one route of the routing tables
type Entry struct {
	SourceLedger      string           `json:"source_ledger"`
	NextLedger        string           `json:"next_ledger"`
	DestinationLedger string           `json:"destination_ledger"`
	NextHop           string           `json:"next_hop"`
	Points            *liquidity.Curve `json:"points"`
	MinMessageWindow  float64          `json:"min_message_window"` // seconds
	IsLocal           bool             `json:"is_local"`
	ExpiresAt         *time.Time       `json:"expires_at,omitempty"`
}

// ListReply - result from RPC
type ListReply struct {
	Routes    []Entry `json:"routes"`
	NextStart uint64  `json:"next_start,string"`
}

// List - page through the routing tables
func (r *Routes) List(arguments *ListArguments, reply *ListReply) error {

	if err := ratelimit.LimitN(r.Limiter, arguments.Count, maximumRouteList); nil != err {
		return err
	}

	all := r.Tables.Routes()

	start := arguments.Start
	if start > uint64(len(all)) {
		start = uint64(len(all))
	}
	end := start + uint64(arguments.Count)
	if end > uint64(len(all)) {
		end = uint64(len(all))
	}

	entries := make([]Entry, 0, end-start)
	for _, route := range all[start:end] {
		e := Entry{
			SourceLedger:      route.SourceLedger,
			NextLedger:        route.NextLedger,
			DestinationLedger: route.DestinationLedger,
			NextHop:           route.NextHop,
			Points:            route.Curve,
			MinMessageWindow:  route.MinMessageWindow.Seconds(),
			IsLocal:           route.IsLocal,
		}
		if !route.ExpiresAt.IsZero() {
			expiresAt := route.ExpiresAt.UTC()
			e.ExpiresAt = &expiresAt
		}
		entries = append(entries, e)
	}

	reply.Routes = entries
	reply.NextStart = end
	return nil
}
