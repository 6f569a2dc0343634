// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/michielbdejong/ilp-connector/routing"
)

// stored form of a learned route
type routeRecord struct {
	Advertisement routing.Advertisement `json:"advertisement"`
	ExpiresAt     time.Time             `json:"expires_at"`
}

func routeKey(a routing.Advertisement) []byte {
	return []byte(a.SourceAccount + "\x00" + a.DestinationLedger)
}

// SaveRoutes - replace the stored routes with the given ones
func SaveRoutes(routes []routing.LearnedRoute) error {
	if err := Pool.Routes.Clear(); nil != err {
		return err
	}
	for _, r := range routes {
		buffer, err := json.Marshal(routeRecord{
			Advertisement: r.Advertisement,
			ExpiresAt:     r.ExpiresAt,
		})
		if nil != err {
			return errors.Wrap(err, "encode route")
		}
		if err := Pool.Routes.Put(routeKey(r.Advertisement), buffer); nil != err {
			return err
		}
	}
	return nil
}

// LoadRoutes - stored routes that have not yet expired
//
// expired and undecodable records are skipped
func LoadRoutes(now time.Time) ([]routing.LearnedRoute, error) {
	routes := make([]routing.LearnedRoute, 0)
	err := Pool.Routes.NewFetchCursor().Map(func(key []byte, value []byte) error {
		var r routeRecord
		if err := json.Unmarshal(value, &r); nil != err {
			poolData.log.Warnf("route: %q  decode error: %s", key, err)
			return nil
		}
		if !r.ExpiresAt.After(now) {
			return nil
		}
		routes = append(routes, routing.LearnedRoute{
			Advertisement: r.Advertisement,
			ExpiresAt:     r.ExpiresAt,
		})
		return nil
	})
	if nil != err {
		return nil, err
	}
	return routes, nil
}
