// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ratelimit - throttle RPC requests
package ratelimit

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/michielbdejong/ilp-connector/fault"
)

// wait until n events are allowed
func reserve(limiter *rate.Limiter, n int) error {
	r := limiter.ReserveN(time.Now(), n)
	if !r.OK() {
		return fault.ErrRateLimiting
	}
	time.Sleep(r.Delay())
	return nil
}

// Limit - throttle a single request
func Limit(limiter *rate.Limiter) error {
	return reserve(limiter, 1)
}

// LimitN - throttle a request for count items
//
// an out of range count is charged as one request and rejected
func LimitN(limiter *rate.Limiter, count int, maximumCount int) error {
	if count <= 0 || count > maximumCount {
		if err := reserve(limiter, 1); nil != err {
			return err
		}
		return fault.ErrInvalidCount
	}
	return reserve(limiter, count)
}
