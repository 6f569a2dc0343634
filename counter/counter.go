// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - atomic count of open connections
package counter

import (
	"sync/atomic"
)

// Counter - number of items currently in use
type Counter uint64

// Acquire - count one more item if the total stays within limit
func (c *Counter) Acquire(limit uint64) bool {
	for {
		n := atomic.LoadUint64((*uint64)(c))
		if n >= limit {
			return false
		}
		if atomic.CompareAndSwapUint64((*uint64)(c), n, n+1) {
			return true
		}
	}
}

// Release - give back an item taken by Acquire
func (c *Counter) Release() {
	atomic.AddUint64((*uint64)(c), ^uint64(0))
}

// Uint64 - current count
func (c *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(c))
}

// IsZero - true if nothing is in use
func (c *Counter) IsZero() bool {
	return 0 == c.Uint64()
}
