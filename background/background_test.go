// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/michielbdejong/ilp-connector/background"
)

type ticker struct {
	ticks    int64
	finished int64
}

func (state *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	interval := args.(time.Duration)
	t := time.NewTicker(interval)
	defer t.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-t.C:
			atomic.AddInt64(&state.ticks, 1)
		}
	}
	atomic.StoreInt64(&state.finished, 1)
}

func TestStartStop(t *testing.T) {
	proc1 := &ticker{}
	proc2 := &ticker{}

	p := background.Start(background.Processes{proc1, proc2}, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	assert.Equal(t, int64(1), atomic.LoadInt64(&proc1.finished), "first process did not finish")
	assert.Equal(t, int64(1), atomic.LoadInt64(&proc2.finished), "second process did not finish")
	assert.True(t, atomic.LoadInt64(&proc1.ticks) > 0, "first process never ran")
	assert.True(t, atomic.LoadInt64(&proc2.ticks) > 0, "second process never ran")

	// no further ticks once stopped
	n := atomic.LoadInt64(&proc1.ticks)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, atomic.LoadInt64(&proc1.ticks), "process ran after stop")
}

func TestStopTwice(t *testing.T) {
	p := background.Start(background.Processes{&ticker{}}, time.Millisecond)
	p.Stop()
	p.Stop()

	var none *background.T
	none.Stop()
}
