// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package broadcast

import (
	"context"
	"time"
)

// Run - background process: expire routes and broadcast periodically,
// reload local routes whenever the backend rates change
func (b *RouteBroadcaster) Run(args interface{}, shutdown <-chan struct{}) {
	log := b.log

	log.Info("starting…")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b.send(ctx)

	interval := b.conf.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	delay := time.After(interval)

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop

		case <-b.backend.Changed():
			log.Info("rates changed")
			if err := b.ReloadLocalRoutes(); nil != err {
				log.Errorf("reload local routes error: %s", err)
				continue loop
			}
			b.send(ctx)

		case <-delay:
			delay = time.After(interval)
			b.RemoveExpiredRoutes()
			b.send(ctx)
		}
	}

	if err := b.Backup(); nil != err {
		log.Errorf("backup routes error: %s", err)
	}
	log.Info("stopped")
}

func (b *RouteBroadcaster) send(ctx context.Context) {
	if !b.conf.Enabled {
		return
	}
	if err := b.Broadcast(ctx); nil != err {
		b.log.Warnf("error broadcasting routes: %s", err)
	}
}
