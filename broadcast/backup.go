// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package broadcast

import (
	"time"

	"github.com/michielbdejong/ilp-connector/storage"
)

// Restore - replay the routes saved by Backup that are still valid
func (b *RouteBroadcaster) Restore() error {
	routes, err := storage.LoadRoutes(time.Now())
	if nil != err {
		return err
	}

	restored := 0
	for _, r := range routes {
		changed, err := b.tables.Restore(r.Advertisement, r.ExpiresAt)
		if nil != err {
			b.log.Warnf("restore route to: %s  via: %s  error: %s", r.Advertisement.DestinationLedger, r.Advertisement.SourceAccount, err)
			continue
		}
		if changed {
			restored += 1
		}
	}
	b.log.Infof("restored routes: %d  of: %d", restored, len(routes))
	return nil
}

// Backup - save the learned routes with their expiry
func (b *RouteBroadcaster) Backup() error {
	learned := b.tables.Learned()
	if err := storage.SaveRoutes(learned); nil != err {
		return err
	}
	b.log.Infof("saved routes: %d", len(learned))
	return nil
}
