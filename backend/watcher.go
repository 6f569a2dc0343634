// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package backend

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Run - background refresh from the rates URL and reload of the
// rates file whenever it is written
func (b *FixedRates) Run(args interface{}, shutdown <-chan struct{}) {
	b.log.Info("starting…")

	var tick <-chan time.Time
	if "" != b.url && b.interval > 0 {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var events <-chan fsnotify.Event
	var watchErrors <-chan error
	if "" != b.file {
		watcher, err := b.watch()
		if nil != err {
			b.log.Errorf("watch rates file: %s  error: %s", b.file, err)
		} else {
			defer watcher.Close()
			events = watcher.Events
			watchErrors = watcher.Errors
		}
	}

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-tick:
			ctx, cancel := context.WithTimeout(context.Background(), b.client.Timeout)
			if err := b.Refresh(ctx); nil != err {
				b.log.Warnf("refresh rates error: %s", err)
			}
			cancel()

		case event := <-events:
			b.log.Debugf("file event: %v", event)
			if filepath.Base(event.Name) != filepath.Base(b.file) {
				continue loop
			}
			if fileChanged(event) {
				if err := b.LoadFile(); nil != err {
					b.log.Warnf("reload rates file error: %s", err)
				}
			}

		case err := <-watchErrors:
			b.log.Errorf("watcher error: %s", err)
		}
	}
	b.log.Info("stopped")
}

// watch the directory so a file replaced by rename is still seen
func (b *FixedRates) watch() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}
	path, err := filepath.Abs(filepath.Clean(b.file))
	if nil != err {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); nil != err {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}

func fileChanged(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create
}
