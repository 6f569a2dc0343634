// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/michielbdejong/ilp-connector/fault"
)

// FetchCursor - cursor structure
type FetchCursor struct {
	pool     *PoolHandle
	maxRange util.Range
}

// whole key range of a pool
func (p *PoolHandle) keyRange() *util.Range {
	return &util.Range{
		Start: []byte{p.prefix}, // Start of key range, included in the range
		Limit: p.limit,          // Limit of key range, excluded from the range
	}
}

// NewFetchCursor - initialise a cursor to the start of a key range
func (p *PoolHandle) NewFetchCursor() *FetchCursor {
	if nil == p {
		return nil
	}
	return &FetchCursor{
		pool:     p,
		maxRange: *p.keyRange(),
	}
}

// Seek - move cursor to specific key position
func (cursor *FetchCursor) Seek(key []byte) *FetchCursor {
	cursor.maxRange.Start = cursor.pool.prefixKey(key)
	return cursor
}

// Fetch - return some elements starting from key
func (cursor *FetchCursor) Fetch(count int) ([]Element, error) {
	if nil == cursor {
		return nil, fault.ErrNotInitialised
	}
	if count <= 0 {
		return nil, fault.ErrInvalidCount
	}

	results := make([]Element, 0, count)
	var last []byte
	err := cursor.each(func(key []byte, value []byte) bool {
		results = append(results, Element{
			Key:   key,
			Value: value,
		})
		last = key
		return len(results) < count
	})

	// next fetch starts just after the last key returned
	if nil != last {
		cursor.maxRange.Start = append(cursor.pool.prefixKey(last), 0x00)
	}
	return results, err
}

// Map - run a function on all elements in the range
func (cursor *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	if nil == cursor {
		return fault.ErrNotInitialised
	}

	var err error
	iterErr := cursor.each(func(key []byte, value []byte) bool {
		err = f(key, value)
		return nil == err
	})
	if nil == err {
		err = iterErr
	}
	return err
}

// visit copies of the elements until f returns false
func (cursor *FetchCursor) each(f func(key []byte, value []byte) bool) error {
	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.database {
		return fault.ErrNotInitialised
	}

	iter := cursor.pool.database.NewIterator(&cursor.maxRange, nil)
	defer iter.Release()

iterating:
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ...

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		if !f(dataKey, dataValue) {
			break iterating
		}
	}
	return iter.Error()
}
