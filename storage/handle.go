// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/michielbdejong/ilp-connector/fault"
)

// PoolHandle - one prefixed table of the database
type PoolHandle struct {
	prefix   byte
	limit    []byte
	database *leveldb.DB
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p || nil == poolData.database {
		return fault.ErrNotInitialised
	}
	err := p.database.Put(p.prefixKey(key), value, nil)
	return errors.Wrap(err, "pool put")
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p || nil == poolData.database {
		return fault.ErrNotInitialised
	}
	err := p.database.Delete(p.prefixKey(key), nil)
	return errors.Wrap(err, "pool delete")
}

// Get - read a value for a given key
//
// a missing key returns nil without error
func (p *PoolHandle) Get(key []byte) ([]byte, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p || nil == poolData.database {
		return nil, fault.ErrNotInitialised
	}
	value, err := p.database.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	if nil != err {
		return nil, errors.Wrap(err, "pool get")
	}
	return value, nil
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) (bool, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p || nil == poolData.database {
		return false, fault.ErrNotInitialised
	}
	found, err := p.database.Has(p.prefixKey(key), nil)
	return found, errors.Wrap(err, "pool has")
}

// Clear - delete every key of the pool in one batch
func (p *PoolHandle) Clear() error {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p || nil == poolData.database {
		return fault.ErrNotInitialised
	}

	batch := new(leveldb.Batch)
	iter := p.database.NewIterator(p.keyRange(), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		return errors.Wrap(err, "pool clear")
	}
	return errors.Wrap(p.database.Write(batch, nil), "pool clear")
}
