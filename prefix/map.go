// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prefix

import (
	"sort"
)

// Map - values indexed by prefix with keys kept in sorted order
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// New - create an empty map
func New[V any]() *Map[V] {
	return &Map[V]{
		keys:   make([]string, 0),
		values: make(map[string]V),
	}
}

// Insert - add or replace the value for a key
func (m *Map[V]) Insert(key string, value V) {
	if _, ok := m.values[key]; !ok {
		i := sort.SearchStrings(m.keys, key)
		m.keys = append(m.keys, "")
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = key
	}
	m.values[key] = value
}

// Get - exact lookup
func (m *Map[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete - remove a key, returns false if it was not present
func (m *Map[V]) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	i := sort.SearchStrings(m.keys, key)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	return true
}

// Resolve - value of the longest key that is a prefix of address
func (m *Map[V]) Resolve(address string) (string, V, bool) {
	for l := len(address); l >= 0; l -= 1 {
		if v, ok := m.values[address[:l]]; ok {
			return address[:l], v, true
		}
	}
	var zero V
	return "", zero, false
}

// Keys - copy of the keys in sorted order
func (m *Map[V]) Keys() []string {
	return append([]string{}, m.keys...)
}

// Len - number of keys
func (m *Map[V]) Len() int {
	return len(m.keys)
}

// Each - visit every entry in key order until f returns false
func (m *Map[V]) Each(f func(key string, value V) bool) {
	for _, k := range m.Keys() {
		if !f(k, m.values[k]) {
			return
		}
	}
}
