// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prefix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/michielbdejong/ilp-connector/prefix"
)

func TestResolveLongest(t *testing.T) {
	m := prefix.New[int]()
	m.Insert("usd-ledger.", 1)
	m.Insert("usd-ledger.sub.", 2)
	m.Insert("eur-ledger.", 3)

	key, v, ok := m.Resolve("usd-ledger.sub.bob")
	assert.True(t, ok)
	assert.Equal(t, "usd-ledger.sub.", key)
	assert.Equal(t, 2, v)

	key, v, ok = m.Resolve("usd-ledger.alice")
	assert.True(t, ok)
	assert.Equal(t, "usd-ledger.", key)
	assert.Equal(t, 1, v)

	_, _, ok = m.Resolve("cad-ledger.carl")
	assert.False(t, ok)
}

func TestResolveDefault(t *testing.T) {
	m := prefix.New[string]()
	m.Insert("", "default")
	key, v, ok := m.Resolve("anything.at.all")
	assert.True(t, ok)
	assert.Equal(t, "", key)
	assert.Equal(t, "default", v)
}

func TestKeysSorted(t *testing.T) {
	m := prefix.New[int]()
	for i, k := range []string{"c.", "a.", "b.", "a.b."} {
		m.Insert(k, i)
	}
	m.Insert("b.", 9)
	assert.Equal(t, []string{"a.", "a.b.", "b.", "c."}, m.Keys())
	assert.Equal(t, 4, m.Len())

	assert.True(t, m.Delete("a.b."))
	assert.False(t, m.Delete("a.b."))
	assert.Equal(t, []string{"a.", "b.", "c."}, m.Keys())

	visited := []string{}
	m.Each(func(key string, value int) bool {
		visited = append(visited, key)
		return "b." != key
	})
	assert.Equal(t, []string{"a.", "b."}, visited)

	v, ok := m.Get("b.")
	assert.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestAddresses(t *testing.T) {
	assert.True(t, prefix.IsValidPrefix("eur-ledger."))
	assert.True(t, prefix.IsValidPrefix("g.eur.ledger."))
	assert.False(t, prefix.IsValidPrefix("eur-ledger"))
	assert.False(t, prefix.IsValidPrefix("eur..ledger."))
	assert.False(t, prefix.IsValidPrefix(""))

	assert.True(t, prefix.IsValidAddress("eur-ledger.alice"))
	assert.False(t, prefix.IsValidAddress("eur ledger.alice"))
	assert.False(t, prefix.IsValidAddress(".alice"))

	assert.True(t, prefix.IsReserved("peer.eur-ledger."))
	assert.False(t, prefix.IsReserved("eur-ledger.peer."))

	assert.True(t, prefix.Matches("eur-ledger.", "eur-ledger.alice"))
	assert.False(t, prefix.Matches("eur-ledger.", "usd-ledger.bob"))
}
