// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package routing - routing tables of a connector
//
// For every local ledger a payment can arrive on there is a table
// mapping destination prefixes to one route per next hop.  Local
// routes come from the rate backend, remote routes are advertised
// by peer connectors and composed with the local route that leads
// to the ledger the peer was reached on.
//
// All mutation is serialised by one lock, lookups share it
package routing
