// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. ledger       = ledger prefix as a string, always ends in "."
// 4. transfer id  = ledger's transfer id as a string
// 5. *others*     = JSON values
//
// Routes:
//
//   R ++ source account ++ 0x00 ++ destination ledger
//                              - route learned from a peer connector
//                                data: advertisement ++ hold down expiry
//
// Payments:
//
//   P ++ ledger ++ 0x00 ++ transfer id
//                              - incoming transfer handled by the forwarder
//                                data: state ++ outgoing transfer
//
// Testing:
//   Z ++ key                   - testing data
package storage
