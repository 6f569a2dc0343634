// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package prefix - addresses and a longest-prefix index
//
// Addresses are dot separated, a ledger prefix ends with a dot and
// an account address is a ledger prefix followed by a local name.
// The index is not safe for concurrent use, the owner serialises
// access to it
package prefix
