// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package virtual - an in-process ledger
//
// Accounts hold balances under one ledger prefix.  A transfer with
// an execution condition is held until the recipient presents the
// preimage or rejects it, or until it expires; a transfer without a
// condition is credited at once.  Each account is reached through
// its own Plugin, so a connector can be attached to several virtual
// ledgers in the same process.
//
// conditions and fulfillments are unpadded base64url strings, the
// condition being the SHA-256 digest of the fulfillment bytes
package virtual
