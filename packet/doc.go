// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package packet - binary packets exchanged with peers
//
// Every packet starts with a single type byte.  Strings and
// amounts follow as varint length prefixed bytes, durations as
// varint milliseconds and times as varint Unix milliseconds
package packet
