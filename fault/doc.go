// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches.
//
// Quoting and forwarding errors are typed by kind; each kind is
// a distinct string type so that a message can carry detail while
// the kind is still testable with the IsErr… helpers
package fault
