// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prefix

import (
	"regexp"
	"strings"
)

// Peer - reserved namespace for direct peering links, never
// advertised beyond the adjacent connector
const Peer = "peer."

var (
	prefixPattern  = regexp.MustCompile(`^[a-zA-Z0-9._~-]+\.$`)
	addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._~-]+$`)
)

// IsValidPrefix - a non-empty segment string terminated by a dot
func IsValidPrefix(p string) bool {
	return prefixPattern.MatchString(p) && !strings.Contains(p, "..")
}

// IsValidAddress - any prefix or account address
func IsValidAddress(a string) bool {
	return addressPattern.MatchString(a) && !strings.HasPrefix(a, ".") && !strings.Contains(a, "..")
}

// IsReserved - true for addresses under the peer namespace
func IsReserved(a string) bool {
	return strings.HasPrefix(a, Peer)
}

// Matches - true if the address lies in the namespace of prefix
func Matches(p string, address string) bool {
	return strings.HasPrefix(address, p)
}
