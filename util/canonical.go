// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"net"
	"strconv"
	"strings"

	"github.com/michielbdejong/ilp-connector/fault"
)

// CanonicalIPandPort - make the IP:Port canonical and select the
// network to listen on
//
// examples:
//   IPv4:  127.0.0.1:1234  → tcp4
//   IPv6:  [::1]:1234      → tcp6
//   any:   *:1234          → [::]:1234 on tcp (both families)
//
// port zero is accepted and means any free port
func CanonicalIPandPort(hostPort string) (string, string, error) {

	hostPort = strings.TrimSpace(hostPort)

	host, port, err := net.SplitHostPort(hostPort)
	if nil != err {
		return "", "", fault.ErrInvalidIPAddress
	}

	numericPort, err := strconv.Atoi(strings.TrimSpace(port))
	if nil != err || numericPort < 0 || numericPort > 65535 {
		return "", "", fault.ErrInvalidPortNumber
	}
	p := strconv.Itoa(numericPort)

	host = strings.TrimSpace(host)
	if "*" == host {
		return "[::]:" + p, "tcp", nil
	}

	IP := net.ParseIP(host)
	if nil == IP {
		return "", "", fault.ErrInvalidIPAddress
	}

	if nil != IP.To4() {
		return IP.String() + ":" + p, "tcp4", nil
	}
	return "[" + IP.String() + "]:" + p, "tcp6", nil
}
