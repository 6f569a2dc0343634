// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package liquidity

import (
	"encoding/json"
	"strings"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/util"
)

// MarshalJSON - points as an array of [source, destination] numbers
func (c *Curve) MarshalJSON() ([]byte, error) {
	b := strings.Builder{}
	b.WriteString("[")
	for i, pair := range c.Strings() {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("[" + pair[0] + "," + pair[1] + "]")
	}
	b.WriteString("]")
	return []byte(b.String()), nil
}

// UnmarshalJSON - accepts numbers or decimal strings
func (c *Curve) UnmarshalJSON(data []byte) error {
	var raw [][]json.Number
	if err := json.Unmarshal(data, &raw); nil != err {
		return fault.InvalidBodyError("invalid curve: " + err.Error())
	}
	pairs := make([][2]string, len(raw))
	for i, p := range raw {
		if 2 != len(p) {
			return fault.InvalidBodyError("invalid curve: each point needs two coordinates")
		}
		pairs[i] = [2]string{p[0].String(), p[1].String()}
	}
	curve, err := FromStrings(pairs)
	if nil != err {
		return fault.InvalidBodyError("invalid curve: " + err.Error())
	}
	c.points = curve.points
	return nil
}

// Pack - append the binary form of a curve to a buffer
//
// varint point count followed by each coordinate as a length
// prefixed decimal string
func (c *Curve) Pack(buffer []byte) []byte {
	buffer = append(buffer, util.ToVarint64(uint64(len(c.points)))...)
	for _, pair := range c.Strings() {
		buffer = util.PackBytes(buffer, []byte(pair[0]))
		buffer = util.PackBytes(buffer, []byte(pair[1]))
	}
	return buffer
}

// maximum points accepted from a peer
const maximumPoints = 1000

// Unpack - read a curve from the start of a buffer
//
// returns the curve and the number of bytes consumed
func Unpack(buffer []byte) (*Curve, int, error) {
	count, n := util.FromVarint64(buffer)
	if 0 == n || count > maximumPoints {
		return nil, 0, fault.ErrInvalidPacketLength
	}

	pairs := make([][2]string, count)
	for i := uint64(0); i < count; i += 1 {
		for j := 0; j < 2; j += 1 {
			data, m := util.UnpackBytes(buffer[n:])
			if 0 == m {
				return nil, 0, fault.ErrInvalidPacketLength
			}
			pairs[i][j] = string(data)
			n += m
		}
	}

	curve, err := FromStrings(pairs)
	if nil != err {
		return nil, 0, err
	}
	return curve, n, nil
}
