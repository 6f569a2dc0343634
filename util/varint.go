// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

// Varint64MaximumBytes - maximum possible number of bytes in Varint64
const Varint64MaximumBytes = 9

// ToVarint64 - convert a 64 bit unsigned integer to Varint64
//
// seven bits per byte, least significant group first, the top bit
// of each byte flags a continuation; the ninth byte carries a full
// eight bits so no value needs more than nine bytes
func ToVarint64(value uint64) []byte {
	result := make([]byte, 0, Varint64MaximumBytes)
	for i := 0; i < Varint64MaximumBytes-1; i += 1 {
		if value < 0x80 {
			return append(result, byte(value))
		}
		result = append(result, byte(value)|0x80)
		value >>= 7
	}
	return append(result, byte(value))
}

// FromVarint64 - convert up to Varint64MaximumBytes to a uint64
//
// also return the number of bytes used as second value
// returns 0, 0 if varint64 buffer is truncated
func FromVarint64(buffer []byte) (uint64, int) {
	result := uint64(0)
	shift := uint(0)

	for count := 0; count < len(buffer) && count < Varint64MaximumBytes; count += 1 {
		b := uint64(buffer[count])
		if Varint64MaximumBytes-1 == count {
			return result | b<<shift, count + 1
		}
		result |= (b & 0x7f) << shift
		if 0 == b&0x80 {
			return result, count + 1
		}
		shift += 7
	}
	return 0, 0
}

// PackBytes - append a length prefixed byte string to a buffer
func PackBytes(buffer []byte, data []byte) []byte {
	buffer = append(buffer, ToVarint64(uint64(len(data)))...)
	return append(buffer, data...)
}

// UnpackBytes - extract a length prefixed byte string
//
// returns the data and the total bytes consumed, 0 consumed
// means the buffer was truncated
func UnpackBytes(buffer []byte) ([]byte, int) {
	length, n := FromVarint64(buffer)
	if 0 == n {
		return nil, 0
	}
	end := uint64(n) + length
	if length > uint64(len(buffer)) || end > uint64(len(buffer)) {
		return nil, 0
	}
	data := make([]byte, length)
	copy(data, buffer[n:end])
	return data, int(end)
}
