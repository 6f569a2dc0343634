// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package virtual

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/michielbdejong/ilp-connector/fault"
)

// Condition - execution condition released by a fulfillment
func Condition(fulfillment string) (string, error) {
	preimage, err := base64.RawURLEncoding.DecodeString(fulfillment)
	if nil != err {
		return "", fault.ErrUnexpectedFulfillment
	}
	digest := sha256.Sum256(preimage)
	return base64.RawURLEncoding.EncodeToString(digest[:]), nil
}

// Fulfillment - encode a preimage
func Fulfillment(preimage []byte) string {
	return base64.RawURLEncoding.EncodeToString(preimage)
}
