// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/michielbdejong/ilp-connector/util"
)

// Rates - format of a rates document, from a URL or a file
//
//	{"base": "EUR", "rates": {"USD": 1.0592, "CAD": 1.3583}}
type Rates struct {
	Base  string                 `json:"base"`
	Rates map[string]json.Number `json:"rates"`
}

func (r *Rates) strings() map[string]string {
	result := make(map[string]string, len(r.Rates))
	for currency, n := range r.Rates {
		result[currency] = n.String()
	}
	return result
}

// Refresh - read rates from the configured URL
func (b *FixedRates) Refresh(ctx context.Context) error {
	if "" == b.url {
		return nil
	}
	var reply Rates
	if err := util.FetchJSON(ctx, b.client, b.url, &reply); nil != err {
		return errors.Wrap(err, "fetch rates")
	}
	return b.SetRates(reply.Base, reply.strings())
}

// LoadFile - read rates from the configured file
func (b *FixedRates) LoadFile() error {
	if "" == b.file {
		return nil
	}
	data, err := os.ReadFile(b.file)
	if nil != err {
		return errors.Wrap(err, "read rates file")
	}

	var rates Rates
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&rates); nil != err {
		return errors.Wrap(err, "decode rates file")
	}
	return b.SetRates(rates.Base, rates.strings())
}
