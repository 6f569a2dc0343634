// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/michielbdejong/ilp-connector/util"
)

func TestFetchJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rates":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"base":"EUR","rates":{"USD":"1.0592"}}`)
		case "/broken":
			fmt.Fprint(w, `{"base":`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	var reply struct {
		Base  string            `json:"base"`
		Rates map[string]string `json:"rates"`
	}

	err := util.FetchJSON(context.Background(), ts.Client(), ts.URL+"/rates", &reply)
	assert.Nil(t, err, "fetch error")
	assert.Equal(t, "EUR", reply.Base, "wrong base")
	assert.Equal(t, "1.0592", reply.Rates["USD"], "wrong rate")

	err = util.FetchJSON(context.Background(), ts.Client(), ts.URL+"/missing", &reply)
	assert.NotNil(t, err, "missing page accepted")
	assert.Contains(t, err.Error(), "404", "wrong status")

	err = util.FetchJSON(context.Background(), ts.Client(), ts.URL+"/broken", &reply)
	assert.NotNil(t, err, "broken JSON accepted")
}

func TestEnsureAbsolute(t *testing.T) {
	assert.Equal(t, "/var/lib/connector/data", util.EnsureAbsolute("/var/lib/connector", "data"), "relative path")
	assert.Equal(t, "/tmp/data", util.EnsureAbsolute("/var/lib/connector", "/tmp/data"), "absolute path")
	assert.Equal(t, "/var/lib/data", util.EnsureAbsolute("/var/lib/connector", "../data"), "parent path")
}
