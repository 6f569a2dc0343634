// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// limit on a JSON response body
const maximumResponseSize = 1 << 20

// FetchJSON - fetch a JSON response from an HTTP GET and decode it
// into reply, any status other than 200 is an error
func FetchJSON(ctx context.Context, client *http.Client, url string, reply interface{}) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if nil != err {
		return err
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if nil != err {
		return err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maximumResponseSize))
	if nil != err {
		return err
	}

	if http.StatusOK != response.StatusCode {
		return fmt.Errorf("status: %d %q on: %q", response.StatusCode, response.Status, url)
	}
	return json.Unmarshal(body, reply)
}
