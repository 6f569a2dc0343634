// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notary - expiry agreement of the atomic cases attached to
// a transfer
//
// each case is fetched from its URL and must carry an expires_at,
// all cases must agree on it and it must lie within the time the
// connector is willing to hold funds
package notary

import (
	"context"
	"net/http"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/util"
)

// Case - the part of a notary case the connector reads
type Case struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Notary - case client
type Notary struct {
	log     *logger.L
	client  *http.Client
	maxHold time.Duration
}

// New - create a case client
func New(log *logger.L, timeout time.Duration, maxHold time.Duration) *Notary {
	return &Notary{
		log: log,
		client: &http.Client{
			Timeout: timeout,
		},
		maxHold: maxHold,
	}
}

// Fetch - read every case in parallel
func (n *Notary) Fetch(ctx context.Context, cases []string) ([]Case, error) {
	result := make([]Case, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range cases {
		g.Go(func() error {
			if err := util.FetchJSON(gctx, n.client, url, &result[i]); nil != err {
				return errors.Wrapf(err, "fetch case: %s", url)
			}
			return nil
		})
	}
	if err := g.Wait(); nil != err {
		return nil, err
	}
	return result, nil
}

// Expiry - the agreed expiry of a set of cases
//
// the outgoing transfer of an atomic payment expires at this time
func (n *Notary) Expiry(ctx context.Context, cases []string, now time.Time) (time.Time, error) {
	fetched, err := n.Fetch(ctx, cases)
	if nil != err {
		return time.Time{}, err
	}
	expiresAt, err := Agree(fetched)
	if nil != err {
		n.log.Warnf("cases: %v  error: %s", cases, err)
		return time.Time{}, err
	}
	if err := n.Check(expiresAt, now); nil != err {
		n.log.Warnf("cases: %v  expires: %s  error: %s", cases, expiresAt, err)
		return time.Time{}, err
	}
	n.log.Debugf("cases: %v  expires: %s", cases, expiresAt)
	return expiresAt, nil
}

// Check - an expiry must be in the future but not beyond the
// longest hold
func (n *Notary) Check(expiresAt time.Time, now time.Time) error {
	if !expiresAt.After(now) {
		return fault.ErrCaseExpired
	}
	if n.maxHold > 0 && expiresAt.Sub(now) > n.maxHold {
		return fault.ErrCaseExpiryTooFar
	}
	return nil
}

// Agree - the common expiry of cases
//
// cases without an expiry are ignored but at least one must have
// one, and all the present ones must be identical
func Agree(cases []Case) (time.Time, error) {
	var expiresAt time.Time
	found := false
	for _, c := range cases {
		if nil == c.ExpiresAt {
			continue
		}
		if !found {
			expiresAt = *c.ExpiresAt
			found = true
			continue
		}
		if !c.ExpiresAt.Equal(expiresAt) {
			return time.Time{}, fault.ErrCaseExpiriesDisagree
		}
	}
	if !found {
		return time.Time{}, fault.ErrCaseExpiryMissing
	}
	return expiresAt, nil
}
