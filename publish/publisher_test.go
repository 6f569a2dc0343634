// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/michielbdejong/ilp-connector/background"
	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/messagebus"
	"github.com/michielbdejong/ilp-connector/publish"
	"github.com/michielbdejong/ilp-connector/storage"
)

type fakeProducer struct {
	records chan *kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
		f.records <- r
	}
	return results
}

func next(t *testing.T, records <-chan *kgo.Record) *kgo.Record {
	select {
	case r := <-records:
		return r
	case <-time.After(time.Second):
		t.Fatal("nothing published")
	}
	return nil
}

func TestPublish(t *testing.T) {
	producer := &fakeProducer{records: make(chan *kgo.Record, 10)}
	p := publish.New(logger.New(category), producer, "payments", "routes", nil)

	processes := background.Start(background.Processes{p}, nil)
	defer processes.Stop()

	payment, err := json.Marshal(storage.Payment{
		Ledger:     "usd-ledger.",
		TransferID: "155dff3f-4915-44df-a707-acc4b527bcbd",
		Amount:     "100",
		State:      storage.StateFulfilled,
	})
	require.Nil(t, err, "encode payment")
	require.True(t, messagebus.Bus.Payments.Send("payment", payment), "queue payment")

	r := next(t, producer.records)
	assert.Equal(t, "payments", r.Topic, "topic")
	assert.Equal(t, "usd-ledger.155dff3f-4915-44df-a707-acc4b527bcbd", string(r.Key), "key")
	assert.Equal(t, payment, r.Value, "value")

	// the routes listener is registered before the first payment is taken
	messagebus.Bus.Routes.Send("routes", []byte(`[]`))
	r = next(t, producer.records)
	assert.Equal(t, "routes", r.Topic, "topic")
	assert.Equal(t, "routes", string(r.Key), "key")
	assert.Equal(t, []byte(`[]`), r.Value, "value")
}

func TestPublishFailureContinues(t *testing.T) {
	producer := &fakeProducer{
		records: make(chan *kgo.Record, 10),
		err:     errors.New("broker down"),
	}
	p := publish.New(logger.New(category), producer, "payments", "", nil)

	processes := background.Start(background.Processes{p}, nil)
	defer processes.Stop()

	require.True(t, messagebus.Bus.Payments.Send("payment", []byte(`{"ledger":"a.","transfer_id":"1"}`)), "queue first")
	require.True(t, messagebus.Bus.Payments.Send("payment", []byte(`not json`)), "queue second")

	r := next(t, producer.records)
	assert.Equal(t, "a.1", string(r.Key), "first key")
	r = next(t, producer.records)
	assert.Nil(t, r.Key, "undecodable payment has no key")
}

func TestInitialiseWithoutBrokers(t *testing.T) {
	err := publish.Initialise(&publish.Configuration{}, nil, nil)
	require.Nil(t, err, "initialise")
	assert.Equal(t, fault.ErrNotInitialised, publish.Finalise(), "nothing started")
}
