// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/michielbdejong/ilp-connector/messagebus"
	"github.com/michielbdejong/ilp-connector/metrics"
	"github.com/michielbdejong/ilp-connector/storage"
)

const (
	produceTimeout  = 10 * time.Second
	routesQueueSize = 10
)

// Producer - the part of the kafka client used for publishing
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher - send payment and route changes from the bus to kafka
type Publisher struct {
	log           *logger.L
	producer      Producer
	paymentsTopic string
	routesTopic   string
	metrics       *metrics.Metrics
}

// New - create a publisher, an empty routes topic skips route changes
func New(log *logger.L, producer Producer, paymentsTopic string, routesTopic string, m *metrics.Metrics) *Publisher {
	return &Publisher{
		log:           log,
		producer:      producer,
		paymentsTopic: paymentsTopic,
		routesTopic:   routesTopic,
		metrics:       m,
	}
}

// Run - background process
func (p *Publisher) Run(args interface{}, shutdown <-chan struct{}) {
	log := p.log

	log.Info("starting…")

	payments := messagebus.Bus.Payments.Chan()

	var routes <-chan messagebus.Message
	if "" != p.routesTopic {
		routes = messagebus.Bus.Routes.Chan(routesQueueSize)
		defer messagebus.Bus.Routes.Release(routes)
	}

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop

		case item := <-payments:
			if 0 == len(item.Parameters) {
				continue loop
			}
			p.publish(p.paymentsTopic, paymentKey(item.Parameters[0]), item.Parameters[0])

		case item, ok := <-routes:
			if !ok {
				routes = nil
				continue loop
			}
			if 0 == len(item.Parameters) {
				continue loop
			}
			p.publish(p.routesTopic, []byte(item.Command), item.Parameters[0])
		}
	}
	log.Info("stopped")
}

func (p *Publisher) publish(topic string, key []byte, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), produceTimeout)
	defer cancel()

	record := &kgo.Record{
		Topic: topic,
		Key:   key,
		Value: value,
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); nil != err {
		p.log.Errorf("publish to: %s  key: %q  error: %s", topic, key, err)
		return
	}
	p.metrics.Published()
	p.log.Debugf("published to: %s  key: %q", topic, key)
}

// records of one incoming transfer share a key so they stay in order
func paymentKey(buffer []byte) []byte {
	var payment storage.Payment
	if err := json.Unmarshal(buffer, &payment); nil != err {
		return nil
	}
	return []byte(payment.Ledger + payment.TransferID)
}
