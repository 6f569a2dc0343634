// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"

	"github.com/michielbdejong/ilp-connector/background"
	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/metrics"
)

// Configuration - a block of configuration data
// this is read from the Lua configuration file
type Configuration struct {
	Brokers          []string `gluamapper:"brokers" json:"brokers"`
	PaymentsTopic    string   `gluamapper:"payments_topic" json:"payments_topic"`
	RoutesTopic      string   `gluamapper:"routes_topic" json:"routes_topic"`
	MetricsNamespace string   `gluamapper:"metrics_namespace" json:"metrics_namespace"`
}

// globals for background proccess
type publishData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	client *kgo.Client

	// for background
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData publishData

// Initialise - connect to the brokers and start publishing
//
// does nothing if no brokers are configured
func Initialise(configuration *Configuration, registerer prometheus.Registerer, m *metrics.Metrics) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("publish")
	globalData.log.Info("starting…")

	if 0 == len(configuration.Brokers) {
		globalData.log.Info("no brokers: publishing disabled")
		return nil
	}
	if "" == configuration.PaymentsTopic {
		return fault.ErrMissingPublishTopic
	}

	namespace := configuration.MetricsNamespace
	if "" == namespace {
		namespace = "connector"
	}
	hooks := kprom.NewMetrics(namespace, kprom.Registerer(registerer))

	client, err := kgo.NewClient(
		kgo.WithHooks(hooks),
		kgo.SeedBrokers(configuration.Brokers...),
		kgo.DefaultProduceTopic(configuration.PaymentsTopic),
		kgo.ProducerBatchCompression(kgo.ZstdCompression()),
	)
	if nil != err {
		globalData.log.Errorf("kafka client error: %s", err)
		return errors.Wrap(err, "kafka client")
	}
	globalData.client = client

	p := New(globalData.log, client, configuration.PaymentsTopic, configuration.RoutesTopic, m)

	// all data initialised
	globalData.initialised = true

	// start background processes
	globalData.log.Info("start background…")

	processes := background.Processes{
		p,
	}

	globalData.background = background.Start(processes, nil)

	return nil
}

// Finalise - stop all background tasks
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	// stop background
	globalData.background.Stop()
	globalData.client.Close()

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}
