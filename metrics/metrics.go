// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package metrics - prometheus collectors of the connector
//
// all methods accept a nil receiver so that components can be built
// without metrics
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// outcome labels
const (
	Accepted = "accepted"
	Rejected = "rejected"
	Sent     = "sent"
	Failed   = "failed"
	Success  = "success"
)

// Metrics - collectors registered under one namespace
type Metrics struct {
	quotes        *prometheus.CounterVec
	transfers     *prometheus.CounterVec
	announcements *prometheus.CounterVec
	broadcasts    *prometheus.CounterVec
	routes        prometheus.Gauge
	published     prometheus.Counter
}

// New - create and register the collectors
func New(namespace string, registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		quotes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_quotes_total", namespace),
			Help: "Quotes answered by kind and outcome",
		}, []string{"kind", "outcome"}),
		transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_transfers_total", namespace),
			Help: "Incoming transfers by final state",
		}, []string{"state"}),
		announcements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_route_announcements_total", namespace),
			Help: "Routes received from peers by outcome",
		}, []string{"outcome"}),
		broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_route_broadcasts_total", namespace),
			Help: "Route broadcasts to peers by outcome",
		}, []string{"outcome"}),
		routes: factory.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_routes", namespace),
			Help: "Routes currently in the routing tables",
		}),
		published: factory.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_published_events_total", namespace),
			Help: "Payment events published to the broker",
		}),
	}
}

// Quote - count a quote
func (m *Metrics) Quote(kind string, err error) {
	if nil == m {
		return
	}
	outcome := Success
	if nil != err {
		outcome = Failed
	}
	m.quotes.WithLabelValues(kind, outcome).Inc()
}

// Transfer - count an incoming transfer reaching a state
func (m *Metrics) Transfer(state string) {
	if nil == m {
		return
	}
	m.transfers.WithLabelValues(state).Inc()
}

// Announcement - count a route received from a peer
func (m *Metrics) Announcement(accepted bool) {
	if nil == m {
		return
	}
	if accepted {
		m.announcements.WithLabelValues(Accepted).Inc()
	} else {
		m.announcements.WithLabelValues(Rejected).Inc()
	}
}

// Broadcast - count a broadcast to one peer
func (m *Metrics) Broadcast(err error) {
	if nil == m {
		return
	}
	if nil == err {
		m.broadcasts.WithLabelValues(Sent).Inc()
	} else {
		m.broadcasts.WithLabelValues(Failed).Inc()
	}
}

// SetRoutes - current route count
func (m *Metrics) SetRoutes(n int) {
	if nil == m {
		return
	}
	m.routes.Set(float64(n))
}

// Published - count an event delivered to the broker
func (m *Metrics) Published() {
	if nil == m {
		return
	}
	m.published.Inc()
}
