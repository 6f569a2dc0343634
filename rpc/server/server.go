// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/counter"
	"github.com/michielbdejong/ilp-connector/routing"
	"github.com/michielbdejong/ilp-connector/rpc/node"
	"github.com/michielbdejong/ilp-connector/rpc/payments"
	"github.com/michielbdejong/ilp-connector/rpc/quote"
	"github.com/michielbdejong/ilp-connector/rpc/routes"
)

// Services - the connector components exposed over RPC
type Services struct {
	Ledgers  node.Ledgers
	Tables   *routing.Tables
	Quoter   quote.Quoter
	Payments payments.Records
}

// Create - a server with every RPC handler registered
func Create(log *logger.L, version string, rpcCount *counter.Counter, services Services) *rpc.Server {

	start := time.Now().UTC()

	server := rpc.NewServer()

	_ = server.Register(node.New(log, start, version, rpcCount, services.Ledgers, services.Tables))
	_ = server.Register(routes.New(log, services.Tables))
	_ = server.Register(quote.New(log, services.Quoter))
	_ = server.Register(payments.New(log, services.Payments))

	return server
}
