// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/michielbdejong/ilp-connector/background"
	"github.com/michielbdejong/ilp-connector/backend"
	"github.com/michielbdejong/ilp-connector/balance"
	"github.com/michielbdejong/ilp-connector/broadcast"
	"github.com/michielbdejong/ilp-connector/fault"
	"github.com/michielbdejong/ilp-connector/forwarder"
	"github.com/michielbdejong/ilp-connector/ledger"
	"github.com/michielbdejong/ilp-connector/ledger/virtual"
	"github.com/michielbdejong/ilp-connector/messagerouter"
	"github.com/michielbdejong/ilp-connector/metrics"
	"github.com/michielbdejong/ilp-connector/notary"
	"github.com/michielbdejong/ilp-connector/publish"
	"github.com/michielbdejong/ilp-connector/quoter"
	"github.com/michielbdejong/ilp-connector/routing"
	"github.com/michielbdejong/ilp-connector/rpc"
	"github.com/michielbdejong/ilp-connector/rpc/server"
	"github.com/michielbdejong/ilp-connector/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

const connectTimeout = 30 * time.Second

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// last resort logging of panics
	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	log.Infof("database: %q", theConfiguration.Database)

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// these commands are allowed to access the internal database
	if len(arguments) > 0 && processDataCommand(log, arguments, theConfiguration) {
		return
	}

	r := theConfiguration.Routing
	minMessageWindow := seconds(r.MinMessageWindow)
	maxHoldTime := seconds(r.MaxHoldTime)

	m := metrics.New(theConfiguration.Metrics.Namespace, prometheus.DefaultRegisterer)

	tables := routing.New(logger.New("routing"), seconds(r.RouteExpiry))

	// the ledgers and their virtual backing stores
	log.Info("initialise ledgers")
	ledgers := ledger.New(logger.New("ledgers"))
	processes := background.Processes{}
	for _, l := range theConfiguration.Ledgers {
		v, err := openVirtualLedger(l, ledgers, tables)
		if nil != err {
			log.Criticalf("ledger: %q  error: %s", l.Prefix, err)
			exitwithstatus.Message("ledger: %q  error: %s", l.Prefix, err)
		}
		processes = append(processes, v)
	}

	rates, err := backend.New(logger.New("backend"), theConfiguration.Backend)
	if nil != err {
		log.Criticalf("backend initialise error: %s", err)
		exitwithstatus.Message("backend initialise error: %s", err)
	}

	balances := balance.New(logger.New("balance"), ledgers, seconds(r.BalanceCacheExpiry))

	q := quoter.New(
		logger.New("quoter"),
		quoter.Configuration{
			QuoteExpiry:            seconds(r.QuoteExpiry),
			MaxHoldTime:            maxHoldTime,
			DefaultDestinationHold: seconds(r.DefaultDestinationHold),
			MinMessageWindow:       minMessageWindow,
		},
		tables,
		ledgers,
		balances,
		m,
	)

	cases := notary.New(logger.New("notary"), seconds(theConfiguration.Notary.Timeout), maxHoldTime)

	f := forwarder.New(
		logger.New("forwarder"),
		forwarder.Configuration{MinMessageWindow: minMessageWindow},
		ledgers,
		q,
		cases,
		storage.Payments{},
		m,
	)

	broadcaster := broadcast.New(
		logger.New("broadcast"),
		broadcast.Configuration{
			Enabled:          r.Broadcast,
			Interval:         seconds(r.BroadcastInterval),
			RouteExpiry:      seconds(r.RouteExpiry),
			MinMessageWindow: minMessageWindow,
		},
		tables,
		ledgers,
		rates,
		m,
	)

	router := messagerouter.New(logger.New("messagerouter"), tables, q, broadcaster, r.Broadcast, m)

	ledgers.Register(f, router)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	err = ledgers.Connect(ctx)
	cancel()
	if nil != err {
		log.Criticalf("ledger connect error: %s", err)
		exitwithstatus.Message("ledger connect error: %s", err)
	}
	defer ledgers.Disconnect()

	if err := broadcaster.ReloadLocalRoutes(); nil != err {
		log.Criticalf("local routes error: %s", err)
		exitwithstatus.Message("local routes error: %s", err)
	}
	if err := broadcaster.Restore(); nil != err {
		log.Errorf("restore routes error: %s", err)
	}

	// start background processes
	log.Info("start background…")
	processes = append(processes, rates, balances, broadcaster)
	if "" != theConfiguration.Metrics.Listen {
		processes = append(processes, metrics.NewServer(logger.New("metrics"), theConfiguration.Metrics.Listen, prometheus.DefaultGatherer))
	}
	bg := background.Start(processes, nil)
	defer bg.Stop()

	// start up the publishing background processes
	err = publish.Initialise(&theConfiguration.Publish, prometheus.DefaultRegisterer, m)
	if nil != err {
		log.Criticalf("publish initialise error: %s", err)
		exitwithstatus.Message("publish initialise error: %s", err)
	}
	defer publish.Finalise()

	// start up the rpc background processes
	services := server.Services{
		Ledgers:  ledgers,
		Tables:   tables,
		Quoter:   q,
		Payments: storage.Payments{},
	}
	err = rpc.Initialise(&theConfiguration.ClientRPC, services, version)
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}

// create a virtual ledger, open the connector account and add its
// plugin to the connector ledgers
func openVirtualLedger(l LedgerType, ledgers *ledger.Ledgers, tables *routing.Tables) (*virtual.Ledger, error) {
	info := ledger.Info{
		Prefix:       l.Prefix,
		CurrencyCode: l.Currency,
		Precision:    l.Precision,
		Scale:        l.Scale,
		Connectors:   l.Peers,
	}
	v, err := virtual.New(info, logger.New("virtual"))
	if nil != err {
		return nil, err
	}

	plugin, err := v.Open(l.Account, l.Balance)
	if nil != err {
		return nil, err
	}
	for account, balance := range l.Accounts {
		if _, err := v.Open(account, balance); nil != err {
			return nil, err
		}
	}

	if err := ledgers.Add(plugin); nil != err {
		return nil, err
	}
	tables.AddLocalLedger(l.Prefix, l.Account)
	return v, nil
}
