// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/backend"
	"github.com/michielbdejong/ilp-connector/configuration"
	"github.com/michielbdejong/ilp-connector/publish"
	"github.com/michielbdejong/ilp-connector/rpc/listeners"
	"github.com/michielbdejong/ilp-connector/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "connector.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "connectord.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients = 10

	// all in seconds
	defaultBroadcastInterval      = 30
	defaultRouteExpiry            = 45
	defaultMinMessageWindow       = 1
	defaultMaxHoldTime            = 10
	defaultQuoteExpiry            = 10
	defaultDestinationHold        = 5
	defaultBalanceCacheExpiry     = 5
	defaultNotaryTimeout          = 5
	defaultBackendRefreshInterval = 0

	defaultMetricsNamespace = "connector"

	virtualLedgerType = "virtual"
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - location of the leveldb
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// RoutingType - timings in seconds
type RoutingType struct {
	Broadcast              bool `gluamapper:"broadcast" json:"broadcast"`
	BroadcastInterval      int  `gluamapper:"broadcast_interval" json:"broadcast_interval"`
	RouteExpiry            int  `gluamapper:"route_expiry" json:"route_expiry"`
	MinMessageWindow       int  `gluamapper:"min_message_window" json:"min_message_window"`
	MaxHoldTime            int  `gluamapper:"max_hold_time" json:"max_hold_time"`
	QuoteExpiry            int  `gluamapper:"quote_expiry" json:"quote_expiry"`
	DefaultDestinationHold int  `gluamapper:"default_destination_hold" json:"default_destination_hold"`
	BalanceCacheExpiry     int  `gluamapper:"balance_cache_expiry" json:"balance_cache_expiry"`
}

// LedgerType - one ledger the connector holds an account on
type LedgerType struct {
	Type      string            `gluamapper:"type" json:"type"`
	Prefix    string            `gluamapper:"prefix" json:"prefix"`
	Currency  string            `gluamapper:"currency" json:"currency"`
	Precision int               `gluamapper:"precision" json:"precision"`
	Scale     int               `gluamapper:"scale" json:"scale"`
	Account   string            `gluamapper:"account" json:"account"`
	Balance   string            `gluamapper:"balance" json:"balance"`
	Peers     []string          `gluamapper:"peers" json:"peers"`
	Accounts  map[string]string `gluamapper:"accounts" json:"accounts"` // extra virtual accounts → balance
}

// NotaryType - case fetches
type NotaryType struct {
	Timeout int `gluamapper:"timeout" json:"timeout"`
}

// MetricsType - prometheus endpoint
type MetricsType struct {
	Listen    string `gluamapper:"listen" json:"listen"`
	Namespace string `gluamapper:"namespace" json:"namespace"`
}

// Configuration - the whole configuration file
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string       `gluamapper:"pidfile" json:"pidfile"`
	Database      DatabaseType `gluamapper:"database" json:"database"`

	Routing   RoutingType                `gluamapper:"routing" json:"routing"`
	Backend   backend.Configuration      `gluamapper:"backend" json:"backend"`
	Ledgers   []LedgerType               `gluamapper:"ledgers" json:"ledgers"`
	Notary    NotaryType                 `gluamapper:"notary" json:"notary"`
	ClientRPC listeners.RPCConfiguration `gluamapper:"client_rpc" json:"client_rpc"`
	Metrics   MetricsType                `gluamapper:"metrics" json:"metrics"`
	Publish   publish.Configuration      `gluamapper:"publish" json:"publish"`
	Logging   logger.Configuration       `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Routing: RoutingType{
			Broadcast:              true,
			BroadcastInterval:      defaultBroadcastInterval,
			RouteExpiry:            defaultRouteExpiry,
			MinMessageWindow:       defaultMinMessageWindow,
			MaxHoldTime:            defaultMaxHoldTime,
			QuoteExpiry:            defaultQuoteExpiry,
			DefaultDestinationHold: defaultDestinationHold,
			BalanceCacheExpiry:     defaultBalanceCacheExpiry,
		},

		Backend: backend.Configuration{
			RefreshInterval: defaultBackendRefreshInterval,
		},

		Notary: NotaryType{
			Timeout: defaultNotaryTimeout,
		},

		ClientRPC: listeners.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
		},

		Metrics: MetricsType{
			Namespace: defaultMetricsNamespace,
		},

		Publish: publish.Configuration{
			MetricsNamespace: defaultMetricsNamespace,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	if err := options.validate(); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.Backend.RatesFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = util.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("Files: %q is not plain name", *f[0])
		}
	}

	// done
	return options, nil
}

// check values that have no sensible default
func (c *Configuration) validate() error {
	if 0 == len(c.Ledgers) {
		return fmt.Errorf("Ledgers: at least one ledger is required")
	}
	for i := range c.Ledgers {
		l := &c.Ledgers[i]
		if "" == l.Type {
			l.Type = virtualLedgerType
		}
		if virtualLedgerType != l.Type {
			return fmt.Errorf("Ledgers: %q has unsupported type: %q", l.Prefix, l.Type)
		}
		if "" == l.Account {
			return fmt.Errorf("Ledgers: %q has no account", l.Prefix)
		}
		if "" == l.Balance {
			l.Balance = "0"
		}
	}

	r := c.Routing
	for _, v := range []struct {
		name  string
		value int
	}{
		{"broadcast_interval", r.BroadcastInterval},
		{"route_expiry", r.RouteExpiry},
		{"min_message_window", r.MinMessageWindow},
		{"max_hold_time", r.MaxHoldTime},
		{"quote_expiry", r.QuoteExpiry},
		{"default_destination_hold", r.DefaultDestinationHold},
		{"balance_cache_expiry", r.BalanceCacheExpiry},
	} {
		if v.value <= 0 {
			return fmt.Errorf("Routing: %s must be positive, not: %d", v.name, v.value)
		}
	}
	if r.DefaultDestinationHold > r.MaxHoldTime {
		return fmt.Errorf("Routing: default_destination_hold: %d exceeds max_hold_time: %d", r.DefaultDestinationHold, r.MaxHoldTime)
	}
	if c.Notary.Timeout <= 0 {
		return fmt.Errorf("Notary: timeout must be positive, not: %d", c.Notary.Timeout)
	}
	return nil
}

// seconds from the configuration file
func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
