// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/michielbdejong/ilp-connector/storage"
)

const defaultListCount = 20

// setup command handler
//
// commands that need neither the configuration file nor the database
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "start", "run":
		return false // continue processing

	case "config-test", "cfg", "routes", "r", "payments", "p":
		return false // need configuration

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		fmt.Printf("  routes                     (r)      - list the saved routes that have not expired\n")
		fmt.Printf("\n")

		fmt.Printf("  payments [COUNT [START]]   (p)      - list payment records, START is a hex key\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// configuration command handler
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "config-test", "cfg":
		printJSON(options)

	default: // unknown commands fall through to data command
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// data command handler
// the payment and route pools are open so these commands can read them
func processDataCommand(log *logger.L, arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "start", "run":
		return false // continue processing

	case "routes", "r":
		routes, err := storage.LoadRoutes(time.Now())
		if nil != err {
			exitwithstatus.Message("error: %s", err)
		}
		log.Infof("saved routes: %d", len(routes))
		printJSON(routes)

	case "payments", "p":
		count := defaultListCount
		var start []byte
		if len(arguments) > 0 {
			n, err := strconv.Atoi(arguments[0])
			if nil != err || n <= 0 {
				exitwithstatus.Message("error: invalid count: %q", arguments[0])
			}
			count = n
		}
		if len(arguments) > 1 {
			b, err := hex.DecodeString(arguments[1])
			if nil != err {
				exitwithstatus.Message("error: invalid start: %q  error: %s", arguments[1], err)
			}
			start = b
		}
		payments, next, err := storage.Payments{}.List(start, count)
		if nil != err {
			exitwithstatus.Message("error: %s", err)
		}
		printJSON(struct {
			Payments  []*storage.Payment `json:"payments"`
			NextStart string             `json:"next_start"`
		}{
			Payments:  payments,
			NextStart: hex.EncodeToString(next),
		})

	default:
		exitwithstatus.Message("error: no such command: %s", command)
	}

	// indicate processing complete and perform normal exit from main
	return true
}

func printJSON(v interface{}) {
	b, err := json.Marshal(v)
	if nil != err {
		exitwithstatus.Message("error: %s", err)
	}
	var out bytes.Buffer
	_ = json.Indent(&out, b, "", "  ")
	_, _ = out.WriteTo(os.Stdout)
	_, _ = os.Stdout.WriteString("\n")
}
