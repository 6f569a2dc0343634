// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server - HTTP exposition of the collectors on /metrics
type Server struct {
	log    *logger.L
	server *http.Server
}

// NewServer - server for a gatherer
func NewServer(log *logger.L, listen string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		log: log,
		server: &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run - serve until shutdown
func (s *Server) Run(args interface{}, shutdown <-chan struct{}) {
	s.log.Infof("listening on: %s", s.server.Addr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := s.server.ListenAndServe()
		if nil != err && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("metrics server error: %s", err)
		}
	}()

	select {
	case <-shutdown:
	case <-done:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(ctx)
	<-done
	s.log.Info("stopped")
}
