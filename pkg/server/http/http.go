// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package http runs an HTTP handler as a managed server.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/absmach/mgcache/pkg/errors"
	"github.com/absmach/mgcache/pkg/server"
)

const (
	httpProtocol  = "http"
	httpsProtocol = "https"

	readHeaderTimeout = 10 * time.Second
)

var errShutdown = errors.New("failed to shut down server")

type httpServer struct {
	server.BaseServer
	server *http.Server
}

var _ server.Server = (*httpServer)(nil)

// NewServer returns a server serving handler on the configured address.
// TLS is enabled when a certificate or key file is configured.
func NewServer(ctx context.Context, cancel context.CancelFunc, name string, config server.Config, handler http.Handler, logger *slog.Logger) server.Server {
	baseServer := server.NewBaseServer(ctx, cancel, name, config, logger)
	hserver := &http.Server{
		Addr:              baseServer.Address,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return &httpServer{
		BaseServer: baseServer,
		server:     hserver,
	}
}

func (s *httpServer) Start() error {
	errCh := make(chan error, 1)
	s.Protocol = httpProtocol
	switch {
	case s.Config.CertFile != "" || s.Config.KeyFile != "":
		s.Protocol = httpsProtocol
		s.Logger.Info(fmt.Sprintf("%s service %s server listening at %s with TLS", s.Name, s.Protocol, s.Address),
			slog.String("cert", s.Config.CertFile),
			slog.String("key", s.Config.KeyFile),
		)
		go func() {
			errCh <- s.server.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile)
		}()
	default:
		s.Logger.Info(fmt.Sprintf("%s service %s server listening at %s without TLS", s.Name, s.Protocol, s.Address))
		go func() {
			errCh <- s.server.ListenAndServe()
		}()
	}

	select {
	case <-s.Ctx.Done():
		return s.Stop()
	case err := <-errCh:
		return err
	}
}

func (s *httpServer) Stop() error {
	defer s.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), server.StopWaitTime)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.Logger.Error(fmt.Sprintf("%s service %s server shutdown at %s failed", s.Name, s.Protocol, s.Address), slog.Any("error", err))
		return errors.Wrap(errShutdown, err)
	}
	s.Logger.Info(fmt.Sprintf("%s service %s server at %s shut down", s.Name, s.Protocol, s.Address))

	return nil
}
