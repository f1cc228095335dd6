// Package server runs an HTTP handler with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ShutdownTimeout bounds how long in-flight requests may take after Stop.
const ShutdownTimeout = 30 * time.Second

// Server serves a handler on a TCP listener.
type Server struct {
	listener net.Listener
	server   *http.Server
	done     chan error
}

// Start listens on addr and serves handler in the background. Use
// "127.0.0.1:0" to pick a free port.
func Start(addr string, handler http.Handler) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &Server{
		listener: listener,
		server: &http.Server{
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		done: make(chan error, 1),
	}

	go func() {
		err := srv.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		srv.done <- err
	}()

	return srv, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// URL returns the URL of path on this server.
func (s *Server) URL(path string) string {
	return fmt.Sprintf("http://%s%s", s.Addr(), path)
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return <-s.done
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log logrus.FieldLogger) error {
	srv, err := Start(addr, handler)
	if err != nil {
		return err
	}
	log.WithField("addr", srv.Addr()).Info("server started")

	select {
	case err := <-srv.done:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
