package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// servers owns the metrics and application servers. Both share nothing but
// the update counter.
type servers struct {
	metrics *http.Server
	app     *http.Server

	metricsListener net.Listener
	appListener     net.Listener
}

func newServers(cfg config, metricsHandler, appHandler http.Handler) *servers {
	return &servers{
		metrics: &http.Server{
			Addr:              cfg.metricsAddr,
			Handler:           metricsHandler,
			ReadHeaderTimeout: 2 * time.Second,
		},
		app: &http.Server{
			Addr:              cfg.appAddr,
			Handler:           appHandler,
			ReadHeaderTimeout: 2 * time.Second,
		},
	}
}

// listen binds the metrics address first and then the application address.
// Nothing is served when either bind fails.
func (s *servers) listen() error {
	metricsListener, err := net.Listen("tcp", s.metrics.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind metrics server on %s: %w", s.metrics.Addr, err)
	}

	appListener, err := net.Listen("tcp", s.app.Addr)
	if err != nil {
		metricsListener.Close()
		return fmt.Errorf("failed to bind application server on %s: %w", s.app.Addr, err)
	}

	s.metricsListener = metricsListener
	s.appListener = appListener

	return nil
}

// run serves both servers until ctx is cancelled or one of them fails, then
// shuts both down within shutdownTimeout.
func (s *servers) run(ctx context.Context, shutdownTimeout time.Duration) error {
	if s.metricsListener == nil || s.appListener == nil {
		return errors.New("servers are not listening")
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("addr", s.metricsListener.Addr().String()).
			Msg("Metrics server started")
		return serve(s.metrics, s.metricsListener)
	})

	g.Go(func() error {
		logger.Info().
			Str("addr", s.appListener.Addr().String()).
			Msg("Application server started")
		return serve(s.app, s.appListener)
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			shutdown(shutdownCtx, "application", s.app),
			shutdown(shutdownCtx, "metrics", s.metrics),
		)
	})

	return g.Wait()
}

func serve(server *http.Server, listener net.Listener) error {
	if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server on %s failed: %w", listener.Addr(), err)
	}
	return nil
}

func shutdown(ctx context.Context, name string, server *http.Server) error {
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().
			Err(err).
			Str("server", name).
			Msg("Failed to shutdown server")
		server.Close()
		return fmt.Errorf("failed to shutdown %s server: %w", name, err)
	}

	logger.Info().
		Str("server", name).
		Msg("Server stopped")
	return nil
}
