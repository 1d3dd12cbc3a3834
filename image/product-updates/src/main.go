// Package main implements the product update service. Every GET /update
// counts one farm product update in agri_product_updates_total, which is
// scraped from a separate metrics port.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.elastic.co/ecszerolog"
)

const (
	service = "product-updates"

	AcceptHeader      = "Accept"
	ContentTypeHeader = "Content-Type"
	RequestIdHeader   = "X-Request-ID"
)

var ctxName string = fmt.Sprintf("%s.%s-%s", os.Getenv("NAMESPACE"), service, xid.New().String())
var logger = ecszerolog.New(os.Stdout).With().Str("ctx", ctxName).Logger()

func main() {
	logLevel, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || logLevel == zerolog.NoLevel {
		logLevel = zerolog.InfoLevel // default to INFO
	}
	zerolog.SetGlobalLevel(logLevel)

	logger.Info().Msg("Product updates initializing..")

	cfg := loadConfig()

	configureMemoryLimit()

	metrics, err := newProductMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create metrics")
	}

	errorPages, err := NewErrorPages(cfg.defaultContentType, cfg.pagesRoot, NewPageReader(), cfg.cacheMemBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create error pages")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watchPages(ctx, errorPages); err != nil {
		logger.Warn().Err(err).Msg("Error page changes will not be picked up")
	}

	srv := newServers(cfg, createMetricsHandler(metrics), createHandler(metrics, errorPages))

	if err := srv.listen(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		killSignal := <-sigChan
		logger.Info().
			Str("signal", killSignal.String()).
			Msg(fmt.Sprintf("%s shutting down ...", service))
		cancel()
	}()

	if err := srv.run(ctx, cfg.shutdownTimeout); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped unexpectedly")
	}

	logger.Info().Msg(fmt.Sprintf("%s is down", service))
}
