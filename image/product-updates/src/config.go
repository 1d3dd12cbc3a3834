package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultAppAddr         = ":5000"
	defaultMetricsAddr     = ":8000"
	defaultCacheMemBytes   = 1024 * 1024
	defaultShutdownTimeout = 5
)

type config struct {
	appAddr            string
	metricsAddr        string
	shutdownTimeout    time.Duration
	defaultContentType string
	pagesRoot          string
	cacheMemBytes      int64
}

func loadConfig() config {
	cfg := config{
		appAddr:            getEnv("APP_ADDR", defaultAppAddr),
		metricsAddr:        getEnv("METRICS_ADDR", defaultMetricsAddr),
		shutdownTimeout:    time.Duration(safeStringToInt(getEnv("SHUTDOWN_TIMEOUT", strconv.Itoa(defaultShutdownTimeout)), defaultShutdownTimeout)) * time.Second,
		defaultContentType: getEnv("DEFAULT_CONTENT_TYPE", "text/html"),
		pagesRoot:          getEnv("PAGES_ROOT", "/var/www"),
		cacheMemBytes:      int64(safeStringToInt(getEnv("CACHE_MEM_BYTES", strconv.Itoa(defaultCacheMemBytes)), defaultCacheMemBytes)),
	}

	if cfg.cacheMemBytes <= 0 {
		logger.Warn().
			Int64("cache_mem_bytes", cfg.cacheMemBytes).
			Msgf("Cache size must be positive, defaulting to %d", defaultCacheMemBytes)
		cfg.cacheMemBytes = defaultCacheMemBytes
	}

	return cfg
}

func getEnv(key string, fallback ...string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	logger.Fatal().Msg(fmt.Sprintf("Environment variable %s is not set", key))
	return ""
}

func safeStringToInt(value string, defaultValue int) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn().Msg(fmt.Sprintf("Invalid value '%s', defaulting to %d", value, defaultValue))
		return defaultValue
	}
	return intValue
}
