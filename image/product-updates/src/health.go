package main

import (
	"net/http"
)

// ping is a simple ping check handler. If the server is up, it will return a 204 status code.
func ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// healthz handles health check requests
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// createMetricsHandler builds the mux served on the metrics port.
func createMetricsHandler(metrics *productMetrics) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", healthz)
	mux.HandleFunc("/v1/ping", ping)

	return mux
}
