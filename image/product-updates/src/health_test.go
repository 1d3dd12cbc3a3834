package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPingHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/v1/ping", nil)
	if err != nil {
		t.Fatal(err)
	}

	recorder := httptest.NewRecorder()
	handler := http.HandlerFunc(ping)

	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Errorf("Expected status code %d, but got %d", http.StatusNoContent, recorder.Code)
	}
}

func TestMetricsPortRoutes(t *testing.T) {
	metrics, err := newProductMetrics()
	if err != nil {
		t.Fatal(err)
	}

	handler := createMetricsHandler(metrics)

	tests := map[string]int{
		"/healthz":  http.StatusOK,
		"/v1/ping":  http.StatusNoContent,
		"/metrics":  http.StatusOK,
		"/update":   http.StatusNotFound,
		"/v1/check": http.StatusNotFound,
	}

	for path, status := range tests {
		req, err := http.NewRequest("GET", path, nil)
		if err != nil {
			t.Fatal(err)
		}

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != status {
			t.Errorf("%s: expected status code %d, but got %d", path, status, recorder.Code)
		}
	}

	if metrics.Value() != 0 {
		t.Errorf("Expected metrics port to leave the counter at 0, but got %v", metrics.Value())
	}
}
