package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingCounter struct{}

func (panickingCounter) Inc()           { panic("counter unavailable") }
func (panickingCounter) Value() float64 { return 0 }

func TestUpdateHandler(t *testing.T) {
	metrics := newTestMetrics(t)
	router := createHandler(metrics, newTestErrorPages(t, NewMockPageReader()))

	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/update", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "Product Updated!", recorder.Body.String())
		assert.Equal(t, "text/html; charset=utf-8", recorder.Header().Get(ContentTypeHeader))
	}

	assert.Equal(t, float64(3), metrics.Value())
}

func TestUpdateHandlerHead(t *testing.T) {
	metrics := newTestMetrics(t)
	router := createHandler(metrics, newTestErrorPages(t, NewMockPageReader()))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodHead, "/update", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), metrics.Value())
}

func TestUpdateIgnoresQueryAndBody(t *testing.T) {
	metrics := newTestMetrics(t)
	router := createHandler(metrics, newTestErrorPages(t, NewMockPageReader()))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/update?product=wheat&count=10", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Product Updated!", recorder.Body.String())
	assert.Equal(t, float64(1), metrics.Value())
}

func TestUpdateMethodNotAllowed(t *testing.T) {
	metrics := newTestMetrics(t)
	router := createHandler(metrics, newTestErrorPages(t, NewMockPageReader()))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(method, "/update", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code, method)
		assert.Equal(t, "GET, HEAD", recorder.Header().Get("Allow"), method)
		assert.NotEmpty(t, recorder.Header().Get(RequestIdHeader), method)
	}

	assert.Equal(t, float64(0), metrics.Value())
}

func TestUnknownRoute(t *testing.T) {
	metrics := newTestMetrics(t)
	router := createHandler(metrics, newTestErrorPages(t, NewMockPageReader()))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set(AcceptHeader, "application/json")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get(ContentTypeHeader))
	assert.Equal(t, "{\"code\":404,\"text\":\"Not Found\"}", recorder.Body.String())
	assert.Equal(t, float64(0), metrics.Value())
}

func TestHandlerPanicReturnsServerError(t *testing.T) {
	router := createHandler(panickingCounter{}, newTestErrorPages(t, NewMockPageReader()))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/update", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "text/html", recorder.Header().Get(ContentTypeHeader))
	assert.Contains(t, recorder.Body.String(), "Internal Server Error")
	assert.NotContains(t, recorder.Body.String(), "Product Updated!")
}

func TestRequestIdIsEchoed(t *testing.T) {
	router := createHandler(newTestMetrics(t), newTestErrorPages(t, NewMockPageReader()))

	req := httptest.NewRequest(http.MethodGet, "/update", nil)
	req.Header.Set(RequestIdHeader, "trace-42")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, "trace-42", recorder.Header().Get(RequestIdHeader))
}

func TestRequestIdIsGenerated(t *testing.T) {
	router := createHandler(newTestMetrics(t), newTestErrorPages(t, NewMockPageReader()))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/update", nil))

	requestId := recorder.Header().Get(RequestIdHeader)
	require.NotEmpty(t, requestId)

	_, err := xid.FromString(requestId)
	assert.NoError(t, err)
}
