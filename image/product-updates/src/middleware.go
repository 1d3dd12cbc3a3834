package main

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/xid"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withRequestId makes sure the request carries an X-Request-ID and echoes it
// back to the caller.
func withRequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(RequestIdHeader)
		if requestId == "" {
			requestId = xid.New().String()
			r.Header.Set(RequestIdHeader, requestId)
		}
		w.Header().Set(RequestIdHeader, requestId)

		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return withRequestId(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		logger.Info().
			Str("request_id", r.Header.Get(RequestIdHeader)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("proto", r.Proto).
			Int("status_code", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}))
}

// recoverer turns a handler panic into the generic 500 page.
func recoverer(errorPages *ErrorPages) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error().
					Str("request_id", r.Header.Get(RequestIdHeader)).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("Handler panicked")

				errorPages.Write(w, r, http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
