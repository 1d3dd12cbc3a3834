package main

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

const updateBody = "Product Updated!"

var updateMethods = []string{http.MethodGet, http.MethodHead}

// handleUpdate records one product update per request.
func handleUpdate(counter UpdateCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counter.Inc()

		w.Header().Set(ContentTypeHeader, "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(updateBody))
	}
}

func createHandler(counter UpdateCounter, errorPages *ErrorPages) *mux.Router {

	r := mux.NewRouter()
	r.HandleFunc("/update", handleUpdate(counter)).Methods(updateMethods...)
	r.Use(requestLogger, recoverer(errorPages))

	// mux skips middleware for these two, so request IDs are assigned here
	r.NotFoundHandler = withRequestId(errorPages.Status(http.StatusNotFound))
	r.MethodNotAllowedHandler = withRequestId(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", strings.Join(updateMethods, ", "))
		errorPages.Write(w, req, http.StatusMethodNotAllowed)
	}))

	return r
}
