// Package api implements the coordinator's and renter's HTTP surfaces,
// routed with httprouter. Response helpers and the error-to-status
// mapping mirror api/api.go's writeJSON/writeError/Error{Message} shape.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/NebulousLabs/errors"
	"github.com/Lykaioss/s4stry/modules"

	"github.com/julienschmidt/httprouter"
)

// Error is the JSON envelope returned on any non-2xx response, matching
// api.Error's shape.
type Error struct {
	Message string `json:"message"`
}

func (e Error) Error() string { return e.Message }

// writeJSON writes obj as the response body with the standard JSON content
// type.
func writeJSON(w http.ResponseWriter, obj interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorMessage writes a raw message at the given status code.
func writeErrorMessage(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(Error{Message: message}); err != nil {
		http.Error(w, "failed to encode error response", http.StatusInternalServerError)
	}
}

// writeError maps a sentinel error from modules/ to its HTTP status and
// writes it. Unrecognised errors default to 500 upstream-fail.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Contains(err, modules.ErrNoRenters):
		writeErrorMessage(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Contains(err, modules.ErrBadRequest), errors.Contains(err, modules.ErrEmptyFile):
		writeErrorMessage(w, err.Error(), http.StatusBadRequest)
	case errors.Contains(err, modules.ErrRenterNotFound), errors.Contains(err, modules.ErrFileNotFound):
		writeErrorMessage(w, err.Error(), http.StatusNotFound)
	case errors.Contains(err, modules.ErrUnauthorized):
		writeErrorMessage(w, err.Error(), http.StatusUnauthorized)
	case errors.Contains(err, modules.ErrRenterFull):
		writeErrorMessage(w, err.Error(), http.StatusInsufficientStorage)
	case errors.Contains(err, modules.ErrIncomplete), errors.Contains(err, modules.ErrUpstreamFailure):
		writeErrorMessage(w, err.Error(), http.StatusInternalServerError)
	default:
		writeErrorMessage(w, err.Error(), http.StatusInternalServerError)
	}
}

// unrecognizedCallHandler is the router's 404 fallback, matching the
// teacher's api.unrecognizedCallHandler.
func unrecognizedCallHandler(w http.ResponseWriter, req *http.Request) {
	writeErrorMessage(w, "404 - unrecognized API call", http.StatusNotFound)
}

func newRouter() *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(unrecognizedCallHandler)
	return router
}
