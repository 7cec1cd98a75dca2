package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/folio/internal/blocks"
	"github.com/dgallion1/folio/internal/catalog"
	"github.com/dgallion1/folio/internal/loader"
	"github.com/dgallion1/folio/internal/render"
	"github.com/dgallion1/folio/internal/view"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeJSON reads a size-limited JSON body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxBodyBytes), http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownBook),
		errors.Is(err, loader.ErrPageNotFound),
		errors.Is(err, view.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, blocks.ErrEmptySelection):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, render.ErrQueueFull):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}
