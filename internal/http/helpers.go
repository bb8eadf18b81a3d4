package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"finsight/internal/core"
	"finsight/internal/storage"
)

// userIDHeader carries the caller identity. Authentication proper is handled
// upstream of this service.
const userIDHeader = "X-User-ID"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// userID extracts and validates the caller from the X-User-ID header, writing
// a 400 response when it is missing or malformed.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(userIDHeader))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing "+userIDHeader+" header")
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+userIDHeader+" header")
		return 0, false
	}
	return id, true
}

// pathID parses the {id} path segment.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return 0, false
	}
	return id, true
}

// decodeJSON parses the request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeServiceError maps domain and storage errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrInvalidUserID):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			"error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
