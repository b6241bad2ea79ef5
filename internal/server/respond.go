package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comigor/tenant-console/internal/directory"
	"github.com/comigor/tenant-console/internal/logger"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondDirectoryError maps directory errors onto HTTP statuses.
func respondDirectoryError(w http.ResponseWriter, err error) {
	var verr *directory.ValidationError
	var serr *directory.StatusError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, directory.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.As(err, &serr):
		logger.L.Error("admin backend error", "error", err)
		respondError(w, http.StatusBadGateway, "admin backend unavailable")
	default:
		logger.L.Error("directory error", "error", err)
		respondError(w, http.StatusInternalServerError, "directory request failed")
	}
}
