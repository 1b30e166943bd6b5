package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkwell-sh/inkwell/internal/blog"
)

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, map[string]any{
		"error": APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// writeBlogError maps domain errors onto the wire taxonomy. Anything
// unrecognized is a storage-level failure: logged with the underlying message,
// surfaced to the client as a bare 500.
func writeBlogError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	var verr *blog.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", verr.Fields)
	case errors.Is(err, blog.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
	case errors.Is(err, blog.ErrSlugExists):
		writeError(w, http.StatusConflict, "CONFLICT", "a post with this slug already exists", nil)
	default:
		logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}
