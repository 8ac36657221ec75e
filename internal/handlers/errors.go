package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/slopeoasis/postmarket/internal/posts"
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

// writeServiceError maps domain errors onto HTTP statuses. Anything not in the
// taxonomy is a collaborator failure and is logged, then reported as a 502
// without leaking internals.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, posts.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "post or object not found", nil)
	case errors.Is(err, posts.ErrNotAllowed):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "not allowed or post not found", nil)
	case errors.Is(err, posts.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity", nil)
	case errors.Is(err, posts.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "not allowed", nil)
	case errors.Is(err, posts.ErrForbiddenAsset):
		writeError(w, http.StatusForbidden, "FORBIDDEN_ASSET", "asset not associated with this post", nil)
	case errors.Is(err, posts.ErrOutOfStock):
		writeError(w, http.StatusBadRequest, "OUT_OF_STOCK", "no copies left", nil)
	case errors.Is(err, posts.ErrUnavailable):
		writeError(w, http.StatusBadRequest, "UNAVAILABLE", "post no longer available", nil)
	case errors.Is(err, posts.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid input", nil)
	case errors.Is(err, posts.ErrDuplicateAsset):
		writeError(w, http.StatusConflict, "CONFLICT", "asset already referenced by another post", nil)
	case errors.Is(err, posts.ErrVersionConflict):
		writeError(w, http.StatusConflict, "CONFLICT", "concurrent update, retry", nil)
	default:
		logger.Error("collaborator call failed", "error", err)
		writeError(w, http.StatusBadGateway, "UPSTREAM_FAILURE", "upstream dependency failed", nil)
	}
}
