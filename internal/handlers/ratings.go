package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/slopeoasis/postmarket/internal/middleware"
)

type RatingRequest struct {
	Value int `json:"value"`
}

func (h *PostsHandler) SubmitRating() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}
		caller := middleware.GetUserID(r.Context())
		if caller == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity", nil)
			return
		}

		var req RatingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}

		if err := h.svc.SubmitRating(r.Context(), id, caller, req.Value); err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *PostsHandler) Ratings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		ratings, err := h.svc.Ratings(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, ratings)
	}
}

func (h *PostsHandler) RatingSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		summary, err := h.svc.GetRatingSummary(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}
