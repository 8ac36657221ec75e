package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/slopeoasis/postmarket/internal/middleware"
	"github.com/slopeoasis/postmarket/internal/posts"
)

type PostsHandler struct {
	svc    *posts.Service
	logger *slog.Logger
}

func NewPostsHandler(svc *posts.Service, logger *slog.Logger) *PostsHandler {
	return &PostsHandler{
		svc:    svc,
		logger: logger,
	}
}

type CreatePostRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	ObjectKey   string   `json:"object_key"`
	PreviewKeys []string `json:"preview_keys"`
	Copies      int      `json:"copies"`
	PriceCents  int64    `json:"price_cents"`
	Status      string   `json:"status"`
}

func (h *PostsHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := middleware.GetUserID(r.Context())
		if caller == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity", nil)
			return
		}

		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}

		errs := make(map[string]string)
		if req.Title == "" {
			errs["title"] = "required"
		}
		if req.ObjectKey == "" {
			errs["object_key"] = "required"
		}
		if len(errs) > 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", errs)
			return
		}

		tags, err := posts.ParseTags(req.Tags)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid tag value", nil)
			return
		}
		status := posts.Status(req.Status)
		if req.Status != "" {
			if status, err = posts.ParseStatus(req.Status); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid status value", nil)
				return
			}
		}

		post, err := h.svc.CreatePost(r.Context(), caller, posts.NewPost{
			Title:       req.Title,
			Description: req.Description,
			Tags:        tags,
			ObjectKey:   req.ObjectKey,
			PreviewKeys: req.PreviewKeys,
			Copies:      req.Copies,
			PriceCents:  req.PriceCents,
			Status:      status,
		})
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, post)
	}
}

type postWithRating struct {
	Post          *posts.Post          `json:"post"`
	RatingSummary *posts.RatingSummary `json:"rating_summary"`
}

func (h *PostsHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		post, err := h.svc.GetPost(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		summary, err := h.svc.GetRatingSummary(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, postWithRating{Post: post, RatingSummary: summary})
	}
}

type UpdatePostRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	PreviewKeys []string `json:"preview_keys"`
	PriceCents  *int64   `json:"price_cents"`
	Copies      *int     `json:"copies"`
}

func (h *PostsHandler) Edit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		var req UpdatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}

		upd := posts.PostUpdate{
			Title:       req.Title,
			Description: req.Description,
			PreviewKeys: req.PreviewKeys,
			PriceCents:  req.PriceCents,
			Copies:      req.Copies,
		}
		if req.Tags != nil {
			tags, err := posts.ParseTags(req.Tags)
			if err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid tag value", nil)
				return
			}
			upd.Tags = tags
		}

		post, err := h.svc.EditPost(r.Context(), id, middleware.GetUserID(r.Context()), upd)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

type StatusChangeRequest struct {
	Status string `json:"status"`
}

func (h *PostsHandler) ChangeStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		var req StatusChangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		status, err := posts.ParseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid status value", nil)
			return
		}

		post, err := h.svc.ChangeStatus(r.Context(), id, middleware.GetUserID(r.Context()), status)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

type FileUpdateRequest struct {
	ObjectKey string `json:"object_key"`
}

func (h *PostsHandler) ReplaceFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		var req FileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}

		post, err := h.svc.ReplaceFile(r.Context(), id, middleware.GetUserID(r.Context()), req.ObjectKey)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

func (h *PostsHandler) Availability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		availability, err := h.svc.Availability(r.Context(), id)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, availability)
	}
}

func (h *PostsHandler) BySeller() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.svc.ListBySeller(r.Context(), r.PathValue("sellerID"), listParams(r))
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, postList(result))
	}
}

func (h *PostsHandler) ByBuyer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.svc.ListByBuyer(r.Context(), r.PathValue("buyerID"), listParams(r))
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, postList(result))
	}
}

func (h *PostsHandler) ByTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, err := posts.ParseTag(r.PathValue("tag"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid tag value", nil)
			return
		}
		result, err := h.svc.ListByTag(r.Context(), tag, listParams(r))
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, postList(result))
	}
}

func (h *PostsHandler) SearchTitle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "q is required", nil)
			return
		}
		anyStatus := r.URL.Query().Get("any_status") == "true"
		result, err := h.svc.SearchByTitle(r.Context(), q, anyStatus, listParams(r))
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, postList(result))
	}
}

func (h *PostsHandler) SearchAsset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "q is required", nil)
			return
		}
		anyStatus := r.URL.Query().Get("any_status") == "true"
		result, err := h.svc.SearchByObjectKey(r.Context(), q, anyStatus, listParams(r))
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, postList(result))
	}
}

func postID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func listParams(r *http.Request) posts.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size < 1 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return posts.ListParams{Limit: size, Offset: page * size}
}

func postList(result []*posts.Post) []*posts.Post {
	if result == nil {
		return []*posts.Post{}
	}
	return result
}
