package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/slopeoasis/postmarket/internal/middleware"
	"github.com/slopeoasis/postmarket/internal/posts"
)

type linkResponse struct {
	URL string `json:"url"`
}

// Link issues a time-limited download URL for the caller, who must be the
// seller or an entitled buyer. The URL itself stays out of the logs.
func (h *PostsHandler) Link() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		req := posts.LinkRequest{
			PostID:   id,
			AssetKey: r.URL.Query().Get("asset"),
			CallerID: middleware.GetUserID(r.Context()),
		}
		if m := r.URL.Query().Get("minutes"); m != "" {
			minutes, err := strconv.Atoi(m)
			if err != nil {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid minutes value", nil)
				return
			}
			req.Minutes = &minutes
		}

		url, err := h.svc.IssueAccessLink(r.Context(), req)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, linkResponse{URL: url})
	}
}

// PublicLink is the unauthenticated variant, allowed only while the post is
// active. Used for preview assets on public listing pages.
func (h *PostsHandler) PublicLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		req := posts.LinkRequest{
			PostID:   id,
			AssetKey: r.URL.Query().Get("asset"),
			Public:   true,
		}
		if m := r.URL.Query().Get("minutes"); m != "" {
			minutes, err := strconv.Atoi(m)
			if err != nil {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid minutes value", nil)
				return
			}
			req.Minutes = &minutes
		}

		url, err := h.svc.IssueAccessLink(r.Context(), req)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, linkResponse{URL: url})
	}
}

func (h *PostsHandler) AssetMetadata() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		meta, err := h.svc.AssetMetadata(r.Context(), id, r.URL.Query().Get("asset"))
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, meta)
	}
}

type uploadResponse struct {
	ObjectKey string `json:"object_key"`
}

// UploadAsset streams the request body into object storage and returns the
// generated key. Posts reference keys produced here, so a failed upload can
// never leave behind a post without its asset.
func (h *PostsHandler) UploadAsset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.GetUserID(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity", nil)
			return
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		filename := r.URL.Query().Get("filename")

		key, err := h.svc.UploadAsset(r.Context(), filename, contentType, r.Body)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, uploadResponse{ObjectKey: key})
	}
}

type GrantRequest struct {
	BuyerID string `json:"buyer_id"`
}

// Grant is the payment service's callback after a completed purchase. It sits
// behind the internal API key, not behind user identity.
func (h *PostsHandler) Grant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}

		var req GrantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
			return
		}
		if req.BuyerID == "" {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "buyer_id is required", nil)
			return
		}

		post, err := h.svc.Grant(r.Context(), id, req.BuyerID)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, post)
	}
}

type entitlementResponse struct {
	Entitled bool `json:"entitled"`
}

// Entitlement reports whether the calling principal holds access to the post.
func (h *PostsHandler) Entitlement() http.HandlerFunc {
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

		entitled, err := h.svc.IsEntitled(r.Context(), id, caller)
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}

		writeJSON(w, http.StatusOK, entitlementResponse{Entitled: entitled})
	}
}
