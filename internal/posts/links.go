package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slopeoasis/postmarket/internal/storage"
)

// LinkRequest asks for a time-limited download URL. AssetKey defaults to the
// post's primary asset; when set it must belong to the post. Minutes defaults
// to the configured TTL and is clamped, never rejected, when out of range.
// Public requests need no caller but only work on active posts.
type LinkRequest struct {
	PostID   uuid.UUID
	AssetKey string
	Minutes  *int
	CallerID string
	Public   bool
}

// IssueAccessLink authorizes the request against the post's ownership and
// entitlement data and mints a presigned read URL. The object store knows
// nothing about entitlement, so this is the only enforcement point. The URL is
// returned verbatim and never logged or cached.
func (s *Service) IssueAccessLink(ctx context.Context, req LinkRequest) (string, error) {
	post, err := s.repo.Get(ctx, req.PostID)
	if err != nil {
		return "", err
	}

	key := req.AssetKey
	if key == "" {
		key = post.ObjectKey
	} else if !post.OwnsAsset(key) {
		return "", ErrForbiddenAsset
	}

	if req.Public {
		if post.Status != StatusActive {
			return "", ErrForbidden
		}
	} else {
		if req.CallerID == "" {
			return "", ErrUnauthenticated
		}
		if post.SellerID != req.CallerID && !post.HasBuyer(req.CallerID) {
			return "", ErrForbidden
		}
	}

	ttl := s.clampTTL(req.Minutes)
	url, err := s.store.PresignGet(ctx, key, ttl)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("mint read url: %w", err)
	}
	return url, nil
}

// AssetMetadata exposes object-store metadata for an asset of the post,
// applying the same containment rule as link issuance.
func (s *Service) AssetMetadata(ctx context.Context, postID uuid.UUID, assetKey string) (*storage.Metadata, error) {
	post, err := s.repo.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	key := assetKey
	if key == "" {
		key = post.ObjectKey
	} else if !post.OwnsAsset(key) {
		return nil, ErrForbiddenAsset
	}
	meta, err := s.store.Metadata(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("object metadata: %w", err)
	}
	return meta, nil
}

func (s *Service) clampTTL(minutes *int) time.Duration {
	m := s.links.DefaultMinutes
	if minutes != nil {
		m = *minutes
	}
	if m < s.links.MinMinutes {
		m = s.links.MinMinutes
	}
	if m > s.links.MaxMinutes {
		m = s.links.MaxMinutes
	}
	return time.Duration(m) * time.Minute
}
