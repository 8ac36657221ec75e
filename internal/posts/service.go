package posts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/slopeoasis/postmarket/internal/events"
	"github.com/slopeoasis/postmarket/internal/storage"
)

// LinkConfig bounds the lifetime of issued download links, in minutes.
type LinkConfig struct {
	DefaultMinutes int
	MinMinutes     int
	MaxMinutes     int
}

type Service struct {
	repo   Repository
	store  storage.ObjectStore
	pub    events.Publisher
	links  LinkConfig
	logger *slog.Logger
}

func NewService(repo Repository, store storage.ObjectStore, pub events.Publisher, links LinkConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		store:  store,
		pub:    pub,
		links:  links,
		logger: logger,
	}
}

type NewPost struct {
	Title       string
	Description string
	Tags        []Tag
	ObjectKey   string
	PreviewKeys []string
	Copies      int
	PriceCents  int64
	Status      Status
}

func (s *Service) CreatePost(ctx context.Context, sellerID string, in NewPost) (*Post, error) {
	if sellerID == "" {
		return nil, ErrUnauthenticated
	}
	if in.Title == "" || in.ObjectKey == "" {
		return nil, ErrInvalidInput
	}
	if in.Copies < UnlimitedCopies {
		return nil, ErrInvalidInput
	}
	if in.PriceCents < 0 {
		return nil, ErrInvalidInput
	}
	status := in.Status
	if status == "" {
		status = StatusActive
	}
	if status != StatusActive && status != StatusDisabled {
		return nil, ErrInvalidInput
	}
	post := &Post{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Tags:        in.Tags,
		ObjectKey:   in.ObjectKey,
		FileVersion: 1,
		PreviewKeys: in.PreviewKeys,
		Copies:      in.Copies,
		PriceCents:  in.PriceCents,
		Buyers:      []string{},
	}
	if post.Tags == nil {
		post.Tags = []Tag{}
	}
	if post.PreviewKeys == nil {
		post.PreviewKeys = []string{}
	}
	return s.repo.Create(ctx, post)
}

// UploadAsset streams body into object storage under a fresh key that keeps
// the original file extension. A post is only persisted after its primary
// asset upload succeeded, so handlers call this first.
func (s *Service) UploadAsset(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	key := uuid.New().String() + path.Ext(filename)
	if err := s.store.Upload(ctx, key, body, contentType); err != nil {
		return "", fmt.Errorf("upload asset: %w", err)
	}
	return key, nil
}

func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Availability(ctx context.Context, id uuid.UUID) (*Availability, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Availability{
		Available: post.Purchasable(),
		Copies:    post.Copies,
		Status:    post.Status,
	}, nil
}

// ownedPost loads a post for a seller-side mutation. Missing posts and posts
// owned by someone else are both reported as ErrNotAllowed so callers cannot
// probe for the existence of other sellers' listings.
func (s *Service) ownedPost(ctx context.Context, id uuid.UUID, sellerID string) (*Post, error) {
	if sellerID == "" {
		return nil, ErrUnauthenticated
	}
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotAllowed
		}
		return nil, err
	}
	if post.SellerID != sellerID {
		return nil, ErrNotAllowed
	}
	return post, nil
}

func (s *Service) EditPost(ctx context.Context, id uuid.UUID, sellerID string, upd PostUpdate) (*Post, error) {
	post, err := s.ownedPost(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		if *upd.Title == "" {
			return nil, ErrInvalidInput
		}
		post.Title = *upd.Title
	}
	if upd.Description != nil {
		post.Description = *upd.Description
	}
	if upd.Tags != nil {
		post.Tags = upd.Tags
	}
	if upd.PreviewKeys != nil {
		post.PreviewKeys = upd.PreviewKeys
	}
	if upd.PriceCents != nil {
		if *upd.PriceCents < 0 {
			return nil, ErrInvalidInput
		}
		post.PriceCents = *upd.PriceCents
	}
	if upd.Copies != nil {
		if *upd.Copies < UnlimitedCopies {
			return nil, ErrInvalidInput
		}
		post.Copies = *upd.Copies
	}
	return s.repo.Update(ctx, post)
}

// ChangeStatus moves a post between active and disabled or into user_deleted.
// user_deleted is terminal: once there the seller cannot relist the record,
// though existing buyers keep delivery access.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, sellerID string, status Status) (*Post, error) {
	post, err := s.ownedPost(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}
	if post.Status == StatusUserDeleted && status != StatusUserDeleted {
		return nil, ErrUnavailable
	}
	post.Status = status
	return s.repo.Update(ctx, post)
}

// ReplaceFile swaps the primary asset and bumps FileVersion. Previously issued
// links keep pointing at the old object; the version is informational.
func (s *Service) ReplaceFile(ctx context.Context, id uuid.UUID, sellerID, newKey string) (*Post, error) {
	if newKey == "" {
		return nil, ErrInvalidInput
	}
	post, err := s.ownedPost(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}
	post.ObjectKey = newKey
	post.FileVersion++
	return s.repo.Update(ctx, post)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID string, params ListParams) ([]*Post, error) {
	return s.repo.ListBySeller(ctx, sellerID, normalize(params))
}

func (s *Service) ListByBuyer(ctx context.Context, buyerID string, params ListParams) ([]*Post, error) {
	return s.repo.ListByBuyer(ctx, buyerID, normalize(params))
}

func (s *Service) ListByTag(ctx context.Context, tag Tag, params ListParams) ([]*Post, error) {
	return s.repo.ListByTag(ctx, tag, normalize(params))
}

func (s *Service) SearchByTitle(ctx context.Context, q string, anyStatus bool, params ListParams) ([]*Post, error) {
	return s.repo.SearchByTitle(ctx, q, anyStatus, normalize(params))
}

func (s *Service) SearchByObjectKey(ctx context.Context, q string, anyStatus bool, params ListParams) ([]*Post, error) {
	return s.repo.SearchByObjectKey(ctx, q, anyStatus, normalize(params))
}

func normalize(params ListParams) ListParams {
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	return params
}
