package posts

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the record store. Update applies a conditional write keyed on
// the post's Version and returns ErrVersionConflict when another writer got
// there first; callers that must win (the entitlement grant) retry around it.
type Repository interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	Get(ctx context.Context, id uuid.UUID) (*Post, error)
	Update(ctx context.Context, post *Post) (*Post, error)

	ListBySeller(ctx context.Context, sellerID string, params ListParams) ([]*Post, error)
	ListByBuyer(ctx context.Context, buyerID string, params ListParams) ([]*Post, error)
	ListByTag(ctx context.Context, tag Tag, params ListParams) ([]*Post, error)
	SearchByTitle(ctx context.Context, q string, anyStatus bool, params ListParams) ([]*Post, error)
	SearchByObjectKey(ctx context.Context, q string, anyStatus bool, params ListParams) ([]*Post, error)

	UpsertRating(ctx context.Context, postID uuid.UUID, buyerID string, value int) error
	ListRatings(ctx context.Context, postID uuid.UUID) ([]*Rating, error)
	RatingSummary(ctx context.Context, postID uuid.UUID) (*RatingSummary, error)
}
