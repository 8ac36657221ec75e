package posts

import (
	"context"

	"github.com/google/uuid"
)

// SubmitRating records a 1..5 rating by an entitled buyer. Re-submission by
// the same buyer overwrites the previous value.
func (s *Service) SubmitRating(ctx context.Context, postID uuid.UUID, buyerID string, value int) error {
	if value < 1 || value > 5 {
		return ErrInvalidInput
	}
	post, err := s.repo.Get(ctx, postID)
	if err != nil {
		return err
	}
	if !post.HasBuyer(buyerID) {
		return ErrForbidden
	}
	return s.repo.UpsertRating(ctx, postID, buyerID, value)
}

func (s *Service) Ratings(ctx context.Context, postID uuid.UUID) ([]*Rating, error) {
	ratings, err := s.repo.ListRatings(ctx, postID)
	if err != nil {
		return nil, err
	}
	if ratings == nil {
		ratings = []*Rating{}
	}
	return ratings, nil
}

// GetRatingSummary never divides by zero: with no ratings it reports
// {average: 0, count: 0}.
func (s *Service) GetRatingSummary(ctx context.Context, postID uuid.UUID) (*RatingSummary, error) {
	summary, err := s.repo.RatingSummary(ctx, postID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		summary = &RatingSummary{}
	}
	return summary, nil
}
