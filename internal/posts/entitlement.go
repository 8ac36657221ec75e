package posts

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/slopeoasis/postmarket/internal/events"
)

// grantAttempts bounds the optimistic-concurrency retry loop. Conflicts only
// happen when purchases race on the same post, so a short loop is enough;
// beyond it the conflict is surfaced and retry policy belongs to the caller.
const grantAttempts = 3

// Grant gives buyerID a permanent entitlement to the post. It is idempotent:
// a buyer who already holds access gets a success without touching inventory.
// A finite copy count is decremented exactly once per distinct buyer; -1
// (unlimited) is never decremented. The read-check-write sequence runs under a
// version-checked update so two racing grants cannot both consume the last
// copy.
func (s *Service) Grant(ctx context.Context, postID uuid.UUID, buyerID string) (*Post, error) {
	if buyerID == "" {
		return nil, ErrInvalidInput
	}

	var lastErr error
	for attempt := 0; attempt < grantAttempts; attempt++ {
		post, err := s.repo.Get(ctx, postID)
		if err != nil {
			return nil, err
		}
		if post.Status == StatusUserDeleted {
			return nil, ErrUnavailable
		}
		if post.HasBuyer(buyerID) {
			return post, nil
		}
		if post.Copies == 0 {
			return nil, ErrOutOfStock
		}

		post.Buyers = append(post.Buyers, buyerID)
		if post.Copies > 0 {
			post.Copies--
		}

		updated, err := s.repo.Update(ctx, post)
		if err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}

		e := events.NewEntitlementGranted(updated.ID, buyerID, updated.SellerID, updated.Title, updated.Copies)
		if err := s.pub.PublishEntitlementGranted(ctx, e); err != nil {
			s.logger.Warn("publish entitlement.granted failed", "post_id", updated.ID, "error", err)
		}
		return updated, nil
	}
	return nil, lastErr
}

// IsEntitled is a pure read used by link issuance and rating eligibility.
func (s *Service) IsEntitled(ctx context.Context, postID uuid.UUID, buyerID string) (bool, error) {
	post, err := s.repo.Get(ctx, postID)
	if err != nil {
		return false, err
	}
	return post.HasBuyer(buyerID), nil
}
