package posts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestService_SubmitRating(t *testing.T) {
	ctx := context.Background()

	t.Run("entitled buyer rates", func(t *testing.T) {
		post := samplePost("seller-1")
		post.Buyers = []string{"buyer-a"}
		var gotValue int
		repo := &mockRepo{
			get: func(context.Context, uuid.UUID) (*Post, error) { return post, nil },
			upsertRating: func(_ context.Context, postID uuid.UUID, buyerID string, value int) error {
				if postID != post.ID || buyerID != "buyer-a" {
					t.Errorf("upsert got post=%s buyer=%s", postID, buyerID)
				}
				gotValue = value
				return nil
			},
		}
		svc := newTestService(repo, nil, nil)
		if err := svc.SubmitRating(ctx, post.ID, "buyer-a", 4); err != nil {
			t.Fatalf("SubmitRating: %v", err)
		}
		if gotValue != 4 {
			t.Errorf("value = %d", gotValue)
		}
		// resubmission overwrites via the same upsert path
		if err := svc.SubmitRating(ctx, post.ID, "buyer-a", 2); err != nil {
			t.Fatalf("resubmit: %v", err)
		}
		if gotValue != 2 {
			t.Errorf("value after resubmit = %d", gotValue)
		}
	})

	t.Run("non-buyer rejected", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := &mockRepo{get: func(context.Context, uuid.UUID) (*Post, error) { return post, nil }}
		svc := newTestService(repo, nil, nil)
		if err := svc.SubmitRating(ctx, post.ID, "stranger", 5); !errors.Is(err, ErrForbidden) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("value out of range", func(t *testing.T) {
		svc := newTestService(&mockRepo{}, nil, nil)
		for _, v := range []int{0, 6, -1} {
			if err := svc.SubmitRating(ctx, uuid.New(), "b", v); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("value %d err = %v", v, err)
			}
		}
	})

	t.Run("missing post", func(t *testing.T) {
		svc := newTestService(&mockRepo{}, nil, nil)
		if err := svc.SubmitRating(ctx, uuid.New(), "b", 3); !errors.Is(err, ErrNotFound) {
			t.Errorf("got err %v", err)
		}
	})
}

func TestService_GetRatingSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("empty summary has zero values", func(t *testing.T) {
		repo := &mockRepo{ratingSummary: func(context.Context, uuid.UUID) (*RatingSummary, error) {
			return &RatingSummary{}, nil
		}}
		svc := newTestService(repo, nil, nil)
		summary, err := svc.GetRatingSummary(ctx, uuid.New())
		if err != nil {
			t.Fatalf("GetRatingSummary: %v", err)
		}
		if summary.Average != 0 || summary.Count != 0 {
			t.Errorf("summary = %+v", summary)
		}
	})

	t.Run("passes through repository values", func(t *testing.T) {
		repo := &mockRepo{ratingSummary: func(context.Context, uuid.UUID) (*RatingSummary, error) {
			return &RatingSummary{Average: 4.5, Count: 12}, nil
		}}
		svc := newTestService(repo, nil, nil)
		summary, err := svc.GetRatingSummary(ctx, uuid.New())
		if err != nil {
			t.Fatalf("GetRatingSummary: %v", err)
		}
		if summary.Average != 4.5 || summary.Count != 12 {
			t.Errorf("summary = %+v", summary)
		}
	})
}

func TestService_Ratings(t *testing.T) {
	ctx := context.Background()

	repo := &mockRepo{listRatings: func(context.Context, uuid.UUID) ([]*Rating, error) { return nil, nil }}
	svc := newTestService(repo, nil, nil)
	ratings, err := svc.Ratings(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Ratings: %v", err)
	}
	if ratings == nil {
		t.Error("ratings is nil, want empty slice")
	}
}
