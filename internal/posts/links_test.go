package posts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slopeoasis/postmarket/internal/storage"
)

func intp(v int) *int { return &v }

func TestService_IssueAccessLink(t *testing.T) {
	ctx := context.Background()

	t.Run("seller gets a link for the primary asset", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := newMemRepo(post)
		var signedKey string
		store := &mockStore{presignGet: func(_ context.Context, key string, _ time.Duration) (string, error) {
			signedKey = key
			return "https://example.com/signed", nil
		}}
		svc := newTestService(repo, store, nil)

		url, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, CallerID: "seller-1"})
		if err != nil {
			t.Fatalf("IssueAccessLink: %v", err)
		}
		if url != "https://example.com/signed" {
			t.Errorf("url = %q", url)
		}
		if signedKey != post.ObjectKey {
			t.Errorf("signed key = %q, want primary %q", signedKey, post.ObjectKey)
		}
	})

	t.Run("entitled buyer allowed, stranger forbidden", func(t *testing.T) {
		post := samplePost("seller-1")
		post.Buyers = []string{"buyer-a"}
		repo := newMemRepo(post)
		svc := newTestService(repo, nil, nil)

		if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, CallerID: "buyer-a"}); err != nil {
			t.Errorf("buyer link: %v", err)
		}
		if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, CallerID: "stranger"}); !errors.Is(err, ErrForbidden) {
			t.Errorf("stranger err = %v", err)
		}
	})

	t.Run("no identity on authenticated path", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := newMemRepo(post)
		svc := newTestService(repo, nil, nil)
		if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID}); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("asset containment holds even for the seller", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := newMemRepo(post)
		svc := newTestService(repo, nil, nil)

		if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, CallerID: "seller-1", AssetKey: "unrelated.zip"}); !errors.Is(err, ErrForbiddenAsset) {
			t.Errorf("unrelated key err = %v", err)
		}
		if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, CallerID: "seller-1", AssetKey: "preview1.png"}); err != nil {
			t.Errorf("preview key: %v", err)
		}
	})

	t.Run("public path requires active status", func(t *testing.T) {
		for _, status := range []Status{StatusDisabled, StatusUserDeleted} {
			post := samplePost("seller-1")
			post.Status = status
			repo := newMemRepo(post)
			svc := newTestService(repo, nil, nil)
			if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, Public: true}); !errors.Is(err, ErrForbidden) {
				t.Errorf("status %s err = %v", status, err)
			}
		}

		post := samplePost("seller-1")
		repo := newMemRepo(post)
		svc := newTestService(repo, nil, nil)
		if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, Public: true}); err != nil {
			t.Errorf("active public link: %v", err)
		}
	})

	t.Run("entitlement survives disable and delete", func(t *testing.T) {
		post := samplePost("seller-1")
		post.Copies = 1
		repo := newMemRepo(post)
		svc := newTestService(repo, nil, nil)

		if _, err := svc.Grant(ctx, post.ID, "buyer-a"); err != nil {
			t.Fatalf("Grant: %v", err)
		}
		for _, status := range []Status{StatusDisabled, StatusUserDeleted} {
			if _, err := svc.ChangeStatus(ctx, post.ID, "seller-1", status); err != nil {
				t.Fatalf("ChangeStatus %s: %v", status, err)
			}
			if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, CallerID: "buyer-a"}); err != nil {
				t.Errorf("buyer link under %s: %v", status, err)
			}
		}
	})

	t.Run("ttl clamp", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := newMemRepo(post)
		var gotExpiry time.Duration
		store := &mockStore{presignGet: func(_ context.Context, _ string, expiry time.Duration) (string, error) {
			gotExpiry = expiry
			return "https://example.com/signed", nil
		}}
		svc := newTestService(repo, store, nil)

		cases := []struct {
			name    string
			minutes *int
			want    time.Duration
		}{
			{"default applies", nil, 60 * time.Minute},
			{"below min raised", intp(0), 1 * time.Minute},
			{"negative raised", intp(-10), 1 * time.Minute},
			{"above max lowered", intp(600), 120 * time.Minute},
			{"in range kept", intp(45), 45 * time.Minute},
			{"exact max kept", intp(120), 120 * time.Minute},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, CallerID: "seller-1", Minutes: tc.minutes}); err != nil {
					t.Fatalf("IssueAccessLink: %v", err)
				}
				if gotExpiry != tc.want {
					t.Errorf("expiry = %v, want %v", gotExpiry, tc.want)
				}
			})
		}
	})

	t.Run("object missing in store", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := newMemRepo(post)
		store := &mockStore{presignGet: func(context.Context, string, time.Duration) (string, error) {
			return "", storage.ErrNotFound
		}}
		svc := newTestService(repo, store, nil)
		if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, CallerID: "seller-1"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("store failure wrapped", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := newMemRepo(post)
		store := &mockStore{presignGet: func(context.Context, string, time.Duration) (string, error) {
			return "", errors.New("signerror")
		}}
		svc := newTestService(repo, store, nil)
		_, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: post.ID, CallerID: "seller-1"})
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("missing post", func(t *testing.T) {
		svc := newTestService(newMemRepo(), nil, nil)
		if _, err := svc.IssueAccessLink(ctx, LinkRequest{PostID: uuid.New(), Public: true}); !errors.Is(err, ErrNotFound) {
			t.Errorf("got err %v", err)
		}
	})
}

func TestService_AssetMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to primary asset", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := newMemRepo(post)
		store := &mockStore{metadata: func(_ context.Context, key string) (*storage.Metadata, error) {
			if key != post.ObjectKey {
				t.Errorf("metadata key = %q", key)
			}
			return &storage.Metadata{ContentType: "application/zip", Size: 1024}, nil
		}}
		svc := newTestService(repo, store, nil)
		meta, err := svc.AssetMetadata(ctx, post.ID, "")
		if err != nil {
			t.Fatalf("AssetMetadata: %v", err)
		}
		if meta.Size != 1024 {
			t.Errorf("size = %d", meta.Size)
		}
	})

	t.Run("containment enforced", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := newMemRepo(post)
		svc := newTestService(repo, nil, nil)
		if _, err := svc.AssetMetadata(ctx, post.ID, "other.bin"); !errors.Is(err, ErrForbiddenAsset) {
			t.Errorf("got err %v", err)
		}
	})

	t.Run("object absent", func(t *testing.T) {
		post := samplePost("seller-1")
		repo := newMemRepo(post)
		svc := newTestService(repo, &mockStore{}, nil)
		if _, err := svc.AssetMetadata(ctx, post.ID, ""); !errors.Is(err, ErrNotFound) {
			t.Errorf("got err %v", err)
		}
	})
}
