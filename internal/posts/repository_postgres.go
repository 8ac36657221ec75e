package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var _ Repository = (*postgresRepository)(nil)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

const postColumns = `id, seller_id, title, description, status, tags, object_key,
	file_version, preview_keys, copies, price_cents, buyers, version, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO posts (id, seller_id, title, description, status, tags, object_key,
			file_version, preview_keys, copies, price_cents, buyers, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
		RETURNING `+postColumns,
		post.ID, post.SellerID, post.Title, post.Description, string(post.Status),
		pq.Array(tagsToStrings(post.Tags)), post.ObjectKey, post.FileVersion,
		pq.Array(post.PreviewKeys), post.Copies, post.PriceCents, pq.Array(post.Buyers),
	)
	created, err := scanPost(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateAsset
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return created, nil
}

func (r *postgresRepository) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// Update writes the whole record conditionally on the version the caller read.
// Zero rows means another writer bumped the version (or the row vanished); the
// two cases are told apart with a follow-up read.
func (r *postgresRepository) Update(ctx context.Context, post *Post) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $3, description = $4, status = $5, tags = $6, object_key = $7,
			file_version = $8, preview_keys = $9, copies = $10, price_cents = $11,
			buyers = $12, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
		RETURNING `+postColumns,
		post.ID, post.Version, post.Title, post.Description, string(post.Status),
		pq.Array(tagsToStrings(post.Tags)), post.ObjectKey, post.FileVersion,
		pq.Array(post.PreviewKeys), post.Copies, post.PriceCents, pq.Array(post.Buyers),
	)
	updated, err := scanPost(row)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateAsset
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	if _, getErr := r.Get(ctx, post.ID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrVersionConflict
}

func (r *postgresRepository) ListBySeller(ctx context.Context, sellerID string, params ListParams) ([]*Post, error) {
	return r.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE seller_id = $1 AND status <> 'user_deleted'
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		sellerID, params.Limit, params.Offset)
}

func (r *postgresRepository) ListByBuyer(ctx context.Context, buyerID string, params ListParams) ([]*Post, error) {
	return r.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE $1 = ANY(buyers)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		buyerID, params.Limit, params.Offset)
}

func (r *postgresRepository) ListByTag(ctx context.Context, tag Tag, params ListParams) ([]*Post, error) {
	return r.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE $1 = ANY(tags) AND status = 'active'
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(tag), params.Limit, params.Offset)
}

func (r *postgresRepository) SearchByTitle(ctx context.Context, q string, anyStatus bool, params ListParams) ([]*Post, error) {
	if anyStatus {
		return r.queryPosts(ctx, `
			SELECT `+postColumns+` FROM posts
			WHERE title ILIKE '%' || $1 || '%'
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			q, params.Limit, params.Offset)
	}
	return r.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE title ILIKE '%' || $1 || '%' AND status = 'active'
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		q, params.Limit, params.Offset)
}

func (r *postgresRepository) SearchByObjectKey(ctx context.Context, q string, anyStatus bool, params ListParams) ([]*Post, error) {
	if anyStatus {
		return r.queryPosts(ctx, `
			SELECT `+postColumns+` FROM posts
			WHERE object_key ILIKE '%' || $1 || '%'
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			q, params.Limit, params.Offset)
	}
	return r.queryPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE object_key ILIKE '%' || $1 || '%' AND status = 'active'
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		q, params.Limit, params.Offset)
}

func (r *postgresRepository) UpsertRating(ctx context.Context, postID uuid.UUID, buyerID string, value int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (post_id, buyer_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, buyer_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		postID, buyerID, value)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListRatings(ctx context.Context, postID uuid.UUID) ([]*Rating, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, post_id, buyer_id, value, created_at, updated_at
		FROM ratings WHERE post_id = $1 ORDER BY created_at`, postID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*Rating
	for rows.Next() {
		rt := &Rating{}
		if err := rows.Scan(&rt.ID, &rt.PostID, &rt.BuyerID, &rt.Value, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

func (r *postgresRepository) RatingSummary(ctx context.Context, postID uuid.UUID) (*RatingSummary, error) {
	summary := &RatingSummary{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(value), 0), COUNT(*) FROM ratings WHERE post_id = $1`,
		postID).Scan(&summary.Average, &summary.Count)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	return summary, nil
}

func (r *postgresRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var result []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		result = append(result, post)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var (
		post    Post
		status  string
		tags    pq.StringArray
		preview pq.StringArray
		buyers  pq.StringArray
	)
	err := row.Scan(&post.ID, &post.SellerID, &post.Title, &post.Description, &status,
		&tags, &post.ObjectKey, &post.FileVersion, &preview, &post.Copies,
		&post.PriceCents, &buyers, &post.Version, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	post.Status = Status(status)
	post.Tags = stringsToTags(tags)
	post.PreviewKeys = preview
	post.Buyers = buyers
	return &post, nil
}

func tagsToStrings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func stringsToTags(ss []string) []Tag {
	out := make([]Tag, len(ss))
	for i, s := range ss {
		out[i] = Tag(s)
	}
	return out
}
