package posts

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusDisabled    Status = "disabled"
	StatusUserDeleted Status = "user_deleted"
)

// ParseStatus rejects anything outside the closed status vocabulary so raw
// strings never travel past the boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusDisabled, StatusUserDeleted:
		return Status(s), nil
	}
	return "", ErrInvalidInput
}

type Tag string

const (
	TagArt         Tag = "art"
	TagMusic       Tag = "music"
	TagPhotography Tag = "photography"
	TagTemplates   Tag = "templates"
	TagEbooks      Tag = "ebooks"
	TagSoftware    Tag = "software"
	TagCourses     Tag = "courses"
	TagOther       Tag = "other"
)

func ParseTag(s string) (Tag, error) {
	switch Tag(s) {
	case TagArt, TagMusic, TagPhotography, TagTemplates, TagEbooks, TagSoftware, TagCourses, TagOther:
		return Tag(s), nil
	}
	return "", ErrInvalidInput
}

func ParseTags(ss []string) ([]Tag, error) {
	tags := make([]Tag, 0, len(ss))
	for _, s := range ss {
		t, err := ParseTag(s)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// UnlimitedCopies marks a post that never runs out of inventory.
const UnlimitedCopies = -1

// Post is a sellable listing. ObjectKey points at the primary asset in object
// storage and is unique across posts. Buyers is the entitlement ledger: a
// principal listed here keeps access regardless of later status changes.
// Version is the optimistic-concurrency token checked on every write.
type Post struct {
	ID          uuid.UUID `json:"id"`
	SellerID    string    `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Tags        []Tag     `json:"tags"`
	ObjectKey   string    `json:"object_key"`
	FileVersion int       `json:"file_version"`
	PreviewKeys []string  `json:"preview_keys"`
	Copies      int       `json:"copies"`
	PriceCents  int64     `json:"price_cents"`
	Buyers      []string  `json:"buyers"`
	Version     int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasBuyer reports whether buyerID already holds an entitlement.
func (p *Post) HasBuyer(buyerID string) bool {
	for _, b := range p.Buyers {
		if b == buyerID {
			return true
		}
	}
	return false
}

// OwnsAsset reports whether key is the post's primary asset or one of its
// previews. Link issuance refuses any other key.
func (p *Post) OwnsAsset(key string) bool {
	if key == p.ObjectKey {
		return true
	}
	for _, k := range p.PreviewKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Purchasable reports whether a grant could currently succeed from the public
// side: active and not sold out.
func (p *Post) Purchasable() bool {
	return p.Status == StatusActive && (p.Copies == UnlimitedCopies || p.Copies > 0)
}

type Availability struct {
	Available bool   `json:"available"`
	Copies    int    `json:"copies"`
	Status    Status `json:"status"`
}

type Rating struct {
	ID        int64     `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	BuyerID   string    `json:"buyer_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type ListParams struct {
	Limit  int
	Offset int
}

// PostUpdate carries seller edits. Nil fields are left untouched, mirroring a
// partial update request.
type PostUpdate struct {
	Title       *string
	Description *string
	Tags        []Tag
	PreviewKeys []string
	PriceCents  *int64
	Copies      *int
}
