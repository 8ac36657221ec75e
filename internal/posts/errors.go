package posts

import "errors"

var (
	ErrNotFound        = errors.New("post not found")
	ErrNotAllowed      = errors.New("not allowed or post not found")
	ErrUnauthenticated = errors.New("missing caller identity")
	ErrForbidden       = errors.New("not allowed")
	ErrForbiddenAsset  = errors.New("asset not associated with this post")
	ErrOutOfStock      = errors.New("no copies left")
	ErrUnavailable     = errors.New("post no longer available")
	ErrInvalidInput    = errors.New("invalid input")
	ErrVersionConflict = errors.New("concurrent update conflict")
	ErrDuplicateAsset  = errors.New("asset already referenced by another post")
)
