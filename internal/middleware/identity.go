package middleware

import (
	"context"
	"net/http"
)

// userIDHeader carries the principal id verified by the upstream gateway.
// Token parsing happens there; this service only trusts the resulting header.
const userIDHeader = "X-User-Id"

const userIDKey contextKey = "user_id"

// Identity copies the verified principal id, if any, into the request context.
// Handlers that need a caller check GetUserID and reject with 401 themselves,
// so public endpoints can share the same middleware chain.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(userIDHeader); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
