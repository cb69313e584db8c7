package middleware

import (
	"context"
	"net/http"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) bool
}

// RequireAdmin lets the request through only for users on the admin list.
// Must run after the auth middleware.
func RequireAdmin(admins AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if !admins.IsAdmin(r.Context(), user.Email) {
				writeError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
