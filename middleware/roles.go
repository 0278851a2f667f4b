package middleware

import (
	"errors"
	"net/http"

	auth "github.com/lumenweb/auth"
)

// RequireRoles rejects admitted requests whose role is outside the allowed
// set with 403. Must run inside [Gate]; a request with no identity gets 401.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())

			if err := auth.Authorize(identity, roles...); err != nil {
				if errors.Is(err, auth.ErrForbidden) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
