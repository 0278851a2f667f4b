package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	auth "github.com/lumenweb/auth"
)

// Gate admits requests carrying a valid credential and rejects the rest
// with 401. A bearer access token is tried first (no store round trip); on
// bearer absence or failure the cookie pair is resolved against the store.
// The admitted identity is attached to the request context for handlers and
// for [RequireRoles].
func Gate(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			start := time.Now()
			identity := admit(svc, r)
			svc.ObserveGateLatency(time.Since(start))

			if identity == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func admit(svc *auth.Service, r *http.Request) *auth.Identity {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		if identity, err := svc.VerifyAccess(token); err == nil {
			return identity
		}
		// A failed bearer check falls through to the cookie pair. Expiry
		// is the common case here and the cookies can still be good.
	}

	sid, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	skey, err := r.Cookie(SecretCookie)
	if err != nil {
		return nil
	}

	ctx := auth.WithClientIP(r.Context(), clientIP(r))
	ctx = auth.WithUserAgent(ctx, r.UserAgent())

	svc.NoteCookieFallback()
	identity, err := svc.ResolveSession(ctx, sid.Value, skey.Value)
	if err != nil {
		return nil
	}
	return identity
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
