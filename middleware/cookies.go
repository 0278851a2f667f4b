package middleware

import "net/http"

// Cookie names for the browser credential pair. The session ID and secret
// travel separately so the secret can be rotated without re-identifying the
// session.
const (
	SessionCookie = "lw_sid"
	SecretCookie  = "lw_skey"
)

// SetSessionCookies writes the credential pair. Both cookies are HttpOnly
// and SameSite=Lax; Secure tracks the request scheme so local development
// over plain HTTP still works.
func SetSessionCookies(w http.ResponseWriter, r *http.Request, sessionID, secret string, maxAge int) {
	secure := r == nil || r.TLS != nil

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     SecretCookie,
		Value:    secret,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookies expires the credential pair, used on logout.
func ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{SessionCookie, SecretCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
