package middleware

import (
	"crypto/subtle"
	"net/http"

	h "echoo/internal/delivery/http/helpers"
)

// RequireInternal returns a wrapper that enforces HTTP Basic authentication
// for back-office endpoints. Credential comparison is constant-time.
func RequireInternal(username, password string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="internal"`)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing credentials")
				return
			}
			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
			if !userOK || !passOK {
				w.Header().Set("WWW-Authenticate", `Basic realm="internal"`)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid credentials")
				return
			}
			next(w, r)
		}
	}
}
