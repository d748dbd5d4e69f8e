package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenAuth guards input endpoints with a shared token, passed either as a
// bearer token or as the token query parameter. An empty token disables the
// check.
type TokenAuth struct {
	token string
}

func NewTokenAuth(token string) TokenAuth { return TokenAuth{token: token} }

func (a TokenAuth) Enabled() bool { return a.token != "" }

// Authorize reports whether r carries the token.
func (a TokenAuth) Authorize(r *http.Request) bool {
	if !a.Enabled() {
		return true
	}
	got := r.URL.Query().Get("token")
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		got = strings.TrimPrefix(h, "Bearer ")
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(a.token)) == 1
}

// Wrap rejects unauthorized requests with 401.
func (a TokenAuth) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Authorize(r) {
			writeError(w, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		next(w, r)
	}
}
