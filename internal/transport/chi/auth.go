package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// keyring is a set of accepted bearer tokens.
type keyring [][]byte

func newKeyring(keys []string) keyring {
	var k keyring
	for _, key := range keys {
		if key != "" {
			k = append(k, []byte(key))
		}
	}
	return k
}

func (k keyring) contains(token string) bool {
	t := []byte(token)
	found := 0
	for _, key := range k {
		found |= subtle.ConstantTimeCompare(key, t)
	}
	return found == 1
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// Read requests accept any key from apiKeys or adminKeys. When adminKeys is set,
// mutating requests (index toggle and drop) require one of them.
// If both lists are empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys, adminKeys []string) func(http.Handler) http.Handler {
	readers := newKeyring(apiKeys)
	admins := newKeyring(adminKeys)

	return func(next http.Handler) http.Handler {
		if len(readers) == 0 && len(admins) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			isAdmin := admins.contains(token)
			if !isAdmin && !readers.contains(token) {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}
			if len(admins) > 0 && !isAdmin && isMutation(r) {
				writeError(w, http.StatusForbidden, CodeForbidden, "admin key required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func isMutation(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
