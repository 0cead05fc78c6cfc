package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/LeiMuu/UserManagementAPI/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/auth/login",
	"/healthz",
	"/metrics",
	"/",
}

// withAuth is the authentication stage. On protected paths a missing or
// invalid bearer token terminates the request with 401 before the handler
// runs; on public paths the stage is a pass-through.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="users"`)
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		identity, err := a.tokens.Validate(token)
		if err != nil {
			// All validation failures collapse to one client-facing answer.
			w.Header().Set("WWW-Authenticate", `Bearer realm="users", error="invalid_token"`)
			writeError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
