package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// FromContext returns the claims Authenticate stored for this request.
func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(Claims)
	return c, ok
}

// RoleSource answers "what role does this user hold right now".
type RoleSource interface {
	RoleByID(ctx context.Context, id string) (string, error)
}

// Guard resolves bearer credentials for the HTTP layer. Authentication is
// purely token verification; the admin check goes back to the users table on
// every request so a demoted admin loses access immediately.
type Guard struct {
	Secret string
	Users  RoleSource

	// Reject is supplied by httpx so the guard emits the same error envelope
	// as every other handler.
	Reject func(w http.ResponseWriter, status int, kind, message string)
}

func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			g.Reject(w, http.StatusUnauthorized, "unauthenticated", "access token required")
			return
		}
		claims, err := ParseToken(g.Secret, token)
		if err != nil {
			g.Reject(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
	})
}

func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		if !ok {
			g.Reject(w, http.StatusUnauthorized, "unauthenticated", "access token required")
			return
		}
		role, err := g.Users.RoleByID(r.Context(), claims.ID)
		if err != nil || role != RoleAdmin {
			g.Reject(w, http.StatusForbidden, "forbidden", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
