package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRoles map[string]string

func (f fakeRoles) RoleByID(_ context.Context, id string) (string, error) {
	role, ok := f[id]
	if !ok {
		return "", ErrNotFound
	}
	return role, nil
}

func testGuard(roles fakeRoles) *Guard {
	return &Guard{
		Secret: testSecret,
		Users:  roles,
		Reject: func(w http.ResponseWriter, status int, kind, message string) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(kind))
		},
	}
}

func okHandler(t *testing.T, wantID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, wantID, claims.ID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	g := testGuard(fakeRoles{})
	rec := httptest.NewRecorder()
	g.Authenticate(okHandler(t, "")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_BadToken(t *testing.T) {
	g := testGuard(fakeRoles{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	g.Authenticate(okHandler(t, "")).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ValidTokenExposesClaims(t *testing.T) {
	g := testGuard(fakeRoles{})
	token, err := SignToken(testSecret, User{ID: "u-1", Email: "a@b.c", Role: RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	g.Authenticate(okHandler(t, "u-1")).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_ReadsRoleFromStore(t *testing.T) {
	// the token says admin but the store says user: store wins
	g := testGuard(fakeRoles{"u-1": RoleUser, "u-2": RoleAdmin})

	for _, tc := range []struct {
		id   string
		want int
	}{
		{"u-1", http.StatusForbidden},
		{"u-2", http.StatusOK},
		{"u-3", http.StatusForbidden}, // deleted user
	} {
		token, err := SignToken(testSecret, User{ID: tc.id, Role: RoleAdmin})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler := g.Authenticate(g.RequireAdmin(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })))
		handler.ServeHTTP(rec, req)
		require.Equal(t, tc.want, rec.Code, "user %s", tc.id)
	}
}
