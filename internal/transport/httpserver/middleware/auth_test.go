package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"telicommunity-go/internal/config"
	"telicommunity-go/internal/supabase"
	"telicommunity-go/pkg/logger"
)

type fakeFetcher struct {
	users map[string]supabase.User
	calls int
}

func (f *fakeFetcher) GetUser(ctx context.Context, token string) (supabase.User, error) {
	f.calls++
	user, ok := f.users[token]
	if !ok {
		return supabase.User{}, supabase.ErrUnauthorized
	}
	return user, nil
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(user.ID + "|" + user.Email))
	})
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthVerifiesJWTLocally(t *testing.T) {
	fetcher := &fakeFetcher{}
	auth := NewSupabaseAuth(config.SupabaseConfig{JWTSecret: "secret"}, fetcher, logger.Nop())
	h := auth.Middleware(echoUser())

	token, err := supabase.SignToken("secret", supabase.User{ID: "u-1", Email: "asha@example.com"}, time.Hour)
	require.NoError(t, err)

	rec := serve(h, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1|asha@example.com", rec.Body.String())
	assert.Zero(t, fetcher.calls)

	forged, err := supabase.SignToken("other", supabase.User{ID: "u-1"}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer "+forged).Code)
}

func TestAuthFallsBackToRemote(t *testing.T) {
	fetcher := &fakeFetcher{users: map[string]supabase.User{"good": {ID: "u-2", Email: "ravi@example.com"}}}
	h := NewSupabaseAuth(config.SupabaseConfig{}, fetcher, logger.Nop()).Middleware(echoUser())

	rec := serve(h, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-2|ravi@example.com", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer bad").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Basic abc").Code)
}

func TestAuthNotConfigured(t *testing.T) {
	h := NewSupabaseAuth(config.SupabaseConfig{}, nil, logger.Nop()).Middleware(echoUser())
	assert.Equal(t, http.StatusInternalServerError, serve(h, "Bearer x").Code)
}

func TestAuthSkipUsesMockUser(t *testing.T) {
	cfg := config.SupabaseConfig{SkipAuth: true, MockUserID: "mock", MockUserEmail: "dev@example.com"}
	h := NewSupabaseAuth(cfg, nil, logger.Nop()).Middleware(echoUser())

	rec := serve(h, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mock|dev@example.com", rec.Body.String())
}

type staticAdmins map[string]bool

func (s staticAdmins) IsAdmin(ctx context.Context, email string) bool {
	return s[email]
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(staticAdmins{"priest@example.com": true})(echoUser())

	call := func(user *User) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/bookings/b-1/approve", nil)
		if user != nil {
			req = req.WithContext(WithUser(req.Context(), *user))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call(&User{ID: "u-1", Email: "priest@example.com"}))
	assert.Equal(t, http.StatusForbidden, call(&User{ID: "u-2", Email: "devotee@example.com"}))
	assert.Equal(t, http.StatusUnauthorized, call(nil))
}
