package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "u-1",
			"email":         "asha@example.com",
			"user_metadata": map[string]any{"full_name": "Asha Rao", "avatar_url": "https://lh3.example/a.jpg"},
		})
	})
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "refresh_token" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "refresh-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-2",
			"refresh_token": "refresh-2",
			"expires_in":    3600,
			"user":          map[string]any{"id": "u-1", "email": "asha@example.com"},
		})
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestGetUser(t *testing.T) {
	server := newAuthServer(t)
	client := NewClient(server.URL, "anon", time.Second)

	user, err := client.GetUser(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, User{ID: "u-1", Email: "asha@example.com", Name: "Asha Rao", AvatarURL: "https://lh3.example/a.jpg"}, user)

	_, err = client.GetUser(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshSession(t *testing.T) {
	server := newAuthServer(t)
	client := NewClient(server.URL, "anon", time.Second)

	resp, err := client.RefreshSession(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", resp.AccessToken)
	assert.Equal(t, "refresh-2", resp.RefreshToken)

	_, err = client.RefreshSession(context.Background(), "revoked")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSignOut(t *testing.T) {
	server := newAuthServer(t)
	client := NewClient(server.URL, "anon", time.Second)
	assert.NoError(t, client.SignOut(context.Background(), "good"))
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("", "", 0)
	_, err := client.GetUser(context.Background(), "good")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGoogleAuthorizeURL(t *testing.T) {
	client := NewClient("https://proj.supabase.co/", "anon", 0)

	raw := client.GoogleAuthorizeURL("telicommunity://google-auth")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "proj.supabase.co", parsed.Host)
	assert.Equal(t, "/auth/v1/authorize", parsed.Path)
	q := parsed.Query()
	assert.Equal(t, "google", q.Get("provider"))
	assert.Equal(t, "telicommunity://google-auth", q.Get("redirect_to"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
}
