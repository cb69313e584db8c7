package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"telicommunity-go/internal/config"
	"telicommunity-go/internal/supabase"
	"telicommunity-go/pkg/logger"
)

type UserFetcher interface {
	GetUser(ctx context.Context, accessToken string) (supabase.User, error)
}

type SupabaseAuth struct {
	verifier *supabase.Verifier
	remote   UserFetcher
	skipAuth bool
	mockUser User
	log      logger.Logger
}

type contextKey int

const (
	userIDKey contextKey = iota
	userKey
)

type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// NewSupabaseAuth verifies tokens locally when a JWT secret is configured
// and asks the auth server otherwise.
func NewSupabaseAuth(cfg config.SupabaseConfig, remote UserFetcher, log logger.Logger) *SupabaseAuth {
	auth := &SupabaseAuth{
		remote:   remote,
		skipAuth: cfg.SkipAuth,
		mockUser: User{
			ID:        strings.TrimSpace(cfg.MockUserID),
			Email:     strings.TrimSpace(cfg.MockUserEmail),
			Name:      strings.TrimSpace(cfg.MockUserName),
			AvatarURL: strings.TrimSpace(cfg.MockUserAvatar),
		},
		log: log,
	}
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		auth.verifier = supabase.NewVerifier(secret)
	}
	return auth
}

func (a *SupabaseAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			user := a.mockUser
			if user.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		user, err := a.authenticate(r.Context(), token)
		switch {
		case errors.Is(err, supabase.ErrNotConfigured):
			a.log.Critical("auth: no jwt secret and no supabase url configured")
			writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
			return
		case err != nil:
			a.log.BusinessError("auth: token rejected", err, "path", r.URL.Path)
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (a *SupabaseAuth) authenticate(ctx context.Context, token string) (User, error) {
	var (
		user supabase.User
		err  error
	)
	switch {
	case a.verifier != nil:
		user, err = a.verifier.Verify(token)
	case a.remote != nil:
		user, err = a.remote.GetUser(ctx, token)
	default:
		return User{}, supabase.ErrNotConfigured
	}
	if err != nil {
		return User{}, err
	}
	if user.ID == "" {
		return User{}, supabase.ErrInvalidToken
	}
	return User{ID: user.ID, Email: user.Email, Name: user.Name, AvatarURL: user.AvatarURL}, nil
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, userIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(userIDKey)
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
