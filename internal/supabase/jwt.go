package supabase

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of a Supabase access token we read.
type Claims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

func (c Claims) User() User {
	return User{
		ID:        c.Subject,
		Email:     c.Email,
		Name:      firstNonEmpty(stringFromMap(c.UserMetadata, "full_name"), stringFromMap(c.UserMetadata, "name")),
		AvatarURL: firstNonEmpty(stringFromMap(c.UserMetadata, "avatar_url"), stringFromMap(c.UserMetadata, "picture")),
	}
}

// Verifier checks HS256 access tokens signed with the project JWT secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenString string) (User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return User{}, ErrInvalidToken
	}
	return claims.User(), nil
}

// ParseUnverified reads claims without checking the signature. Only for
// tokens this process already trusts, e.g. to learn their expiry.
func ParseUnverified(tokenString string) (Claims, error) {
	claims := Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := ParseUnverified(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// SignToken issues an HS256 token the way the auth server does. Used by
// local tooling and tests.
func SignToken(secret string, user User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: user.Email,
		Role:  "authenticated",
	}
	if user.Name != "" || user.AvatarURL != "" {
		claims.UserMetadata = map[string]interface{}{}
		if user.Name != "" {
			claims.UserMetadata["full_name"] = user.Name
		}
		if user.AvatarURL != "" {
			claims.UserMetadata["avatar_url"] = user.AvatarURL
		}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
