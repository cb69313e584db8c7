package supabase

import "errors"

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotConfigured = errors.New("supabase not configured")
)
