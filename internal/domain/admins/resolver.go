package admins

import (
	"context"
	"strings"

	"telicommunity-go/pkg/logger"
)

// Resolver answers whether an identity belongs to the admin set. Every call
// hits the repository; nothing is cached.
type Resolver struct {
	repo Repository
	log  logger.Logger
}

func NewResolver(repo Repository, log logger.Logger) *Resolver {
	return &Resolver{repo: repo, log: log}
}

// IsAdmin is fail-closed: an empty email or a failed lookup yields false.
func (r *Resolver) IsAdmin(ctx context.Context, email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}

	count, err := r.repo.CountByEmail(ctx, email)
	if err != nil {
		r.log.InternalError("admins.is_admin: lookup failed", err, "email", email)
		return false
	}
	return count > 0
}
