package admins

import "context"

type Repository interface {
	CountByEmail(ctx context.Context, email string) (int64, error)
}
