package admins

import (
	"context"

	"gorm.io/gorm"
	adminsdomain "telicommunity-go/internal/domain/admins"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&adminsdomain.Admin{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
