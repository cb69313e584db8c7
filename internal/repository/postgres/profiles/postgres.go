package profiles

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	profilesdomain "telicommunity-go/internal/domain/profiles"
	"telicommunity-go/internal/repository/postgres/pgerr"
)

const usernameConstraint = "profiles_username_key"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*profilesdomain.Profile, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*profilesdomain.Profile, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *PostgresRepository) first(ctx context.Context, query string, arg interface{}) (*profilesdomain.Profile, error) {
	var profile profilesdomain.Profile
	err := r.db.WithContext(ctx).Where(query, arg).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, profilesdomain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert inserts or updates by id. The update only fires when a column
// actually differs, so repeating an identical upsert leaves the row alone.
func (r *PostgresRepository) Upsert(ctx context.Context, profile *profilesdomain.Profile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "username", "age", "city", "avatar_url", "updated_at"}),
			Where: clause.Where{Exprs: []clause.Expression{clause.Expr{
				SQL: "(profiles.full_name, profiles.username, profiles.age, profiles.city, profiles.avatar_url) IS DISTINCT FROM " +
					"(excluded.full_name, excluded.username, excluded.age, excluded.city, excluded.avatar_url)",
			}}},
		}).
		Create(profile).Error
	if pgerr.IsUniqueViolationOn(err, usernameConstraint) {
		return profilesdomain.ErrUsernameTaken
	}
	return err
}
