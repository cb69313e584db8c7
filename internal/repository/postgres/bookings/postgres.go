package bookings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	bookingsdomain "telicommunity-go/internal/domain/bookings"
	"telicommunity-go/internal/repository/postgres/pgerr"
)

const bookedByProfileFK = "temple_bookings_booked_by_profiles_fkey"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type bookingRow struct {
	bookingsdomain.Booking `gorm:"embedded"`
	CreatorFullName        *string
	CreatorUsername        *string
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(bookingsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) Create(ctx context.Context, booking *bookingsdomain.Booking) error {
	err := r.db.WithContext(ctx).Create(booking).Error
	if pgerr.IsUniqueViolation(err) {
		return bookingsdomain.ErrSlotTaken
	}
	if pgerr.IsForeignKeyViolationOn(err, bookedByProfileFK) {
		return bookingsdomain.ErrProfileRequired
	}
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*bookingsdomain.Booking, error) {
	var booking bookingsdomain.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bookingsdomain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *PostgresRepository) ListFrom(ctx context.Context, from time.Time) ([]bookingsdomain.BookingWithCreator, error) {
	return r.listWithCreator(ctx, "b.booking_date >= ?", from)
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status string) ([]bookingsdomain.BookingWithCreator, error) {
	return r.listWithCreator(ctx, "b.status = ?", status)
}

func (r *PostgresRepository) listWithCreator(ctx context.Context, where string, arg interface{}) ([]bookingsdomain.BookingWithCreator, error) {
	var rows []bookingRow
	err := r.db.WithContext(ctx).
		Table(bookingsdomain.Table+" AS b").
		Select("b.*, p.full_name AS creator_full_name, p.username AS creator_username").
		Joins("LEFT JOIN profiles p ON p.id = b.booked_by").
		Where(where, arg).
		Order("b.booking_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]bookingsdomain.BookingWithCreator, 0, len(rows))
	for _, row := range rows {
		item := bookingsdomain.BookingWithCreator{Booking: row.Booking}
		if row.CreatorFullName != nil {
			item.Creator.FullName = *row.CreatorFullName
		}
		if row.CreatorUsername != nil {
			item.Creator.Username = *row.CreatorUsername
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result := r.db.WithContext(ctx).
		Model(&bookingsdomain.Booking{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bookingsdomain.ErrBookingNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&bookingsdomain.Booking{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bookingsdomain.ErrBookingNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&bookingsdomain.Booking{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&bookingsdomain.Booking{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
