package admins

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestCountByEmail(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	repo := NewPostgres(gdb)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "admins" WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("priest@temple.org").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "admins"`).
		WillReturnError(errors.New("conn closed"))

	count, err := repo.CountByEmail(context.Background(), "priest@temple.org")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.CountByEmail(context.Background(), "priest@temple.org")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
