package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`insert into users`).
		WithArgs("U123", "ada@example.com", "Ada", "", true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("0b6f5f0e-0000-4000-8000-000000000001"))

	id, err := NewRepo(db).EnsureUser(context.Background(), UpsertUser{
		ExternalID:  "U123",
		Email:       "ada@example.com",
		DisplayName: "Ada",
		Login:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "0b6f5f0e-0000-4000-8000-000000000001", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureUser_RequiresExternalID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewRepo(db).EnsureUser(context.Background(), UpsertUser{Email: "x@example.com"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByExternalID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`from users`).
		WithArgs("U123").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "external_id", "email", "display_name", "photo_url", "created_at", "updated_at", "last_login_at",
		}).AddRow("u-1", "U123", "ada@example.com", "Ada", "", now, now, now))

	u, err := NewRepo(db).GetByExternalID(context.Background(), "U123")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.DisplayName)
	require.NotNil(t, u.LastLoginAt)
	assert.True(t, u.LastLoginAt.Equal(now))
}

func TestGetByExternalID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`from users`).WithArgs("nobody").WillReturnError(sql.ErrNoRows)

	_, err = NewRepo(db).GetByExternalID(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
