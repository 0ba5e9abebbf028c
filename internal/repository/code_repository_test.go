package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shkola-app/gradebook-api/internal/models"
)

func TestCreateCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCodeRepository(db)

	now := time.Now()
	expires := now.Add(5 * time.Minute)
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sms_codes (phone, code, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at")).
		WithArgs("+79001234567", "123456", expires).
		WillReturnRows(rows)

	code := &models.VerificationCode{Phone: "+79001234567", Code: "123456", ExpiresAt: expires}
	err := repo.Create(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, int64(1), code.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindValid(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCodeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "phone", "code", "expires_at", "used", "created_at"}).
		AddRow(int64(1), "+79001234567", "123456", now.Add(4*time.Minute), false, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, phone, code, expires_at, used, created_at FROM sms_codes WHERE phone = $1 AND code = $2 AND used = FALSE AND expires_at > $3 ORDER BY created_at DESC LIMIT 1")).
		WithArgs("+79001234567", "123456", now).
		WillReturnRows(rows)

	rec, err := repo.FindValid(context.Background(), "+79001234567", "123456", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
	assert.False(t, rec.Used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindValidNoMatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCodeRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT id, phone, code").
		WithArgs("+79001234567", "000000", now).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindValid(context.Background(), "+79001234567", "000000", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkUsed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCodeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sms_codes SET used = TRUE WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkUsed(context.Background(), 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDeadBefore(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCodeRepository(db)

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sms_codes WHERE created_at < $1 AND (used = TRUE OR expires_at < NOW())")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))

	removed, err := repo.DeleteDeadBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
