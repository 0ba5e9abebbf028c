package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shkola-app/gradebook-api/internal/models"
)

// CodeRepository persists one-time SMS verification codes.
type CodeRepository struct {
	db *sqlx.DB
}

// NewCodeRepository creates a new CodeRepository.
func NewCodeRepository(db *sqlx.DB) *CodeRepository {
	return &CodeRepository{db: db}
}

// Create inserts a fresh code row.
func (r *CodeRepository) Create(ctx context.Context, code *models.VerificationCode) error {
	const query = `INSERT INTO sms_codes (phone, code, expires_at) VALUES ($1, $2, $3) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, code.Phone, code.Code, code.ExpiresAt)
	if err := row.Scan(&code.ID, &code.CreatedAt); err != nil {
		return fmt.Errorf("create sms code: %w", err)
	}
	return nil
}

// FindValid returns the newest unused, unexpired row matching phone and
// code, or sql.ErrNoRows. Multiple outstanding codes per phone are allowed;
// only the most recent match wins.
func (r *CodeRepository) FindValid(ctx context.Context, phone, code string, now time.Time) (*models.VerificationCode, error) {
	const query = `SELECT id, phone, code, expires_at, used, created_at FROM sms_codes WHERE phone = $1 AND code = $2 AND used = FALSE AND expires_at > $3 ORDER BY created_at DESC LIMIT 1`
	var rec models.VerificationCode
	if err := r.db.GetContext(ctx, &rec, query, phone, code, now); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find sms code: %w", err)
	}
	return &rec, nil
}

// MarkUsed flips a code to used. Codes are never flipped back.
func (r *CodeRepository) MarkUsed(ctx context.Context, id int64) error {
	const query = `UPDATE sms_codes SET used = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark sms code used: %w", err)
	}
	return nil
}

// DeleteDeadBefore removes used or expired codes created before the cutoff
// and reports how many rows went away.
func (r *CodeRepository) DeleteDeadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM sms_codes WHERE created_at < $1 AND (used = TRUE OR expires_at < NOW())`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reap sms codes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reap sms codes rows: %w", err)
	}
	return n, nil
}
