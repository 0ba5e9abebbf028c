package models

import "time"

// VerificationCode is a one-time SMS credential. Rows are never updated
// except for the used flag, and never deleted inside the request path;
// the reaper prunes dead ones on a schedule.
type VerificationCode struct {
	ID        int64     `db:"id"`
	Phone     string    `db:"phone"`
	Code      string    `db:"code"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}
