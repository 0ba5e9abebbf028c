package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/shkola-app/gradebook-api/internal/models"
)

// ErrUsernameTaken is reported when an insert trips the unique username
// index. The service pre-checks too, but the index is what closes the race
// between concurrent creates.
var ErrUsernameTaken = errors.New("username already taken")

// UserRepository provides database access for gradebook accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByPhone returns the user owning the given phone number.
func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	const query = `SELECT id, phone, username, password_hash, role, full_name, class_name, avatar_emoji, created_at FROM users WHERE phone = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, phone); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by phone: %w", err)
	}
	return &user, nil
}

// FindTeacherByUsername returns the teacher account with the given
// username. Accounts with other roles never match.
func (r *UserRepository) FindTeacherByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT id, phone, username, password_hash, role, full_name, class_name, avatar_emoji, created_at FROM users WHERE username = $1 AND role = 'teacher' LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by username: %w", err)
	}
	return &user, nil
}

// UsernameExists reports whether any account holds the username.
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

// CreateFromPhone inserts a phone-identified account and fills the
// database-assigned fields back into the struct.
func (r *UserRepository) CreateFromPhone(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (phone, role, full_name, class_name) VALUES ($1, $2, $3, $4) RETURNING id, avatar_emoji, created_at`
	row := r.db.QueryRowxContext(ctx, query, user.Phone, user.Role, user.FullName, user.ClassName)
	if err := row.Scan(&user.ID, &user.AvatarEmoji, &user.CreatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// CreateTeacher inserts a credentialed teacher account. A unique-index
// violation on the username comes back as ErrUsernameTaken.
func (r *UserRepository) CreateTeacher(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (username, password_hash, role, full_name, avatar_emoji) VALUES ($1, $2, 'teacher', $3, $4) RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash, user.FullName, user.AvatarEmoji)
	if err := row.Scan(&user.ID, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create teacher: %w", err)
	}
	user.Role = models.RoleTeacher
	return nil
}

// ListTeachers returns the teacher roster, newest first.
func (r *UserRepository) ListTeachers(ctx context.Context) ([]models.TeacherInfo, error) {
	const query = `SELECT id, username, full_name, avatar_emoji, created_at FROM users WHERE role = 'teacher' ORDER BY created_at DESC`
	teachers := []models.TeacherInfo{}
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
