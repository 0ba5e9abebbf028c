package models

import "time"

// Role enumerates the account kinds the gradebook knows about.
type Role string

const (
	RoleStudent  Role = "student"
	RoleTeacher  Role = "teacher"
	RoleDirector Role = "director"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleDirector:
		return true
	}
	return false
}

// User represents a row in the users table. Students are identified by
// phone, teachers by username+password hash; a director has both a phone
// and, optionally, credentials.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Phone        *string   `db:"phone" json:"phone"`
	Username     *string   `db:"username" json:"-"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	FullName     string    `db:"full_name" json:"full_name"`
	ClassName    *string   `db:"class_name" json:"class_name"`
	AvatarEmoji  string    `db:"avatar_emoji" json:"avatar_emoji"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// TeacherInfo is the roster projection returned to the director panel.
// The password hash never leaves the repository layer.
type TeacherInfo struct {
	ID          int64     `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	FullName    string    `db:"full_name" json:"full_name"`
	AvatarEmoji string    `db:"avatar_emoji" json:"avatar_emoji"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
