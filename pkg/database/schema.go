package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CreateSchema creates the tables the gradebook needs.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    phone TEXT,
    username TEXT,
    password_hash TEXT,
    role TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'teacher', 'director')),
    full_name TEXT NOT NULL,
    class_name TEXT,
    avatar_emoji TEXT NOT NULL DEFAULT '🧑‍🎓',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- The application pre-checks username uniqueness before inserting, but two
-- concurrent creates can pass the check together. The index is what actually
-- closes the race.
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username) WHERE username IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_phone ON users(phone) WHERE phone IS NOT NULL;

CREATE TABLE IF NOT EXISTS sms_codes (
    id BIGSERIAL PRIMARY KEY,
    phone TEXT NOT NULL,
    code TEXT NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    used BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sms_codes_phone_code ON sms_codes(phone, code, created_at DESC);

CREATE TABLE IF NOT EXISTS subjects (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    icon TEXT NOT NULL DEFAULT '📚'
);

CREATE TABLE IF NOT EXISTS grades (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL REFERENCES users(id),
    subject_id BIGINT NOT NULL REFERENCES subjects(id),
    grade INTEGER NOT NULL CHECK (grade BETWEEN 2 AND 5),
    teacher_id BIGINT NOT NULL REFERENCES users(id),
    date DATE NOT NULL DEFAULT CURRENT_DATE
);

CREATE INDEX IF NOT EXISTS idx_grades_student_subject ON grades(student_id, subject_id);

INSERT INTO subjects (name, icon) VALUES
    ('Математика', '🔢'),
    ('Русский язык', '📝'),
    ('Литература', '📖'),
    ('Окружающий мир', '🌍'),
    ('Английский язык', '🇬🇧'),
    ('Физкультура', '⚽'),
    ('Музыка', '🎵'),
    ('ИЗО', '🎨')
ON CONFLICT (name) DO NOTHING;
`
