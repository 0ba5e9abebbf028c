package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shkola-app/gradebook-api/internal/models"
)

// GradeRepository handles grade persistence and the derived aggregations.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Insert appends a grade dated today and returns its id.
func (r *GradeRepository) Insert(ctx context.Context, grade *models.Grade) (int64, error) {
	const query = `INSERT INTO grades (student_id, subject_id, grade, teacher_id) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int64
	if err := r.db.GetContext(ctx, &id, query, grade.StudentID, grade.SubjectID, grade.Grade, grade.TeacherID); err != nil {
		return 0, fmt.Errorf("insert grade: %w", err)
	}
	grade.ID = id
	return id, nil
}

// SubjectReports returns one row per subject for the student, including
// subjects without grades. Values are newest-first, the average rounded to
// two decimals with 0 standing in for "no grades".
func (r *GradeRepository) SubjectReports(ctx context.Context, studentID int64) ([]models.SubjectReport, error) {
	const query = `
        SELECT
            s.id, s.name, s.icon,
            COALESCE(ARRAY_AGG(g.grade ORDER BY g.date DESC) FILTER (WHERE g.grade IS NOT NULL), ARRAY[]::INTEGER[]) AS grades,
            COALESCE(ROUND(AVG(g.grade)::NUMERIC, 2), 0) AS average
        FROM subjects s
        LEFT JOIN grades g ON s.id = g.subject_id AND g.student_id = $1
        GROUP BY s.id, s.name, s.icon
        ORDER BY s.name`
	reports := []models.SubjectReport{}
	if err := r.db.SelectContext(ctx, &reports, query, studentID); err != nil {
		return nil, fmt.Errorf("subject reports: %w", err)
	}
	return reports, nil
}

// Leaderboard returns every student with at least one grade, ordered by
// descending overall average. Ranks are assigned by the caller.
func (r *GradeRepository) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	const query = `
        SELECT
            u.id, u.full_name, u.avatar_emoji,
            COALESCE(ROUND(AVG(g.grade)::NUMERIC, 2), 0) AS score
        FROM users u
        LEFT JOIN grades g ON u.id = g.student_id
        WHERE u.role = 'student'
        GROUP BY u.id, u.full_name, u.avatar_emoji
        HAVING COUNT(g.id) > 0
        ORDER BY score DESC, u.id`
	entries := []models.LeaderboardEntry{}
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}
