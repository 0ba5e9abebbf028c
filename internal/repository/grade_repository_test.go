package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shkola-app/gradebook-api/internal/models"
)

func TestInsertGrade(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(42))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO grades (student_id, subject_id, grade, teacher_id) VALUES ($1, $2, $3, $4) RETURNING id")).
		WithArgs(int64(1), int64(2), 5, int64(3)).
		WillReturnRows(rows)

	grade := &models.Grade{StudentID: 1, SubjectID: 2, Grade: 5, TeacherID: 3}
	id, err := repo.Insert(context.Background(), grade)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, int64(42), grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectReports(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "icon", "grades", "average"}).
		AddRow(int64(1), "Математика", "📐", []byte("{5,4}"), 4.5).
		AddRow(int64(2), "Русский язык", "📖", []byte("{}"), 0.0)
	mock.ExpectQuery("SELECT").
		WithArgs(int64(10)).
		WillReturnRows(rows)

	reports, err := repo.SubjectReports(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, []int64{5, 4}, []int64(reports[0].Grades))
	assert.Equal(t, 4.5, reports[0].Average)
	assert.Empty(t, []int64(reports[1].Grades))
	assert.Zero(t, reports[1].Average)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboard(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "avatar_emoji", "score"}).
		AddRow(int64(2), "Анна Смирнова", "🧑‍🎓", 4.8).
		AddRow(int64(1), "Иван Иванов", "🧑‍🎓", 3.9)
	mock.ExpectQuery("SELECT").
		WillReturnRows(rows)

	entries, err := repo.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Анна Смирнова", entries[0].Name)
	assert.Greater(t, entries[0].Score, entries[1].Score)
	assert.Zero(t, entries[0].Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}
