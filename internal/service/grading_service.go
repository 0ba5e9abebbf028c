package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shkola-app/gradebook-api/internal/models"
	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
	"github.com/shkola-app/gradebook-api/pkg/export"
)

const (
	minGrade = 2
	maxGrade = 5

	leaderboardCacheKey = "gradebook:leaderboard"
)

type gradeRepository interface {
	Insert(ctx context.Context, grade *models.Grade) (int64, error)
	SubjectReports(ctx context.Context, studentID int64) ([]models.SubjectReport, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error)
}

type subjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
}

// RecordGradeRequest represents the payload for recording a grade.
// The required tags reject zero values, so a missing id and an explicit 0
// fail the same way.
type RecordGradeRequest struct {
	StudentID int64 `json:"student_id" validate:"required"`
	SubjectID int64 `json:"subject_id" validate:"required"`
	Grade     int   `json:"grade" validate:"required"`
	TeacherID int64 `json:"teacher_id" validate:"required"`
}

// StudentReport is the full per-student view: one entry per subject plus
// the school-wide leaderboard.
type StudentReport struct {
	Subjects    []models.SubjectReport    `json:"subjects"`
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
}

// GradingService reads and writes grades and derives the leaderboard.
type GradingService struct {
	grades    gradeRepository
	subjects  subjectRepository
	cache     *CacheService
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewGradingService constructs a GradingService.
func NewGradingService(grades gradeRepository, subjects subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *GradingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingService{
		grades:    grades,
		subjects:  subjects,
		cache:     cache,
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// Report builds the per-subject breakdown and the leaderboard for one
// student. Subjects without grades are included with an empty list and a
// zero average; the leaderboard covers every student with at least one
// grade anywhere.
func (s *GradingService) Report(ctx context.Context, studentID int64) (*StudentReport, error) {
	subjects, err := s.grades.SubjectReports(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build subject report")
	}

	leaderboard, err := s.leaderboard(ctx)
	if err != nil {
		return nil, err
	}

	return &StudentReport{Subjects: subjects, Leaderboard: leaderboard}, nil
}

// Subjects returns the subject catalog for grade entry forms.
func (s *GradingService) Subjects(ctx context.Context) ([]models.Subject, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// RecordGrade validates and appends one grade, returning its id.
func (s *GradingService) RecordGrade(ctx context.Context, req RecordGradeRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "Все поля обязательны")
	}
	if req.Grade < minGrade || req.Grade > maxGrade {
		return 0, appErrors.Clone(appErrors.ErrValidation, "Оценка должна быть от 2 до 5")
	}

	grade := &models.Grade{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		Grade:     req.Grade,
		TeacherID: req.TeacherID,
	}
	id, err := s.grades.Insert(ctx, grade)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}

	s.cache.Invalidate(ctx, leaderboardCacheKey)

	s.logger.Info("grade recorded",
		zap.Int64("grade_id", id),
		zap.Int64("student_id", req.StudentID),
		zap.Int64("subject_id", req.SubjectID),
		zap.Int("grade", req.Grade),
	)
	return id, nil
}

// ExportReportPDF renders the student's per-subject breakdown as a PDF.
func (s *GradingService) ExportReportPDF(ctx context.Context, studentID int64) ([]byte, error) {
	subjects, err := s.grades.SubjectReports(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build subject report")
	}

	dataset := export.Dataset{
		Headers: []string{"Предмет", "Оценки", "Средний балл"},
	}
	for _, subj := range subjects {
		values := make([]string, len(subj.Grades))
		for i, g := range subj.Grades {
			values[i] = strconv.FormatInt(g, 10)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Предмет":      subj.Name,
			"Оценки":       strings.Join(values, " "),
			"Средний балл": strconv.FormatFloat(subj.Average, 'f', 2, 64),
		})
	}

	data, err := s.pdf.Render(dataset, fmt.Sprintf("Табель ученика %d", studentID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report pdf")
	}
	return data, nil
}

func (s *GradingService) leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var cached []models.LeaderboardEntry
	if s.cache.Get(ctx, leaderboardCacheKey, &cached) {
		return cached, nil
	}

	entries, err := s.grades.Leaderboard(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build leaderboard")
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.cache.Set(ctx, leaderboardCacheKey, entries, s.cacheTTL)
	return entries, nil
}
