package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shkola-app/gradebook-api/internal/models"
	"github.com/shkola-app/gradebook-api/internal/service"
	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
	"github.com/shkola-app/gradebook-api/pkg/response"
)

type gradingService interface {
	Report(ctx context.Context, studentID int64) (*service.StudentReport, error)
	Subjects(ctx context.Context) ([]models.Subject, error)
	RecordGrade(ctx context.Context, req service.RecordGradeRequest) (int64, error)
	ExportReportPDF(ctx context.Context, studentID int64) ([]byte, error)
}

// GradeHandler wires the grading endpoints.
type GradeHandler struct {
	service gradingService
}

// NewGradeHandler creates a new handler.
func NewGradeHandler(svc gradingService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// Report godoc
// @Summary Per-subject grades and leaderboard for a student
// @Tags Grades
// @Produce json
// @Param student_id query int true "Student ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /grades [get]
func (h *GradeHandler) Report(c *gin.Context) {
	studentID, err := studentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.service.Report(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"subjects": report.Subjects, "leaderboard": report.Leaderboard})
}

// Subjects godoc
// @Summary Subject catalog
// @Tags Grades
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /subjects [get]
func (h *GradeHandler) Subjects(c *gin.Context) {
	subjects, err := h.service.Subjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"subjects": subjects})
}

// Record godoc
// @Summary Record a grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.RecordGradeRequest true "Grade payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /grades [post]
func (h *GradeHandler) Record(c *gin.Context) {
	var req service.RecordGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Некорректный запрос"))
		return
	}

	id, err := h.service.RecordGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "grade_id": id})
}

// ExportPDF godoc
// @Summary Download a student's report as PDF
// @Tags Grades
// @Produce application/pdf
// @Param student_id query int true "Student ID"
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Router /grades/export [get]
func (h *GradeHandler) ExportPDF(c *gin.Context) {
	studentID, err := studentIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := h.service.ExportReportPDF(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Blob(c, "application/pdf", fmt.Sprintf("report-%d.pdf", studentID), data)
}

func studentIDParam(c *gin.Context) (int64, error) {
	raw := c.Query("student_id")
	if raw == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "student_id обязателен")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "Некорректный student_id")
	}
	return id, nil
}
