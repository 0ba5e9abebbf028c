package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/shkola-app/gradebook-api/internal/models"
	"github.com/shkola-app/gradebook-api/internal/service"
	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
	"github.com/shkola-app/gradebook-api/pkg/response"
)

type directorService interface {
	ListTeachers(ctx context.Context) ([]models.TeacherInfo, error)
	CreateTeacher(ctx context.Context, req service.CreateTeacherRequest) (*models.TeacherInfo, error)
	ExportRosterCSV(ctx context.Context) ([]byte, error)
}

// DirectorHandler wires the director panel endpoints.
type DirectorHandler struct {
	service directorService
}

// NewDirectorHandler creates a new handler.
func NewDirectorHandler(svc directorService) *DirectorHandler {
	return &DirectorHandler{service: svc}
}

// List godoc
// @Summary List teachers
// @Tags Director
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /director [get]
func (h *DirectorHandler) List(c *gin.Context) {
	teachers, err := h.service.ListTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"teachers": teachers})
}

type directorRequest struct {
	Action string `json:"action"`
	service.CreateTeacherRequest
}

// Create godoc
// @Summary Create teacher account
// @Tags Director
// @Accept json
// @Produce json
// @Param payload body directorRequest true "Create teacher payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /director [post]
func (h *DirectorHandler) Create(c *gin.Context) {
	var req directorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Некорректный запрос"))
		return
	}

	if req.Action != "create_teacher" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Неизвестное действие"))
		return
	}

	teacher, err := h.service.CreateTeacher(c.Request.Context(), req.CreateTeacherRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "teacher": teacher})
}

// ExportCSV godoc
// @Summary Download teacher roster as CSV
// @Tags Director
// @Produce text/csv
// @Success 200 {string} string
// @Router /director/export [get]
func (h *DirectorHandler) ExportCSV(c *gin.Context) {
	data, err := h.service.ExportRosterCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Blob(c, "text/csv", "teachers.csv", data)
}
