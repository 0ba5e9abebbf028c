package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/shkola-app/gradebook-api/internal/models"
	"github.com/shkola-app/gradebook-api/internal/service"
	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
	"github.com/shkola-app/gradebook-api/pkg/response"
)

type authService interface {
	SendCode(ctx context.Context, req service.SendCodeRequest) (*service.SendCodeResult, error)
	VerifyCode(ctx context.Context, req service.VerifyCodeRequest) (*models.User, error)
	LoginTeacher(ctx context.Context, req service.LoginTeacherRequest) (*models.User, error)
}

// AuthHandler exposes the single auth endpoint. The frontend predates this
// service and multiplexes three operations over one POST body with an
// "action" discriminator, so the handler dispatches on it.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

type authRequest struct {
	Action    string      `json:"action"`
	Phone     string      `json:"phone"`
	Role      models.Role `json:"role"`
	Code      string      `json:"code"`
	FullName  string      `json:"full_name"`
	ClassName string      `json:"class_name"`
	Username  string      `json:"username"`
	Password  string      `json:"password"`
}

// Handle godoc
// @Summary Auth actions
// @Description send_sms, verify_sms or login_teacher depending on action
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body authRequest true "Auth payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /auth [post]
func (h *AuthHandler) Handle(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Некорректный запрос"))
		return
	}

	switch req.Action {
	case "send_sms":
		res, err := h.service.SendCode(c.Request.Context(), service.SendCodeRequest{
			Phone: req.Phone,
			Role:  req.Role,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, gin.H{"success": true, "code": res.Code, "message": res.Message})

	case "verify_sms":
		user, err := h.service.VerifyCode(c.Request.Context(), service.VerifyCodeRequest{
			Phone:     req.Phone,
			Code:      req.Code,
			Role:      req.Role,
			FullName:  req.FullName,
			ClassName: req.ClassName,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, gin.H{"success": true, "user": user})

	case "login_teacher":
		user, err := h.service.LoginTeacher(c.Request.Context(), service.LoginTeacherRequest{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, gin.H{"success": true, "user": user})

	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Неизвестное действие"))
	}
}
