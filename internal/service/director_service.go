package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shkola-app/gradebook-api/internal/models"
	"github.com/shkola-app/gradebook-api/internal/repository"
	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
	"github.com/shkola-app/gradebook-api/pkg/export"
)

const defaultTeacherAvatar = "👨‍🏫"

type directorUserRepository interface {
	ListTeachers(ctx context.Context) ([]models.TeacherInfo, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateTeacher(ctx context.Context, user *models.User) error
}

// CreateTeacherRequest represents the payload for provisioning a teacher.
type CreateTeacherRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	FullName    string `json:"full_name" validate:"required"`
	AvatarEmoji string `json:"avatar_emoji"`
}

// DirectorService backs the director panel: teacher roster and account
// provisioning.
type DirectorService struct {
	users     directorUserRepository
	csv       *export.CSVExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDirectorService constructs a DirectorService.
func NewDirectorService(users directorUserRepository, validate *validator.Validate, logger *zap.Logger) *DirectorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectorService{
		users:     users,
		csv:       export.NewCSVExporter(),
		validator: validate,
		logger:    logger,
	}
}

// ListTeachers returns the roster, newest first.
func (s *DirectorService) ListTeachers(ctx context.Context) ([]models.TeacherInfo, error) {
	teachers, err := s.users.ListTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// CreateTeacher provisions a teacher account. The username pre-check gives
// a clean error for the common case; the unique index backs it up when two
// creates race.
func (s *DirectorService) CreateTeacher(ctx context.Context, req CreateTeacherRequest) (*models.TeacherInfo, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Логин, пароль и имя обязательны")
	}
	if req.AvatarEmoji == "" {
		req.AvatarEmoji = defaultTeacherAvatar
	}

	taken, err := s.users.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Логин уже занят")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	hashStr := string(hash)

	user := &models.User{
		Username:     &req.Username,
		PasswordHash: &hashStr,
		Role:         models.RoleTeacher,
		FullName:     req.FullName,
		AvatarEmoji:  req.AvatarEmoji,
	}
	if err := s.users.CreateTeacher(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Логин уже занят")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}

	s.logger.Info("teacher account created",
		zap.Int64("teacher_id", user.ID),
		zap.String("username", req.Username),
	)

	return &models.TeacherInfo{
		ID:          user.ID,
		Username:    req.Username,
		FullName:    user.FullName,
		AvatarEmoji: user.AvatarEmoji,
		CreatedAt:   user.CreatedAt,
	}, nil
}

// ExportRosterCSV renders the teacher roster as CSV for download.
func (s *DirectorService) ExportRosterCSV(ctx context.Context) ([]byte, error) {
	teachers, err := s.ListTeachers(ctx)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"id", "username", "full_name", "created_at"},
	}
	for _, t := range teachers {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":         strconv.FormatInt(t.ID, 10),
			"username":   t.Username,
			"full_name":  t.FullName,
			"created_at": t.CreatedAt.Format("2006-01-02"),
		})
	}

	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
	}
	return data, nil
}
