package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shkola-app/gradebook-api/internal/models"
	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
	"github.com/shkola-app/gradebook-api/pkg/jobs"
	"github.com/shkola-app/gradebook-api/pkg/sms"
)

type codeRepository interface {
	Create(ctx context.Context, code *models.VerificationCode) error
	FindValid(ctx context.Context, phone, code string, now time.Time) (*models.VerificationCode, error)
	MarkUsed(ctx context.Context, id int64) error
}

type authUserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindTeacherByUsername(ctx context.Context, username string) (*models.User, error)
	CreateFromPhone(ctx context.Context, user *models.User) error
}

type smsDispatcher interface {
	Enqueue(job jobs.Job) error
}

// AuthConfig defines configuration for the verification flows.
type AuthConfig struct {
	// DirectorPhone is the only phone allowed to request the director role.
	DirectorPhone string
	// CodeTTL bounds how long an issued code is accepted.
	CodeTTL time.Duration
}

// SendCodeRequest asks for a verification code for a phone number.
type SendCodeRequest struct {
	Phone string      `json:"phone" validate:"required"`
	Role  models.Role `json:"role"`
}

// SendCodeResult carries the issued code back to the caller. Until a real
// SMS provider is wired in, the frontend reads the code from here.
type SendCodeResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VerifyCodeRequest redeems a code and resolves the user behind the phone.
type VerifyCodeRequest struct {
	Phone     string      `json:"phone"`
	Code      string      `json:"code"`
	Role      models.Role `json:"role"`
	FullName  string      `json:"full_name"`
	ClassName string      `json:"class_name"`
}

// LoginTeacherRequest authenticates a teacher by credentials.
type LoginTeacherRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService implements phone-code login for students and the director
// plus credential login for teachers.
type AuthService struct {
	codes     codeRepository
	users     authUserRepository
	dispatch  smsDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(codes codeRepository, users authUserRepository, dispatch smsDispatcher, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CodeTTL <= 0 {
		config.CodeTTL = 5 * time.Minute
	}
	return &AuthService{
		codes:     codes,
		users:     users,
		dispatch:  dispatch,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// SendCode issues a fresh 6-digit verification code for the phone.
func (s *AuthService) SendCode(ctx context.Context, req SendCodeRequest) (*SendCodeResult, error) {
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Role == "" {
		req.Role = models.RoleStudent
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Телефон обязателен")
	}

	if req.Role == models.RoleDirector && req.Phone != s.config.DirectorPhone {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Роль директора доступна только владельцу")
	}

	code, err := generateCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate code")
	}

	rec := &models.VerificationCode{
		Phone:     req.Phone,
		Code:      code,
		ExpiresAt: s.now().Add(s.config.CodeTTL),
	}
	if err := s.codes.Create(ctx, rec); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store code")
	}

	if s.dispatch != nil {
		job := jobs.Job{
			ID:   uuid.NewString(),
			Type: "sms.verification_code",
			Payload: sms.Message{
				Phone: req.Phone,
				Text:  fmt.Sprintf("Код подтверждения: %s", code),
			},
		}
		if err := s.dispatch.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue sms delivery", zap.Error(err))
		}
	}

	return &SendCodeResult{
		Code:    code,
		Message: fmt.Sprintf("Код отправлен: %s", code),
	}, nil
}

// VerifyCode redeems the newest matching unused, unexpired code and
// resolves the user behind the phone. An existing user is returned
// verbatim; otherwise one is created with the supplied role and names.
func (s *AuthService) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*models.User, error) {
	req.Phone = strings.TrimSpace(req.Phone)
	req.Code = strings.TrimSpace(req.Code)
	if req.Role == "" || !req.Role.Valid() {
		req.Role = models.RoleStudent
	}

	rec, err := s.codes.FindValid(ctx, req.Phone, req.Code, s.now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCode
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up code")
	}

	if err := s.codes.MarkUsed(ctx, rec.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume code")
	}

	user, err := s.users.FindByPhone(ctx, req.Phone)
	if err == nil {
		// Existing identity wins: the role and names supplied in this
		// call are ignored.
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up user")
	}

	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = fmt.Sprintf("Ученик %s", lastDigits(req.Phone, 4))
	}

	created := &models.User{
		Phone:    &req.Phone,
		Role:     req.Role,
		FullName: fullName,
	}
	if className := strings.TrimSpace(req.ClassName); className != "" {
		created.ClassName = &className
	}
	if err := s.users.CreateFromPhone(ctx, created); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user registered via phone",
		zap.Int64("user_id", created.ID),
		zap.String("role", string(created.Role)),
	)
	return created, nil
}

// LoginTeacher authenticates a teacher by username and password. Wrong
// username, wrong password and wrong role all collapse into the same
// unauthorized answer.
func (s *AuthService) LoginTeacher(ctx context.Context, req LoginTeacherRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Password = strings.TrimSpace(req.Password)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Логин и пароль обязательны")
	}

	user, err := s.users.FindTeacherByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Неверный логин или пароль")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if user.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Неверный логин или пароль")
	}

	return user, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func lastDigits(phone string, n int) string {
	if len(phone) <= n {
		return phone
	}
	return phone[len(phone)-n:]
}
