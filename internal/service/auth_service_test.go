package service

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shkola-app/gradebook-api/internal/models"
	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
	"github.com/shkola-app/gradebook-api/pkg/jobs"
)

type mockCodeRepo struct {
	codes  []*models.VerificationCode
	nextID int64
}

func (m *mockCodeRepo) Create(ctx context.Context, code *models.VerificationCode) error {
	m.nextID++
	code.ID = m.nextID
	code.CreatedAt = time.Now()
	cp := *code
	m.codes = append(m.codes, &cp)
	return nil
}

func (m *mockCodeRepo) FindValid(ctx context.Context, phone, code string, now time.Time) (*models.VerificationCode, error) {
	var best *models.VerificationCode
	for _, rec := range m.codes {
		if rec.Phone != phone || rec.Code != code || rec.Used || !rec.ExpiresAt.After(now) {
			continue
		}
		if best == nil || rec.CreatedAt.After(best.CreatedAt) {
			best = rec
		}
	}
	if best == nil {
		return nil, sql.ErrNoRows
	}
	cp := *best
	return &cp, nil
}

func (m *mockCodeRepo) MarkUsed(ctx context.Context, id int64) error {
	for _, rec := range m.codes {
		if rec.ID == id {
			rec.Used = true
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockUserRepo struct {
	byPhone    map[string]*models.User
	byUsername map[string]*models.User
	nextID     int64
}

func (m *mockUserRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	if user, ok := m.byPhone[phone]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindTeacherByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := m.byUsername[username]; ok && user.Role == models.RoleTeacher {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) CreateFromPhone(ctx context.Context, user *models.User) error {
	if m.byPhone == nil {
		m.byPhone = make(map[string]*models.User)
	}
	m.nextID++
	user.ID = m.nextID
	if user.AvatarEmoji == "" {
		user.AvatarEmoji = "🧑‍🎓"
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.byPhone[*user.Phone] = &cp
	return nil
}

type mockDispatcher struct {
	jobs []jobs.Job
	err  error
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func newAuthService(codes *mockCodeRepo, users *mockUserRepo, dispatch *mockDispatcher) *AuthService {
	return NewAuthService(codes, users, dispatch, nil, nil, AuthConfig{
		DirectorPhone: "+79999999999",
		CodeTTL:       5 * time.Minute,
	})
}

func TestSendCodeIssuesSixDigits(t *testing.T) {
	codes := &mockCodeRepo{}
	dispatch := &mockDispatcher{}
	svc := newAuthService(codes, &mockUserRepo{}, dispatch)

	res, err := svc.SendCode(context.Background(), SendCodeRequest{Phone: "+79001234567"})
	require.NoError(t, err)
	require.Len(t, res.Code, 6)
	n, err := strconv.Atoi(res.Code)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 100000)
	assert.LessOrEqual(t, n, 999999)
	assert.Contains(t, res.Message, res.Code)
	require.Len(t, codes.codes, 1)
	assert.Len(t, dispatch.jobs, 1)
}

func TestSendCodeRequiresPhone(t *testing.T) {
	svc := newAuthService(&mockCodeRepo{}, &mockUserRepo{}, nil)

	_, err := svc.SendCode(context.Background(), SendCodeRequest{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Телефон обязателен", appErr.Message)
}

func TestSendCodeDirectorAllowlist(t *testing.T) {
	svc := newAuthService(&mockCodeRepo{}, &mockUserRepo{}, nil)

	_, err := svc.SendCode(context.Background(), SendCodeRequest{Phone: "+79001234567", Role: models.RoleDirector})
	appErr := appErrors.FromError(err)
	assert.Equal(t, 403, appErr.Status)
	assert.Equal(t, "Роль директора доступна только владельцу", appErr.Message)

	res, err := svc.SendCode(context.Background(), SendCodeRequest{Phone: "+79999999999", Role: models.RoleDirector})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Code)
}

func TestVerifyCodeOnceOnly(t *testing.T) {
	codes := &mockCodeRepo{}
	users := &mockUserRepo{}
	svc := newAuthService(codes, users, nil)

	res, err := svc.SendCode(context.Background(), SendCodeRequest{Phone: "+79001234567"})
	require.NoError(t, err)

	user, err := svc.VerifyCode(context.Background(), VerifyCodeRequest{Phone: "+79001234567", Code: res.Code})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)

	// Codes are single-use: a second redemption must fail.
	_, err = svc.VerifyCode(context.Background(), VerifyCodeRequest{Phone: "+79001234567", Code: res.Code})
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Неверный или истёкший код", appErr.Message)
}

func TestVerifyCodeWrongCode(t *testing.T) {
	codes := &mockCodeRepo{}
	svc := newAuthService(codes, &mockUserRepo{}, nil)

	_, err := svc.SendCode(context.Background(), SendCodeRequest{Phone: "+79001234567"})
	require.NoError(t, err)

	_, err = svc.VerifyCode(context.Background(), VerifyCodeRequest{Phone: "+79001234567", Code: "000000"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, "Неверный или истёкший код", appErr.Message)
}

func TestVerifyCodeExpired(t *testing.T) {
	codes := &mockCodeRepo{}
	svc := newAuthService(codes, &mockUserRepo{}, nil)

	res, err := svc.SendCode(context.Background(), SendCodeRequest{Phone: "+79001234567"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	_, err = svc.VerifyCode(context.Background(), VerifyCodeRequest{Phone: "+79001234567", Code: res.Code})
	appErr := appErrors.FromError(err)
	assert.Equal(t, "Неверный или истёкший код", appErr.Message)
}

func TestVerifyCodeCreatesDefaultName(t *testing.T) {
	codes := &mockCodeRepo{}
	users := &mockUserRepo{}
	svc := newAuthService(codes, users, nil)

	res, err := svc.SendCode(context.Background(), SendCodeRequest{Phone: "+79001234567"})
	require.NoError(t, err)

	user, err := svc.VerifyCode(context.Background(), VerifyCodeRequest{Phone: "+79001234567", Code: res.Code})
	require.NoError(t, err)
	assert.Equal(t, "Ученик 4567", user.FullName)
	assert.Equal(t, models.RoleStudent, user.Role)
}

func TestVerifyCodeExistingUserWins(t *testing.T) {
	codes := &mockCodeRepo{}
	phone := "+79001234567"
	users := &mockUserRepo{byPhone: map[string]*models.User{
		phone: {ID: 1, Phone: &phone, Role: models.RoleStudent, FullName: "Иван Иванов"},
	}}
	svc := newAuthService(codes, users, nil)

	res, err := svc.SendCode(context.Background(), SendCodeRequest{Phone: phone})
	require.NoError(t, err)

	// The supplied role and name are ignored for an existing account.
	user, err := svc.VerifyCode(context.Background(), VerifyCodeRequest{
		Phone:    phone,
		Code:     res.Code,
		Role:     models.RoleTeacher,
		FullName: "Кто-то другой",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Иван Иванов", user.FullName)
	assert.Equal(t, models.RoleStudent, user.Role)
}

func TestVerifyCodeInvalidRoleDefaultsToStudent(t *testing.T) {
	codes := &mockCodeRepo{}
	users := &mockUserRepo{}
	svc := newAuthService(codes, users, nil)

	res, err := svc.SendCode(context.Background(), SendCodeRequest{Phone: "+79001234567"})
	require.NoError(t, err)

	user, err := svc.VerifyCode(context.Background(), VerifyCodeRequest{
		Phone: "+79001234567",
		Code:  res.Code,
		Role:  models.Role("admin"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
}

func TestLoginTeacher(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)
	username := "petrova"
	users := &mockUserRepo{byUsername: map[string]*models.User{
		username: {ID: 2, Username: &username, PasswordHash: &hashStr, Role: models.RoleTeacher, FullName: "Мария Петрова"},
	}}
	svc := newAuthService(&mockCodeRepo{}, users, nil)

	user, err := svc.LoginTeacher(context.Background(), LoginTeacherRequest{Username: "petrova", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.ID)
}

func TestLoginTeacherFailures(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)
	username := "petrova"
	users := &mockUserRepo{byUsername: map[string]*models.User{
		username: {ID: 2, Username: &username, PasswordHash: &hashStr, Role: models.RoleTeacher},
	}}
	svc := newAuthService(&mockCodeRepo{}, users, nil)

	cases := []struct {
		name    string
		req     LoginTeacherRequest
		status  int
		message string
	}{
		{"missing fields", LoginTeacherRequest{}, 400, "Логин и пароль обязательны"},
		{"unknown username", LoginTeacherRequest{Username: "nobody", Password: "secret"}, 401, "Неверный логин или пароль"},
		{"wrong password", LoginTeacherRequest{Username: "petrova", Password: "wrong"}, 401, "Неверный логин или пароль"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.LoginTeacher(context.Background(), tc.req)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.status, appErr.Status)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}
