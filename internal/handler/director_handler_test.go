package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shkola-app/gradebook-api/internal/models"
	"github.com/shkola-app/gradebook-api/internal/service"
	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
)

type directorServiceMock struct {
	listResp   []models.TeacherInfo
	listErr    error
	createResp *models.TeacherInfo
	createErr  error
	csvResp    []byte
	csvErr     error
	lastCreate service.CreateTeacherRequest
}

func (m *directorServiceMock) ListTeachers(ctx context.Context) ([]models.TeacherInfo, error) {
	return m.listResp, m.listErr
}

func (m *directorServiceMock) CreateTeacher(ctx context.Context, req service.CreateTeacherRequest) (*models.TeacherInfo, error) {
	m.lastCreate = req
	return m.createResp, m.createErr
}

func (m *directorServiceMock) ExportRosterCSV(ctx context.Context) ([]byte, error) {
	return m.csvResp, m.csvErr
}

func TestDirectorHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &directorServiceMock{
		listResp: []models.TeacherInfo{{ID: 1, Username: "petrova", FullName: "Мария Петрова"}},
	}
	handler := NewDirectorHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/director", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]models.TeacherInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body["teachers"], 1)
	assert.Equal(t, "petrova", body["teachers"][0].Username)
}

func TestDirectorHandlerCreate(t *testing.T) {
	mockSvc := &directorServiceMock{
		createResp: &models.TeacherInfo{ID: 2, Username: "sidorov", FullName: "Пётр Сидоров"},
	}
	handler := NewDirectorHandler(mockSvc)

	w := postJSON(t, handler.Create, "/director", `{"action":"create_teacher","username":"sidorov","password":"secret","full_name":"Пётр Сидоров"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "sidorov", mockSvc.lastCreate.Username)
}

func TestDirectorHandlerCreateUnknownAction(t *testing.T) {
	handler := NewDirectorHandler(&directorServiceMock{})

	w := postJSON(t, handler.Create, "/director", `{"action":"promote_teacher"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Неизвестное действие", body["error"])
}

func TestDirectorHandlerCreateConflict(t *testing.T) {
	mockSvc := &directorServiceMock{
		createErr: appErrors.Clone(appErrors.ErrConflict, "Логин уже занят"),
	}
	handler := NewDirectorHandler(mockSvc)

	w := postJSON(t, handler.Create, "/director", `{"action":"create_teacher","username":"petrova","password":"secret","full_name":"Мария Петрова"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Логин уже занят", body["error"])
}

func TestDirectorHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &directorServiceMock{csvResp: []byte("id,username\n1,petrova\n")}
	handler := NewDirectorHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/director/export", nil)
	c.Request = req

	handler.ExportCSV(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "teachers.csv")
}
