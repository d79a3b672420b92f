package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/cache"
	"github.com/taskhive-dev/taskhive/internal/hub"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	db.DB = gormDB

	cache.Initialize()
	hub.Initialize()

	t.Cleanup(func() {
		db.DB = nil
		cache.Shutdown()
	})

	r := gin.New()

	api := r.Group("/api")
	{
		api.POST("/auth/register", Register)
		api.POST("/auth/login", Login)
		api.GET("/auth/me", middleware.AuthMiddleware(), Me)

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.GET("", ListTasks)
			tasks.POST("", CreateTask)
			tasks.PUT("/:task_id", UpdateTask)
			tasks.DELETE("/:task_id", DeleteTask)
		}

		teams := api.Group("/teams", middleware.AuthMiddleware())
		{
			teams.POST("", CreateTeam)
			teams.GET("", ListTeams)
			teams.GET("/:team_id", GetTeam)
			teams.DELETE("/:team_id", DeleteTeam)
			teams.POST("/:team_id/members", AddMember)
			teams.DELETE("/:team_id/members/:user_id", RemoveMember)
		}
	}

	return r, mock
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)

	return recorder
}

func tokenFor(t *testing.T, userID uint) string {
	t.Helper()

	token, err := auth.GenerateJWT(userID)
	require.NoError(t, err)

	return token
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body
}

func userColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at", "name", "email", "password_hash"}
}

func taskColumns() []string {
	return []string{"id", "created_at", "updated_at", "deleted_at", "title", "description", "status", "priority", "creator_id", "assignee_id", "team_id"}
}

func countRows(count int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(count)
}

func userRows(id uint, name, email, passwordHash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns()).AddRow(id, now, now, nil, name, email, passwordHash)
}
