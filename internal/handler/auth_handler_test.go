package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tecnoacademia/attendance-api/internal/middleware"
	"github.com/tecnoacademia/attendance-api/internal/models"
	"github.com/tecnoacademia/attendance-api/internal/service"
)

type stubAuthRepo struct {
	instructor *models.Instructor
}

func (s *stubAuthRepo) FindByEmail(_ context.Context, email string) (*models.Instructor, error) {
	if s.instructor == nil || s.instructor.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.instructor, nil
}

func (s *stubAuthRepo) ExistsByEmail(_ context.Context, email, _ string) (bool, error) {
	return s.instructor != nil && s.instructor.Email == email, nil
}

func (s *stubAuthRepo) Create(_ context.Context, instructor *models.Instructor) error {
	instructor.ID = "instructor-2"
	return nil
}

func newAuthTestRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubAuthRepo{instructor: &models.Instructor{
		ID:           "instructor-1",
		Name:         "Ana",
		Email:        "ana@tecnoacademia.com",
		PasswordHash: string(hash),
		Active:       true,
	}}
	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{Secret: "test-secret", Expiration: time.Hour})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAuthHandler(svc)
	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.GET("/me", middleware.RequireAuth(svc), h.Me)
	return router, svc
}

func TestAuthHandlerLogin(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "ana@tecnoacademia.com", "password": "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token"`)
	assert.Contains(t, rec.Body.String(), `"token_type":"bearer"`)
}

func TestAuthHandlerLoginRejectsBadCredentials(t *testing.T) {
	router, _ := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "ana@tecnoacademia.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"INVALID_CREDENTIALS"`)
}

func TestAuthHandlerMe(t *testing.T) {
	router, svc := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "ana@tecnoacademia.com", "password": "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	claims, err := svc.ValidateToken(envelope.Data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "instructor-1", claims.InstructorID)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"instructor_id":"instructor-1"`)
}
