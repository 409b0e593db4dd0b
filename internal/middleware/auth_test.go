package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
)

type fakeValidator struct {
	claims *models.JWTClaims
}

func (f *fakeValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "valid-token" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return f.claims, nil
}

func newAuthRouter(validator tokenValidator, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := []gin.HandlerFunc{RequireAuth(validator)}
	if admin {
		handlers = append(handlers, RequireAdmin())
	}
	handlers = append(handlers, func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"instructor_id": claims.InstructorID})
	})
	router.GET("/protected", handlers...)
	return router
}

func TestRequireAuth(t *testing.T) {
	router := newAuthRouter(&fakeValidator{claims: &models.JWTClaims{InstructorID: "instructor-1"}}, false)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer valid-token", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic valid-token", http.StatusUnauthorized},
		{"invalid token", "Bearer bogus", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	instructor := newAuthRouter(&fakeValidator{claims: &models.JWTClaims{InstructorID: "instructor-1"}}, true)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	instructor.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := newAuthRouter(&fakeValidator{claims: &models.JWTClaims{InstructorID: "admin-1", IsAdmin: true}}, true)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
