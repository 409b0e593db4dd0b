package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
	"github.com/tecnoacademia/attendance-api/pkg/response"
)

// ContextUserKey stores the authenticated claims in the gin context.
const ContextUserKey = "current_user"

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// RequireAuth validates the bearer token and stores the claims for
// downstream handlers.
func RequireAuth(validator tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// RequireAdmin gates a route group to administrator accounts. It must run
// after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFromContext(c)
		if claims == nil || !claims.IsAdmin {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "administrator role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFromContext returns the authenticated claims, or nil when the
// request was not authenticated.
func ClaimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
