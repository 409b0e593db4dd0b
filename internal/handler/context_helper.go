package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tecnoacademia/attendance-api/internal/middleware"
	"github.com/tecnoacademia/attendance-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.ClaimsFromContext(c)
}
