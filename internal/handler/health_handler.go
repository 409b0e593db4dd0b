package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/tecnoacademia/attendance-api/pkg/response"
)

// HealthHandler reports process and database health.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a new handler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	overall, database := "ok", "ok"
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		overall, database = "degraded", "down"
	}

	response.JSON(c, status, gin.H{
		"status":    overall,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
