package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tecnoacademia/attendance-api/internal/service"
	"github.com/tecnoacademia/attendance-api/pkg/response"
)

// DashboardHandler serves the caller-scoped dashboard snapshot.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Snapshot godoc
// @Summary Dashboard snapshot
// @Description Entity counts, current-month attendance and upcoming sessions
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.service.Snapshot(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot)
}
