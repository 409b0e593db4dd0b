package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tecnoacademia/attendance-api/internal/models"
	"github.com/tecnoacademia/attendance-api/internal/service"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
	"github.com/tecnoacademia/attendance-api/pkg/response"
)

// SessionHandler wires class scheduling endpoints.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler creates a new handler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// List godoc
// @Summary List sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param instructor_id query string false "Owner filter (admin only)"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	query := service.SessionListQuery{InstructorID: c.Query("instructor_id")}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as YYYY-MM-DD"))
			return
		}
		query.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be formatted as YYYY-MM-DD"))
			return
		}
		query.To = &to
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		query.Active = &active
	}

	sessions, err := h.service.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Calendar godoc
// @Summary Month calendar
// @Description Active sessions of the caller within a month
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/calendar [get]
func (h *SessionHandler) Calendar(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be a number"))
		return
	}

	sessions, err := h.service.Calendar(c.Request.Context(), claimsFromContext(c), year, time.Month(month))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Create godoc
// @Summary Create session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}

	session, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body service.UpdateSessionRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	var req service.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}

	session, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Delete godoc
// @Summary Delete session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
