package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tecnoacademia/attendance-api/internal/service"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
	"github.com/tecnoacademia/attendance-api/pkg/response"
)

// InstructorHandler wires account endpoints, including the admin sub-API.
type InstructorHandler struct {
	service *service.InstructorService
}

// NewInstructorHandler creates a new handler.
func NewInstructorHandler(svc *service.InstructorService) *InstructorHandler {
	return &InstructorHandler{service: svc}
}

// ListActive godoc
// @Summary List active instructors
// @Tags Instructors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) ListActive(c *gin.Context) {
	instructors, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors)
}

// ListAll godoc
// @Summary List all instructor accounts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/instructors [get]
func (h *InstructorHandler) ListAll(c *gin.Context) {
	instructors, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors)
}

// Create godoc
// @Summary Create instructor account
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/instructors [post]
func (h *InstructorHandler) Create(c *gin.Context) {
	var req service.CreateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid instructor payload"))
		return
	}

	info, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, info)
}

// Update godoc
// @Summary Update instructor account
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor ID"
// @Param payload body service.UpdateInstructorRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/instructors/{id} [put]
func (h *InstructorHandler) Update(c *gin.Context) {
	var req service.UpdateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid instructor payload"))
		return
	}

	info, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// ResetPassword godoc
// @Summary Reset instructor password
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor ID"
// @Param payload body service.ResetPasswordRequest true "Password payload"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/instructors/{id}/password [put]
func (h *InstructorHandler) ResetPassword(c *gin.Context) {
	var req service.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid password payload"))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete instructor account
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Instructor ID"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/instructors/{id} [delete]
func (h *InstructorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
