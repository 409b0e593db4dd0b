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
	"github.com/tecnoacademia/attendance-api/pkg/tabular"
)

// AttendanceHandler wires ledger endpoints including the file import.
type AttendanceHandler struct {
	service  *service.AttendanceService
	importer *service.ImportService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService, importer *service.ImportService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, importer: importer}
}

// Record godoc
// @Summary Record attendance
// @Description Record or replace the mark for a (student, date) pair
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	mark, err := h.service.Record(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if mark.Created {
		response.Created(c, mark)
		return
	}
	response.JSON(c, http.StatusOK, mark)
}

// RecordBatch godoc
// @Summary Record attendance in bulk
// @Description Record many students for one date in a single transaction
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RecordBatchRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) RecordBatch(c *gin.Context) {
	var req service.RecordBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}

	result, err := h.service.RecordBatch(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Toggle godoc
// @Summary Toggle attendance
// @Description Set the mark for a student on the caller's own roster
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RecordAttendanceRequest true "Toggle payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/toggle [post]
func (h *AttendanceHandler) Toggle(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid toggle payload"))
		return
	}

	mark, err := h.service.Toggle(c.Request.Context(), claimsFromContext(c), req.StudentID, req.Date, req.Present)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark)
}

// List godoc
// @Summary List attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param instructor_id query string false "Owner filter (admin only)"
// @Param student_id query string false "Student filter"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param present query bool false "Presence filter"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	query := service.AttendanceListQuery{
		InstructorID: c.Query("instructor_id"),
		StudentID:    c.Query("student_id"),
	}
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
	if raw := c.Query("present"); raw != "" {
		present, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "present must be a boolean"))
			return
		}
		query.Present = &present
	}

	marks, err := h.service.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks)
}

// Update godoc
// @Summary Update attendance mark
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mark ID"
// @Param payload body object true "Presence payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var payload struct {
		Present *bool `json:"present" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "present is required"))
		return
	}

	mark, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), *payload.Present)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark)
}

// Delete godoc
// @Summary Delete attendance mark
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mark ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Import attendance spreadsheet
// @Description Reconcile a CSV or Excel attendance file into the roster and ledger
// @Tags Attendance
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Attendance file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/import [post]
func (h *AttendanceHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open upload"))
		return
	}
	defer file.Close()

	// The whole file is parsed before the import transaction opens.
	table, err := tabular.Read(fileHeader.Filename, file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to parse file"))
		return
	}

	result, err := h.importer.Import(c.Request.Context(), claimsFromContext(c), table)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
