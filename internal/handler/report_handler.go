package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tecnoacademia/attendance-api/internal/models"
	"github.com/tecnoacademia/attendance-api/internal/service"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
	"github.com/tecnoacademia/attendance-api/pkg/export"
	"github.com/tecnoacademia/attendance-api/pkg/response"
)

// ReportHandler wires aggregate and export endpoints.
type ReportHandler struct {
	service *service.ReportService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService, csv *export.CSVExporter, pdf *export.PDFExporter) *ReportHandler {
	return &ReportHandler{service: svc, csv: csv, pdf: pdf}
}

// Summaries godoc
// @Summary Per-student attendance summaries
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /attendance/report [get]
func (h *ReportHandler) Summaries(c *gin.Context) {
	summaries, err := h.service.StudentSummaries(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries)
}

// StudentDetail godoc
// @Summary Single student attendance history
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/report/students/{id} [get]
func (h *ReportHandler) StudentDetail(c *gin.Context) {
	detail, err := h.service.StudentDetail(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Period godoc
// @Summary Attendance report for a date range
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/report/period [get]
func (h *ReportHandler) Period(c *gin.Context) {
	from, to, err := periodRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.service.PeriodReport(c.Request.Context(), claimsFromContext(c), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// ExportCSV godoc
// @Summary Export the attendance grid as CSV
// @Tags Reports
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV content"
// @Failure 404 {object} response.Envelope
// @Router /attendance/export [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	dataset, err := h.service.ExportDataset(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.csv.Render(*dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}

	filename := fmt.Sprintf("asistencia_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export a period report as PDF
// @Tags Reports
// @Produce application/pdf
// @Security BearerAuth
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {string} string "PDF content"
// @Failure 400 {object} response.Envelope
// @Router /attendance/report/pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	from, to, err := periodRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset, err := h.service.PeriodDataset(c.Request.Context(), claimsFromContext(c), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	title := fmt.Sprintf("Reporte de asistencia %s - %s", from.Format("02/01/2006"), to.Format("02/01/2006"))
	payload, err := h.pdf.Render(*dataset, title)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
		return
	}

	filename := fmt.Sprintf("reporte_%s.pdf", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

func periodRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := time.Parse(models.DateLayout, c.Query("start"))
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "start must be formatted as YYYY-MM-DD")
	}
	to, err := time.Parse(models.DateLayout, c.Query("end"))
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end must be formatted as YYYY-MM-DD")
	}
	return from, to, nil
}
