package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
	"github.com/tecnoacademia/attendance-api/pkg/export"
)

const exportDateLayout = "02/01/2006"

type reportStore interface {
	StudentSummaries(ctx context.Context, instructorID string) ([]models.StudentSummaryRow, error)
	PeriodReport(ctx context.Context, instructorID string, from, to time.Time) ([]models.StudentSummaryRow, error)
	ExportMarks(ctx context.Context, instructorID string) ([]models.ExportMarkRow, error)
}

type reportRoster interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type reportLedger interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, error)
}

// StudentSummary is a per-student attendance aggregate.
type StudentSummary struct {
	StudentID  string  `json:"student_id"`
	Name       string  `json:"name"`
	Document   *string `json:"document"`
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absences   int     `json:"absences"`
	Percentage float64 `json:"percentage"`
}

// DateMark is one calendar date's presence flag within a student detail.
type DateMark struct {
	Date    string `json:"date"`
	Present bool   `json:"present"`
}

// StudentDetailReport is a single student's full attendance history.
type StudentDetailReport struct {
	StudentID string         `json:"student_id"`
	Name      string         `json:"name"`
	Document  *string        `json:"document"`
	Dates     []DateMark     `json:"dates"`
	Summary   StudentSummary `json:"summary"`
}

// ReportService builds read-only aggregates and export grids over the
// ledger. Non-admin callers are always scoped to their own roster.
type ReportService struct {
	store  reportStore
	roster reportRoster
	ledger reportLedger
	logger *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(store reportStore, roster reportRoster, ledger reportLedger, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{store: store, roster: roster, ledger: ledger, logger: logger}
}

// StudentSummaries returns per-student totals for the caller's scope.
// Students without marks appear with zero counts and zero percentage.
func (s *ReportService) StudentSummaries(ctx context.Context, claims *models.JWTClaims) ([]StudentSummary, error) {
	rows, err := s.store.StudentSummaries(ctx, ScopeOwner(claims, ""))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build summaries")
	}
	return summarize(rows), nil
}

// StudentDetail returns one student's ordered date history plus summary.
func (s *ReportService) StudentDetail(ctx context.Context, claims *models.JWTClaims, studentID string) (*StudentDetailReport, error) {
	student, err := s.roster.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !CanAccess(claims, student.InstructorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student belongs to another instructor")
	}

	marks, err := s.ledger.List(ctx, models.AttendanceFilter{StudentID: studentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	detail := &StudentDetailReport{
		StudentID: student.ID,
		Name:      student.Name,
		Document:  student.Document,
	}
	present := 0
	for _, mark := range marks {
		detail.Dates = append(detail.Dates, DateMark{
			Date:    mark.AttendedOn.Format(models.DateLayout),
			Present: mark.Present,
		})
		if mark.Present {
			present++
		}
	}
	sort.Slice(detail.Dates, func(i, j int) bool { return detail.Dates[i].Date < detail.Dates[j].Date })

	detail.Summary = StudentSummary{
		StudentID:  student.ID,
		Name:       student.Name,
		Document:   student.Document,
		Total:      len(marks),
		Present:    present,
		Absences:   len(marks) - present,
		Percentage: percentage(present, len(marks)),
	}
	return detail, nil
}

// PeriodReport aggregates marks within the inclusive [from, to] range.
func (s *ReportService) PeriodReport(ctx context.Context, claims *models.JWTClaims, from, to time.Time) ([]StudentSummary, error) {
	if from.After(to) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date is after end date")
	}
	rows, err := s.store.PeriodReport(ctx, ScopeOwner(claims, ""), from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build period report")
	}
	return summarize(rows), nil
}

// ExportDataset builds the attendance grid for CSV export: one row per
// student, one column per distinct marked date, a trailing TOTAL and
// PERCENTAGE. The percentage denominator is the full set of exported
// dates, so students miss points for dates other students attended.
func (s *ReportService) ExportDataset(ctx context.Context, claims *models.JWTClaims) (*export.Dataset, error) {
	scope := ScopeOwner(claims, "")

	students, err := s.roster.List(ctx, models.StudentFilter{InstructorID: scope})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no students to export")
	}

	marks, err := s.store.ExportMarks(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if len(marks) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance to export")
	}

	seen := map[string]bool{}
	var dates []string
	presentByStudent := map[string]map[string]bool{}
	for _, mark := range marks {
		date := mark.AttendedOn.Format(exportDateLayout)
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
		if presentByStudent[mark.StudentID] == nil {
			presentByStudent[mark.StudentID] = map[string]bool{}
		}
		if mark.Present {
			presentByStudent[mark.StudentID][date] = true
		}
	}

	headers := append([]string{"NOMBRES", "DOCUMENTO"}, dates...)
	headers = append(headers, "TOTAL", "PERCENTAGE")

	dataset := &export.Dataset{Headers: headers}
	for _, student := range students {
		row := map[string]string{"NOMBRES": student.Name}
		if student.Document != nil {
			row["DOCUMENTO"] = *student.Document
		}
		total := 0
		for _, date := range dates {
			if presentByStudent[student.ID][date] {
				row[date] = "X"
				total++
			}
		}
		row["TOTAL"] = fmt.Sprintf("%d", total)
		row["PERCENTAGE"] = fmt.Sprintf("%.1f%%", percentage(total, len(dates)))
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset, nil
}

// PeriodDataset renders the period report as an exportable table.
func (s *ReportService) PeriodDataset(ctx context.Context, claims *models.JWTClaims, from, to time.Time) (*export.Dataset, error) {
	summaries, err := s.PeriodReport(ctx, claims, from, to)
	if err != nil {
		return nil, err
	}

	dataset := &export.Dataset{
		Headers: []string{"NOMBRES", "DOCUMENTO", "TOTAL", "PRESENT", "ABSENCES", "PERCENTAGE"},
	}
	for _, summary := range summaries {
		row := map[string]string{
			"NOMBRES":    summary.Name,
			"TOTAL":      fmt.Sprintf("%d", summary.Total),
			"PRESENT":    fmt.Sprintf("%d", summary.Present),
			"ABSENCES":   fmt.Sprintf("%d", summary.Absences),
			"PERCENTAGE": fmt.Sprintf("%.1f%%", summary.Percentage),
		}
		if summary.Document != nil {
			row["DOCUMENTO"] = *summary.Document
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset, nil
}

func summarize(rows []models.StudentSummaryRow) []StudentSummary {
	summaries := make([]StudentSummary, len(rows))
	for i, row := range rows {
		summaries[i] = StudentSummary{
			StudentID:  row.StudentID,
			Name:       row.Name,
			Document:   row.Document,
			Total:      row.Total,
			Present:    row.Present,
			Absences:   row.Total - row.Present,
			Percentage: percentage(row.Present, row.Total),
		}
	}
	return summaries
}

// percentage computes present/total as a percentage rounded to two
// decimals. Zero totals yield zero rather than NaN.
func percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*100*100) / 100
}
