package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tecnoacademia/attendance-api/internal/models"
)

// ReportRepository provides read-only aggregate projections over the
// attendance ledger. An empty instructorID means unrestricted scope
// (administrator callers).
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// StudentSummaries returns total/present counts per student in scope.
// Students without marks appear with zero counts.
func (r *ReportRepository) StudentSummaries(ctx context.Context, instructorID string) ([]models.StudentSummaryRow, error) {
	query := `SELECT s.id AS student_id, s.name, s.document,
        COUNT(a.id) AS total,
        COUNT(a.id) FILTER (WHERE a.present) AS present
        FROM students s
        LEFT JOIN attendance a ON a.student_id = s.id`
	args := []interface{}{}
	if instructorID != "" {
		query += " WHERE s.instructor_id = $1"
		args = append(args, instructorID)
	}
	query += " GROUP BY s.id, s.name, s.document ORDER BY s.name"

	var rows []models.StudentSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("student summaries: %w", err)
	}
	return rows, nil
}

// PeriodReport returns per-student counts within the inclusive [from, to]
// date range. Only students with at least one mark in the range appear.
func (r *ReportRepository) PeriodReport(ctx context.Context, instructorID string, from, to time.Time) ([]models.StudentSummaryRow, error) {
	query := `SELECT s.id AS student_id, s.name, s.document,
        COUNT(a.id) AS total,
        COUNT(a.id) FILTER (WHERE a.present) AS present
        FROM students s
        JOIN attendance a ON a.student_id = s.id
        WHERE a.attended_on >= $1 AND a.attended_on <= $2`
	args := []interface{}{from, to}
	if instructorID != "" {
		query += fmt.Sprintf(" AND s.instructor_id = $%d", len(args)+1)
		args = append(args, instructorID)
	}
	query += " GROUP BY s.id, s.name, s.document ORDER BY s.name"

	var rows []models.StudentSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("period report: %w", err)
	}
	return rows, nil
}

// Counts returns caller-scoped entity totals for the dashboard.
func (r *ReportRepository) Counts(ctx context.Context, instructorID string) (*models.DashboardCounts, error) {
	counts := &models.DashboardCounts{}

	type scopedCount struct {
		dest  *int
		query string
	}
	queries := []scopedCount{
		{&counts.Students, "SELECT COUNT(*) FROM students"},
		{&counts.Sessions, "SELECT COUNT(*) FROM sessions WHERE active = true"},
		{&counts.Attendance, "SELECT COUNT(*) FROM attendance"},
	}
	scoped := []scopedCount{
		{&counts.Students, "SELECT COUNT(*) FROM students WHERE instructor_id = $1"},
		{&counts.Sessions, "SELECT COUNT(*) FROM sessions WHERE active = true AND instructor_id = $1"},
		{&counts.Attendance, "SELECT COUNT(*) FROM attendance WHERE instructor_id = $1"},
	}

	selected := queries
	args := []interface{}{}
	if instructorID != "" {
		selected = scoped
		args = append(args, instructorID)
	}
	for _, q := range selected {
		if err := r.db.GetContext(ctx, q.dest, q.query, args...); err != nil {
			return nil, fmt.Errorf("dashboard counts: %w", err)
		}
	}
	return counts, nil
}

// MonthStats aggregates marks recorded on or after the given month start.
func (r *ReportRepository) MonthStats(ctx context.Context, instructorID string, monthStart time.Time) (*models.MonthStats, error) {
	query := `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE present) AS present
        FROM attendance WHERE attended_on >= $1`
	args := []interface{}{monthStart}
	if instructorID != "" {
		query += " AND instructor_id = $2"
		args = append(args, instructorID)
	}
	var stats models.MonthStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("month stats: %w", err)
	}
	return &stats, nil
}

// ExportMarks returns every (student, date, presence) fact for the scope,
// feeding the export grid.
func (r *ReportRepository) ExportMarks(ctx context.Context, instructorID string) ([]models.ExportMarkRow, error) {
	query := `SELECT a.student_id, a.attended_on, a.present
        FROM attendance a JOIN students s ON s.id = a.student_id`
	args := []interface{}{}
	if instructorID != "" {
		query += " WHERE s.instructor_id = $1"
		args = append(args, instructorID)
	}
	query += " ORDER BY a.attended_on"

	var rows []models.ExportMarkRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("export marks: %w", err)
	}
	return rows, nil
}
