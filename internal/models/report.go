package models

import "time"

// StudentSummaryRow is the raw per-student aggregate read from the store.
type StudentSummaryRow struct {
	StudentID string  `db:"student_id"`
	Name      string  `db:"name"`
	Document  *string `db:"document"`
	Total     int     `db:"total"`
	Present   int     `db:"present"`
}

// ExportMarkRow is one (student, date, presence) fact for the export grid.
type ExportMarkRow struct {
	StudentID  string    `db:"student_id"`
	AttendedOn time.Time `db:"attended_on"`
	Present    bool      `db:"present"`
}

// DashboardCounts are the caller-scoped entity totals.
type DashboardCounts struct {
	Students   int `db:"students" json:"students"`
	Sessions   int `db:"sessions" json:"sessions"`
	Attendance int `db:"attendance" json:"attendance"`
}

// MonthStats aggregates current-month attendance.
type MonthStats struct {
	Total   int `db:"total"`
	Present int `db:"present"`
}
