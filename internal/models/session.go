package models

import "time"

// Session is a scheduled class occurrence. Location is a stored label and is
// not validated against a closed set.
type Session struct {
	ID           string    `db:"id" json:"id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	Title        string    `db:"title" json:"title"`
	StartsAt     time.Time `db:"starts_at" json:"starts_at"`
	EndsAt       time.Time `db:"ends_at" json:"ends_at"`
	Location     string    `db:"location" json:"location"`
	Description  *string   `db:"description" json:"description"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	InstructorID string
	From         *time.Time
	To           *time.Time
	Active       *bool
}
