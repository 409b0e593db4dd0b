package models

import "time"

// DateLayout is the wire format for attendance calendar dates.
const DateLayout = "2006-01-02"

// Attendance is the presence fact for one student on one calendar date.
// At most one mark exists per (student, date) pair; the recording
// instructor is set on creation and never changed by later upserts.
type Attendance struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	AttendedOn   time.Time `db:"attended_on" json:"attended_on"`
	Present      bool      `db:"present" json:"present"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
}

// AttendanceDetail embeds student display fields for listings.
type AttendanceDetail struct {
	Attendance
	StudentName     string  `db:"student_name" json:"student_name"`
	StudentDocument *string `db:"student_document" json:"student_document"`
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	InstructorID string
	StudentID    string
	From         *time.Time
	To           *time.Time
	Present      *bool
}
