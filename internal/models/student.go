package models

import "time"

// Student is a learner tracked by exactly one owning instructor. The owner
// is immutable after creation; deleting a student cascades to its marks.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Document     *string   `db:"document" json:"document"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	SessionID    *string   `db:"session_id" json:"session_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StudentDetail embeds the owning instructor's display fields for listings.
type StudentDetail struct {
	Student
	InstructorName  *string `db:"instructor_name" json:"instructor_name,omitempty"`
	InstructorEmail *string `db:"instructor_email" json:"instructor_email,omitempty"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	InstructorID string
}
