package models

import "time"

// Instructor is an account holder owning students, sessions and recorded
// attendance marks.
type Instructor struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Specialty    string    `db:"specialty" json:"specialty"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// InstructorInfo is the public projection returned in API payloads.
type InstructorInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Specialty string `json:"specialty"`
	IsAdmin   bool   `json:"is_admin"`
	Active    bool   `json:"active"`
}

// Info converts the instructor into its public projection.
func (i *Instructor) Info() InstructorInfo {
	return InstructorInfo{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		Specialty: i.Specialty,
		IsAdmin:   i.IsAdmin,
		Active:    i.Active,
	}
}
