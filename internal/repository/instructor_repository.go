package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tecnoacademia/attendance-api/internal/models"
)

// InstructorRepository manages persistence for instructor accounts.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

const instructorColumns = "id, name, email, password_hash, specialty, is_admin, active, created_at"

// FindByEmail fetches an instructor by unique email.
func (r *InstructorRepository) FindByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors WHERE email = $1", instructorColumns)
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, email); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// FindByID fetches an instructor by ID.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors WHERE id = $1", instructorColumns)
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// List returns instructors, optionally restricted to active accounts.
func (r *InstructorRepository) List(ctx context.Context, activeOnly bool) ([]models.Instructor, error) {
	query := fmt.Sprintf("SELECT %s FROM instructors", instructorColumns)
	if activeOnly {
		query += " WHERE active = true"
	}
	query += " ORDER BY name"
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// ExistsByEmail checks whether an email is already taken, optionally
// excluding an instructor ID.
func (r *InstructorRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT 1 FROM instructors WHERE email = $1"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// AdminExists reports whether any administrator account is present.
func (r *InstructorRepository) AdminExists(ctx context.Context) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM instructors WHERE is_admin = true LIMIT 1"); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check admin: %w", err)
	}
	return true, nil
}

// Create inserts a new instructor account.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	if instructor.CreatedAt.IsZero() {
		instructor.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO instructors (id, name, email, password_hash, specialty, is_admin, active, created_at)
        VALUES (:id, :name, :email, :password_hash, :specialty, :is_admin, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// Update modifies the mutable profile fields of an instructor.
func (r *InstructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	const query = `UPDATE instructors SET name = :name, email = :email, specialty = :specialty, is_admin = :is_admin, active = :active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return fmt.Errorf("update instructor: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored credential digest.
func (r *InstructorRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE instructors SET password_hash = $2 WHERE id = $1", id, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete removes an instructor account.
func (r *InstructorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM instructors WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete instructor: %w", err)
	}
	return nil
}
