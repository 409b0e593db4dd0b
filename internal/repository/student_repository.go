package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tecnoacademia/attendance-api/internal/models"
)

// StudentRepository manages persistence for roster records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentDetailSelect = `SELECT s.id, s.name, s.document, s.instructor_id, s.session_id, s.created_at,
        i.name AS instructor_name, i.email AS instructor_email
        FROM students s
        LEFT JOIN instructors i ON i.id = s.instructor_id`

// List returns students matching the filter ordered by name. An empty
// instructor filter returns the whole roster.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	query := studentDetailSelect
	args := []interface{}{}
	if filter.InstructorID != "" {
		query += " WHERE s.instructor_id = $1"
		args = append(args, filter.InstructorID)
	}
	query += " ORDER BY s.name"

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, studentDetailSelect+" WHERE s.id = $1", id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindOwned fetches a student only when owned by the given instructor.
func (r *StudentRepository) FindOwned(ctx context.Context, id, instructorID string) (*models.Student, error) {
	const query = `SELECT id, name, document, instructor_id, session_id, created_at
        FROM students WHERE id = $1 AND instructor_id = $2`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id, instructorID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, name, document, instructor_id, session_id, created_at)
        VALUES (:id, :name, :document, :instructor_id, :session_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of a student. The owning instructor is
// immutable and deliberately excluded.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET name = :name, document = :document, session_id = :session_id WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student; attendance marks cascade at the schema level.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
