package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tecnoacademia/attendance-api/internal/models"
)

// SessionRepository manages persistence for class sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, instructor_id, title, starts_at, ends_at, location, description, active, created_at"

// List returns sessions matching the filter ordered by start time.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("starts_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("ends_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	query := fmt.Sprintf("SELECT %s FROM sessions WHERE %s ORDER BY starts_at",
		sessionColumns, strings.Join(conditions, " AND "))

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// FindByID fetches a session by ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1", sessionColumns)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Upcoming returns active sessions starting inside [from, until], ordered by
// start time and capped at limit.
func (r *SessionRepository) Upcoming(ctx context.Context, instructorID string, from, until time.Time, limit int) ([]models.Session, error) {
	conditions := []string{"active = true", "starts_at >= $1", "starts_at <= $2"}
	args := []interface{}{from, until}
	if instructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, instructorID)
	}
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE %s ORDER BY starts_at LIMIT %d",
		sessionColumns, strings.Join(conditions, " AND "), limit)

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("upcoming sessions: %w", err)
	}
	return sessions, nil
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sessions (id, instructor_id, title, starts_at, ends_at, location, description, active, created_at)
        VALUES (:id, :instructor_id, :title, :starts_at, :ends_at, :location, :description, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies an existing session.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	const query = `UPDATE sessions SET title = :title, starts_at = :starts_at, ends_at = :ends_at,
        location = :location, description = :description, active = :active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
