package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}

// CreateSessionRequest is the payload for scheduling a class.
type CreateSessionRequest struct {
	InstructorID string    `json:"instructor_id"`
	Title        string    `json:"title" validate:"required"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	EndsAt       time.Time `json:"ends_at" validate:"required"`
	Location     string    `json:"location" validate:"required"`
	Description  *string   `json:"description"`
}

// UpdateSessionRequest modifies a session. Nil fields are left unchanged.
type UpdateSessionRequest struct {
	Title       *string    `json:"title"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	Active      *bool      `json:"active"`
}

// SessionListQuery filters session listings.
type SessionListQuery struct {
	InstructorID string
	From         *time.Time
	To           *time.Time
	Active       *bool
}

// SessionService handles class scheduling with owner-or-admin policy.
type SessionService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger}
}

// List returns sessions visible to the caller, ordered by start time.
func (s *SessionService) List(ctx context.Context, claims *models.JWTClaims, query SessionListQuery) ([]models.Session, error) {
	filter := models.SessionFilter{
		InstructorID: ScopeOwner(claims, query.InstructorID),
		From:         query.From,
		To:           query.To,
		Active:       query.Active,
	}
	sessions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// Calendar returns the caller's active sessions within the given month.
func (s *SessionService) Calendar(ctx context.Context, claims *models.JWTClaims, year int, month time.Month) ([]models.Session, error) {
	if month < time.January || month > time.December {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month out of range")
	}
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	active := true
	filter := models.SessionFilter{
		InstructorID: ScopeOwner(claims, ""),
		From:         &monthStart,
		To:           &monthEnd,
		Active:       &active,
	}
	sessions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar")
	}
	return sessions, nil
}

// Get fetches one session, enforcing the owner-or-admin policy.
func (s *SessionService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Session, error) {
	session, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(claims, session.InstructorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to another instructor")
	}
	return session, nil
}

// Create schedules a class. Ownership defaults to the caller; only
// administrators may schedule for another instructor.
func (s *SessionService) Create(ctx context.Context, claims *models.JWTClaims, req CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session must start before it ends")
	}
	ownerID := claims.InstructorID
	if req.InstructorID != "" && req.InstructorID != claims.InstructorID {
		if !claims.IsAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot schedule sessions for another instructor")
		}
		ownerID = req.InstructorID
	}

	session := &models.Session{
		InstructorID: ownerID,
		Title:        req.Title,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Location:     req.Location,
		Description:  req.Description,
		Active:       true,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// Update modifies a session's mutable fields under the owner-or-admin policy.
func (s *SessionService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpdateSessionRequest) (*models.Session, error) {
	session, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(claims, session.InstructorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to another instructor")
	}

	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.StartsAt != nil {
		session.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		session.EndsAt = *req.EndsAt
	}
	if req.Location != nil {
		session.Location = *req.Location
	}
	if req.Description != nil {
		session.Description = req.Description
	}
	if req.Active != nil {
		session.Active = *req.Active
	}
	if !session.StartsAt.Before(session.EndsAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session must start before it ends")
	}

	if err := s.repo.Update(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	return session, nil
}

// Delete removes a session under the owner-or-admin policy.
func (s *SessionService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	session, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !CanAccess(claims, session.InstructorID) {
		return appErrors.Clone(appErrors.ErrForbidden, "session belongs to another instructor")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}

func (s *SessionService) find(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}
