package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest is the payload for adding a roster record.
type CreateStudentRequest struct {
	Name         string  `json:"name" validate:"required"`
	Document     *string `json:"document"`
	InstructorID string  `json:"instructor_id"`
	SessionID    *string `json:"session_id"`
}

// UpdateStudentRequest modifies a roster record. Nil fields are left
// unchanged; the owning instructor cannot be reassigned.
type UpdateStudentRequest struct {
	Name      *string `json:"name"`
	Document  *string `json:"document"`
	SessionID *string `json:"session_id"`
}

// StudentService handles roster use-cases with owner-or-admin policy.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns the caller-visible roster. Non-admins only ever see their
// own students regardless of the requested filter.
func (s *StudentService) List(ctx context.Context, claims *models.JWTClaims, requestedInstructor string) ([]models.StudentDetail, error) {
	filter := models.StudentFilter{InstructorID: ScopeOwner(claims, requestedInstructor)}
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get fetches one student, enforcing the owner-or-admin policy.
func (s *StudentService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.StudentDetail, error) {
	student, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(claims, student.InstructorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student belongs to another instructor")
	}
	return student, nil
}

// Create adds a student. Ownership defaults to the caller; only
// administrators may create on behalf of another instructor.
func (s *StudentService) Create(ctx context.Context, claims *models.JWTClaims, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	ownerID := claims.InstructorID
	if req.InstructorID != "" && req.InstructorID != claims.InstructorID {
		if !claims.IsAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot create students for another instructor")
		}
		ownerID = req.InstructorID
	}

	student := &models.Student{
		Name:         req.Name,
		Document:     normalizeDocument(req.Document),
		InstructorID: ownerID,
		SessionID:    req.SessionID,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies a student's mutable fields under the owner-or-admin policy.
func (s *StudentService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpdateStudentRequest) (*models.Student, error) {
	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(claims, detail.InstructorID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student belongs to another instructor")
	}

	student := detail.Student
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Document != nil {
		student.Document = normalizeDocument(req.Document)
	}
	if req.SessionID != nil {
		student.SessionID = req.SessionID
	}
	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return &student, nil
}

// Delete removes a student; attendance marks cascade away with it.
func (s *StudentService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return err
	}
	if !CanAccess(claims, detail.InstructorID) {
		return appErrors.Clone(appErrors.ErrForbidden, "student belongs to another instructor")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}

func (s *StudentService) findDetail(ctx context.Context, id string) (*models.StudentDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return detail, nil
}

// normalizeDocument treats blank and spreadsheet "nan" placeholders as an
// absent document.
func normalizeDocument(document *string) *string {
	if document == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*document)
	if trimmed == "" || strings.EqualFold(trimmed, "nan") {
		return nil
	}
	return &trimmed
}
