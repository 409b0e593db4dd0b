package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
)

type instructorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	List(ctx context.Context, activeOnly bool) ([]models.Instructor, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	AdminExists(ctx context.Context) (bool, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// CreateInstructorRequest is the admin payload for creating accounts.
type CreateInstructorRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Specialty string `json:"specialty" validate:"required"`
}

// UpdateInstructorRequest is the admin payload for account updates. Nil
// fields are left unchanged.
type UpdateInstructorRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Specialty *string `json:"specialty"`
	Active    *bool   `json:"active"`
	IsAdmin   *bool   `json:"is_admin"`
}

// ResetPasswordRequest replaces an instructor credential.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// AdminSeed describes the bootstrap administrator account.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// InstructorService handles account management use-cases. Role and active
// flags are only ever mutated through the admin entry points.
type InstructorService struct {
	repo      instructorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorService constructs the instructor service.
func NewInstructorService(repo instructorRepository, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, validator: validate, logger: logger}
}

// ListActive returns active instructors, visible to any authenticated caller.
func (s *InstructorService) ListActive(ctx context.Context) ([]models.InstructorInfo, error) {
	return s.list(ctx, true)
}

// ListAll returns every account including inactive ones (admin only route).
func (s *InstructorService) ListAll(ctx context.Context) ([]models.InstructorInfo, error) {
	return s.list(ctx, false)
}

func (s *InstructorService) list(ctx context.Context, activeOnly bool) ([]models.InstructorInfo, error) {
	instructors, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	infos := make([]models.InstructorInfo, len(instructors))
	for i := range instructors {
		infos[i] = instructors[i].Info()
	}
	return infos, nil
}

// Create registers a new account on behalf of an administrator.
func (s *InstructorService) Create(ctx context.Context, req CreateInstructorRequest) (*models.InstructorInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	instructor := &models.Instructor{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Specialty:    req.Specialty,
		Active:       true,
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor")
	}
	info := instructor.Info()
	return &info, nil
}

// Update applies the provided fields to an existing account.
func (s *InstructorService) Update(ctx context.Context, id string, req UpdateInstructorRequest) (*models.InstructorInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	if req.Email != nil && *req.Email != instructor.Email {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrValidation, "email already in use")
		}
		instructor.Email = *req.Email
	}
	if req.Name != nil {
		instructor.Name = *req.Name
	}
	if req.Specialty != nil {
		instructor.Specialty = *req.Specialty
	}
	if req.Active != nil {
		instructor.Active = *req.Active
	}
	if req.IsAdmin != nil {
		instructor.IsAdmin = *req.IsAdmin
	}

	if err := s.repo.Update(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instructor")
	}
	info := instructor.Info()
	return &info, nil
}

// ResetPassword replaces an account credential.
func (s *InstructorService) ResetPassword(ctx context.Context, id string, req ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	return nil
}

// Delete removes an account. Self-deletion is rejected so an administrator
// cannot lock themselves out mid-session.
func (s *InstructorService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	if claims != nil && claims.InstructorID == id {
		return appErrors.Clone(appErrors.ErrValidation, "cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor")
	}
	return nil
}

// EnsureAdmin seeds the default administrator account when no admin exists.
func (s *InstructorService) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	exists, err := s.repo.AdminExists(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for admin")
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash admin password")
	}
	admin := &models.Instructor{
		Name:         seed.Name,
		Email:        seed.Email,
		PasswordHash: string(hash),
		Specialty:    "Administración",
		IsAdmin:      true,
		Active:       true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed admin")
	}
	s.logger.Info("seeded default admin account", zap.String("email", seed.Email))
	return nil
}
