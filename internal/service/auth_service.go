package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tecnoacademia/attendance-api/internal/models"
	appErrors "github.com/tecnoacademia/attendance-api/pkg/errors"
)

const uniqueViolation = "23505"

type authInstructorRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Instructor, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, instructor *models.Instructor) error
}

// AuthConfig defines configuration for authentication flows. The secret is
// injected once at startup.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
}

// AuthService provides login, registration and token validation.
type AuthService struct {
	repo      authInstructorRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authInstructorRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config}
}

// Login authenticates an instructor and returns an issued bearer token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	instructor, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch instructor")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(instructor.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if !instructor.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}

	token, err := s.issueToken(instructor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.config.Expiration.Seconds()),
		Instructor:  instructor.Info(),
	}, nil
}

// Register creates a new instructor account. New accounts are active and
// never administrators.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.InstructorInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
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
		// Two registrations can race past the existence check; the unique
		// index decides the winner.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor")
	}

	info := instructor.Info()
	return &info, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) issueToken(instructor *models.Instructor) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		InstructorID: instructor.ID,
		Email:        instructor.Email,
		IsAdmin:      instructor.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   instructor.Email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}
