package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for authenticating an instructor.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued bearer token and account info.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	Instructor  InstructorInfo `json:"instructor"`
}

// RegisterRequest creates a new instructor account.
type RegisterRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Specialty string `json:"specialty" validate:"required"`
}

// JWTClaims is the access token payload. Subject carries the instructor
// email for compatibility with existing clients.
type JWTClaims struct {
	InstructorID string `json:"instructor_id"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
