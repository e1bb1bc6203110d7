// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"postly/internal/domain/entity"
)

// --- Input DTOs ---

// SignupInput defines the data required to create an account.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Birthday  time.Time
}

// SigninInput defines the credentials presented at signin.
type SigninInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// SigninOutput carries the issued bearer token.
type SigninOutput struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	User        *entity.User
}

// AuthUsecase defines signup, signin and bearer token resolution.
type AuthUsecase interface {
	// Signup fails with ErrEmailAlreadyRegistered when the email is taken.
	Signup(ctx context.Context, input *SignupInput) (*entity.User, error)

	// Signin returns ErrInvalidCredentials for an unknown email and for a wrong password alike.
	Signin(ctx context.Context, input *SigninInput) (*SigninOutput, error)

	// Authenticate resolves a bearer token to a persisted user, or ErrUnauthorized.
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}
