// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"postly/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the operations for user persistence.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their exact email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user. A duplicate email surfaces as domainerrors.ErrEmailAlreadyRegistered.
	Create(ctx context.Context, user *entity.User) error

	// UpdatePasswordHash replaces the stored digest of a user.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error

	// Delete removes the user. Owned posts are removed by the storage layer's cascade.
	Delete(ctx context.Context, id uuid.UUID) error
}
