package usecase

import (
	"context"

	"postly/internal/domain/entity"

	"github.com/google/uuid"
)

// AccountUsecase defines operations on the signed-in user's own account.
type AccountUsecase interface {
	Me(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// DeleteAccount removes the user's media, then the user. Posts follow by cascade.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}
