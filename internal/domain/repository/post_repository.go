package repository

import (
	"context"
	"errors"

	"postly/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrPostNotFound is returned when no post matches the lookup, including
// ownership-scoped lookups where the post exists but belongs to someone else.
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the operations for post persistence.
//
// Every method taking an ownerID filters on id AND owner in a single
// statement; none of them fetch by id and compare the owner afterwards.
type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error

	// FindByID returns the post with its Owner populated.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)

	// List returns posts newest first with their owners.
	List(ctx context.Context, offset, limit int) ([]*entity.Post, error)

	// ListByUser returns the posts of one user newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Post, error)

	// ListMediaRefsByUser returns every non-empty media reference owned by the user.
	ListMediaRefsByUser(ctx context.Context, userID uuid.UUID) ([]string, error)

	// FindOwned returns the post only when it is owned by ownerID.
	FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*entity.Post, error)

	// UpdateOwned applies the patch to the post owned by ownerID.
	UpdateOwned(ctx context.Context, id, ownerID uuid.UUID, patch entity.PostPatch) error

	// SetMediaRefOwned replaces the media reference of the post owned by ownerID.
	SetMediaRefOwned(ctx context.Context, id, ownerID uuid.UUID, mediaRef *string) error

	// DeleteOwned removes the post owned by ownerID.
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error

	// ListWithMedia pages through every post carrying a media reference, ordered by id.
	ListWithMedia(ctx context.Context, afterID uuid.UUID, limit int) ([]*entity.Post, error)

	// SetMediaRef replaces a media reference without an owner filter. Maintenance tooling only.
	SetMediaRef(ctx context.Context, id uuid.UUID, mediaRef *string) error
}
