package usecase

import (
	"context"
	"io"

	"postly/internal/domain/entity"
	"postly/internal/domain/service"

	"github.com/google/uuid"
)

// CreatePostInput defines a new post by the signed-in user.
type CreatePostInput struct {
	UserID uuid.UUID
	Text   string
}

// UpdatePostInput defines a partial update. Nil fields are left untouched.
type UpdatePostInput struct {
	PostID uuid.UUID
	UserID uuid.UUID
	Text   *string
}

// AttachMediaInput defines an upload for an existing post.
type AttachMediaInput struct {
	PostID       uuid.UUID
	UserID       uuid.UUID
	Filename     string // Client supplied; only its extension is kept.
	ContentType  string
	DeclaredSize int64 // Size announced by the client, -1 when unknown.
	Content      io.Reader
}

// PageInput selects a window of a newest-first listing.
type PageInput struct {
	Skip  int
	Limit int
}

// PostUsecase defines the post catalogue and the owner-only mutations.
//
// Update, Delete and AttachMedia locate the post with a single id and owner
// filter; a post that is missing and one owned by someone else both yield
// ErrPostNotFoundOrForbidden.
type PostUsecase interface {
	Create(ctx context.Context, input *CreatePostInput) (*entity.Post, error)
	Get(ctx context.Context, postID uuid.UUID) (*entity.Post, error)
	List(ctx context.Context, page PageInput) ([]*entity.Post, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page PageInput) ([]*entity.Post, error)

	Update(ctx context.Context, input *UpdatePostInput) (*entity.Post, error)
	Delete(ctx context.Context, postID, userID uuid.UUID) error
	AttachMedia(ctx context.Context, input *AttachMediaInput) (*entity.Post, error)

	// OpenMedia streams a stored blob. The caller closes it.
	OpenMedia(ctx context.Context, name string) (*service.MediaObject, error)

	// ShareQRCode renders a PNG QR code linking to an existing post.
	ShareQRCode(ctx context.Context, postID uuid.UUID) ([]byte, error)
}
