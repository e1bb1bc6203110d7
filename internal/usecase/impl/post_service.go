package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"postly/config"
	deliverycontext "postly/internal/delivery/context"
	"postly/internal/domain/constants"
	"postly/internal/domain/entity"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/domain/repository"
	"postly/internal/domain/service"
	"postly/internal/errors"
	"postly/internal/usecase"
	"postly/internal/util"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// postService implements the PostUsecase interface.
type postService struct {
	txManager   repository.TransactionManager
	postRepo    repository.PostRepository
	mediaStore  service.MediaStore
	publisher   service.EventPublisher
	qrService   service.QRCodeService
	maxFileSize int64
	logger      *slog.Logger
	now         func() time.Time
}

// PostServiceParams holds dependencies for PostService, injected by Fx.
type PostServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	PostRepo   repository.PostRepository
	MediaStore service.MediaStore
	Publisher  service.EventPublisher
	QRService  service.QRCodeService
	Config     *config.Config
	Logger     *slog.Logger
}

// NewPostService is the constructor for postService.
func NewPostService(params PostServiceParams) usecase.PostUsecase {
	maxFileSize := int64(10 << 20)
	if params.Config != nil && params.Config.Media != nil && params.Config.Media.MaxFileSize > 0 {
		maxFileSize = params.Config.Media.MaxFileSize
	}

	return &postService{
		txManager:   params.TxManager,
		postRepo:    params.PostRepo,
		mediaStore:  params.MediaStore,
		publisher:   params.Publisher,
		qrService:   params.QRService,
		maxFileSize: maxFileSize,
		logger:      params.Logger,
		now:         time.Now,
	}
}

func (srv *postService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerFromContext(ctx, srv.logger)
}

func (srv *postService) Create(ctx context.Context, input *usecase.CreatePostInput) (*entity.Post, error) {
	var created *entity.Post
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		postRepo := repoFactory.PostRepo()

		post := &entity.Post{UserID: input.UserID, Text: input.Text}
		if err := postRepo.Create(ctx, post); err != nil {
			return errors.Wrap(err, "failed to create post")
		}

		loaded, err := postRepo.FindByID(ctx, post.ID)
		if err != nil {
			return errors.Wrap(err, "failed to reload created post")
		}
		created = loaded

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "create post")
	}

	srv.publish(ctx, service.EventPostCreated, created)

	return created, nil
}

func (srv *postService) Get(ctx context.Context, postID uuid.UUID) (*entity.Post, error) {
	post, err := srv.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, domainerrors.ErrPostNotFound
		}

		return nil, errors.Wrap(err, "failed to get post")
	}

	return post, nil
}

func (srv *postService) List(ctx context.Context, page usecase.PageInput) ([]*entity.Post, error) {
	skip, limit := normalizePage(page)

	posts, err := srv.postRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list posts")
	}

	return posts, nil
}

func (srv *postService) ListByUser(ctx context.Context, userID uuid.UUID, page usecase.PageInput) ([]*entity.Post, error) {
	skip, limit := normalizePage(page)

	posts, err := srv.postRepo.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user posts")
	}

	return posts, nil
}

func (srv *postService) Update(ctx context.Context, input *usecase.UpdatePostInput) (*entity.Post, error) {
	patch := entity.PostPatch{Text: input.Text}

	var updated *entity.Post
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		postRepo := repoFactory.PostRepo()

		if patch.IsEmpty() {
			post, err := postRepo.FindOwned(ctx, input.PostID, input.UserID)
			if err != nil {
				return ownedMiss(err)
			}
			updated = post

			return nil
		}

		if err := postRepo.UpdateOwned(ctx, input.PostID, input.UserID, patch); err != nil {
			return ownedMiss(err)
		}

		post, err := postRepo.FindByID(ctx, input.PostID)
		if err != nil {
			return errors.Wrap(err, "failed to reload updated post")
		}
		updated = post

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "update post")
	}

	if !patch.IsEmpty() {
		srv.publish(ctx, service.EventPostUpdated, updated)
	}

	return updated, nil
}

func (srv *postService) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	post, err := srv.postRepo.FindOwned(ctx, postID, userID)
	if err != nil {
		return ownedMiss(err)
	}

	if post.HasMedia() {
		removeMediaBestEffort(ctx, srv.log(ctx), srv.mediaStore, *post.MediaRef)
	}

	if err := srv.postRepo.DeleteOwned(ctx, postID, userID); err != nil {
		return ownedMiss(err)
	}

	srv.publish(ctx, service.EventPostDeleted, post)

	return nil
}

func (srv *postService) AttachMedia(ctx context.Context, input *usecase.AttachMediaInput) (*entity.Post, error) {
	post, err := srv.postRepo.FindOwned(ctx, input.PostID, input.UserID)
	if err != nil {
		return nil, ownedMiss(err)
	}

	if input.DeclaredSize > srv.maxFileSize {
		return nil, srv.tooLarge()
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "generate media name")
	}
	name := id.String() + util.SanitizeExtension(input.Filename)

	// One byte past the limit is enough to tell an oversized stream apart.
	limited := &io.LimitedReader{R: input.Content, N: srv.maxFileSize + 1}
	written, err := srv.mediaStore.Write(ctx, name, limited, input.ContentType)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrStorageFailure, err.Error())
	}
	if written > srv.maxFileSize {
		removeMediaBestEffort(ctx, srv.log(ctx), srv.mediaStore, name)

		return nil, srv.tooLarge()
	}

	if err := srv.postRepo.SetMediaRefOwned(ctx, input.PostID, input.UserID, &name); err != nil {
		removeMediaBestEffort(ctx, srv.log(ctx), srv.mediaStore, name)

		return nil, ownedMiss(err)
	}

	if post.HasMedia() && *post.MediaRef != name {
		removeMediaBestEffort(ctx, srv.log(ctx), srv.mediaStore, *post.MediaRef)
	}

	post.MediaRef = &name
	srv.log(ctx).Info("Media attached",
		slog.String("postID", post.ID.String()),
		slog.String("media", name),
		slog.String("size", util.FormatBytes(written)),
	)
	srv.publish(ctx, service.EventPostMediaAttached, post)

	return post, nil
}

func (srv *postService) OpenMedia(ctx context.Context, name string) (*service.MediaObject, error) {
	obj, err := srv.mediaStore.Open(ctx, name)
	if err != nil {
		if errors.Is(err, service.ErrMediaNotFound) || errors.Is(err, service.ErrInvalidMediaName) {
			return nil, domainerrors.ErrMediaNotFound
		}

		return nil, errors.Wrap(domainerrors.ErrStorageFailure, err.Error())
	}

	return obj, nil
}

func (srv *postService) ShareQRCode(ctx context.Context, postID uuid.UUID) ([]byte, error) {
	if _, err := srv.Get(ctx, postID); err != nil {
		return nil, err
	}

	png, err := srv.qrService.GeneratePostQR(postID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render share code")
	}

	return png, nil
}

func (srv *postService) tooLarge() error {
	return domainerrors.ErrPayloadTooLarge.WithDetails("maximum upload size is " + util.FormatBytes(srv.maxFileSize))
}

// publish sends a lifecycle event. Delivery problems never fail the request.
func (srv *postService) publish(ctx context.Context, eventType string, post *entity.Post) {
	event := &service.PostEvent{
		RequestID:  deliverycontext.RequestIDFromContext(ctx),
		Type:       eventType,
		PostID:     post.ID.String(),
		UserID:     post.UserID.String(),
		OccurredAt: srv.now().UTC(),
	}
	if post.HasMedia() {
		event.MediaRef = *post.MediaRef
	}

	if err := srv.publisher.PublishPostEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish post event",
			slog.String("type", eventType),
			slog.String("postID", event.PostID),
			slog.Any("error", err),
		)
	}
}

// ownedMiss maps an ownership-scoped miss to the single not-found-or-forbidden answer.
func ownedMiss(err error) error {
	if errors.Is(err, repository.ErrPostNotFound) {
		return domainerrors.ErrPostNotFoundOrForbidden
	}

	return errors.Wrap(err, "owned post lookup")
}

func normalizePage(page usecase.PageInput) (skip, limit int) {
	skip = max(page.Skip, 0)

	limit = page.Limit
	switch {
	case limit <= 0:
		limit = constants.DefaultPageLimit
	case limit > constants.MaxPageLimit:
		limit = constants.MaxPageLimit
	}

	return skip, limit
}
