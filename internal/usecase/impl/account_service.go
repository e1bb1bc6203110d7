package impl

import (
	"context"
	"log/slog"

	deliverycontext "postly/internal/delivery/context"
	"postly/internal/domain/entity"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/domain/repository"
	"postly/internal/domain/service"
	"postly/internal/errors"
	"postly/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type accountService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	mediaStore service.MediaStore
	logger     *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	UserRepo   repository.UserRepository
	PostRepo   repository.PostRepository
	MediaStore service.MediaStore
	Logger     *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		userRepo:   params.UserRepo,
		postRepo:   params.PostRepo,
		mediaStore: params.MediaStore,
		logger:     params.Logger,
	}
}

func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerFromContext(ctx, srv.logger)
}

func (srv *accountService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to load current user")
	}

	return user, nil
}

func (srv *accountService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	refs, err := srv.postRepo.ListMediaRefsByUser(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "failed to list account media")
	}

	for _, ref := range refs {
		removeMediaBestEffort(ctx, srv.log(ctx), srv.mediaStore, ref)
	}

	if err := srv.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound
		}

		return errors.Wrap(err, "failed to delete account")
	}

	srv.log(ctx).Info("Account deleted",
		slog.String("userID", userID.String()),
		slog.Int("mediaRefs", len(refs)),
	)

	return nil
}

// removeMediaBestEffort deletes a blob and only logs when that fails.
// A blob that is already gone is not worth a warning.
func removeMediaBestEffort(ctx context.Context, logger *slog.Logger, store service.MediaStore, name string) {
	err := store.Delete(ctx, name)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrMediaNotFound):
		logger.Debug("Media already removed", slog.String("media", name))
	default:
		logger.Warn("Failed to remove media", slog.String("media", name), slog.Any("error", err))
	}
}
