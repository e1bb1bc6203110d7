package impl

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"postly/internal/domain/entity"
	"postly/internal/domain/repository"
	"postly/internal/domain/service"
	"postly/internal/errors"
	"postly/internal/usecase"

	"github.com/google/uuid"
)

const maintenanceBatchSize = 200

type mediaMaintenanceService struct {
	postRepo   repository.PostRepository
	mediaStore service.MediaStore
	logger     *slog.Logger
}

// NewMediaMaintenanceService is the constructor for mediaMaintenanceService.
func NewMediaMaintenanceService(
	postRepo repository.PostRepository,
	mediaStore service.MediaStore,
	logger *slog.Logger,
) usecase.MediaMaintenanceUsecase {
	return &mediaMaintenanceService{
		postRepo:   postRepo,
		mediaStore: mediaStore,
		logger:     logger,
	}
}

// NormalizeReferences walks every post carrying a reference in id order.
func (srv *mediaMaintenanceService) NormalizeReferences(ctx context.Context, dryRun bool) (*usecase.MediaNormalizeReport, error) {
	report := &usecase.MediaNormalizeReport{}
	afterID := uuid.Nil

	for {
		posts, err := srv.postRepo.ListWithMedia(ctx, afterID, maintenanceBatchSize)
		if err != nil {
			return report, errors.Wrap(err, "failed to page posts with media")
		}
		if len(posts) == 0 {
			return report, nil
		}

		for _, post := range posts {
			if err := srv.normalizePost(ctx, post, dryRun, report); err != nil {
				return report, err
			}
		}

		afterID = posts[len(posts)-1].ID
	}
}

func (srv *mediaMaintenanceService) normalizePost(ctx context.Context, post *entity.Post, dryRun bool, report *usecase.MediaNormalizeReport) error {
	report.Scanned++

	stored := ""
	if post.MediaRef != nil {
		stored = *post.MediaRef
	}
	name := blobName(stored)

	exists, err := srv.mediaStore.Exists(ctx, name)
	switch {
	case errors.Is(err, service.ErrInvalidMediaName):
		exists = false
	case err != nil:
		return errors.Wrapf(err, "check media of post %s", post.ID)
	}

	var next *string
	switch {
	case !exists:
		report.Cleared++
	case name != stored:
		report.Normalized++
		next = &name
	default:
		report.Unchanged++

		return nil
	}

	srv.logger.Info("Media reference repaired",
		slog.String("postID", post.ID.String()),
		slog.String("from", stored),
		slog.Bool("cleared", next == nil),
		slog.Bool("dryRun", dryRun),
	)

	if dryRun {
		return nil
	}

	if err := srv.postRepo.SetMediaRef(ctx, post.ID, next); err != nil && !errors.Is(err, repository.ErrPostNotFound) {
		return errors.Wrapf(err, "update media of post %s", post.ID)
	}

	return nil
}

// blobName reduces a stored path or URL to the final path element.
func blobName(stored string) string {
	stored = strings.TrimSpace(stored)
	if i := strings.IndexAny(stored, "?#"); i >= 0 {
		stored = stored[:i]
	}

	return path.Base(strings.ReplaceAll(stored, `\`, "/"))
}
