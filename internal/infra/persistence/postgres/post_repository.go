package postgres

import (
	"context"

	"postly/internal/domain/entity"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/domain/repository"
	"postly/internal/errors"
	"postly/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// ownedFilter is the single combined predicate used by every ownership-scoped statement.
const ownedFilter = "id = ? AND user_id = ?"

// postRepository implements repository.PostRepository using GORM.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository is the constructor for postRepository.
func NewPostRepository(db *gorm.DB) repository.PostRepository {
	return &postRepository{db: db}
}

func (repo *postRepository) Create(ctx context.Context, post *entity.Post) error {
	if post.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "generate post id")
		}
		post.ID = id
	}

	postM := fromPostDomain(post)
	if err := repo.db.WithContext(ctx).Omit("Owner").Create(postM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("post owner does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create post")
	}

	post.CreatedAt = postM.CreatedAt

	return nil
}

func (repo *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var postM model.PostModel
	err := repo.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&postM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPostNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find post by id")
	}

	return toPostDomain(&postM), nil
}

func (repo *postRepository) List(ctx context.Context, offset, limit int) ([]*entity.Post, error) {
	var postsM []*model.PostModel
	err := repo.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&postsM).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list posts")
	}

	return toPostDomains(postsM), nil
}

func (repo *postRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Post, error) {
	var postsM []*model.PostModel
	err := repo.db.WithContext(ctx).
		Preload("Owner").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&postsM).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list user posts")
	}

	return toPostDomains(postsM), nil
}

func (repo *postRepository) ListMediaRefsByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var refs []string
	err := repo.db.WithContext(ctx).
		Model(&model.PostModel{}).
		Where("user_id = ? AND blob_url IS NOT NULL AND blob_url <> ''", userID).
		Pluck("blob_url", &refs).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list user media")
	}

	return refs, nil
}

// FindOwned reads from the primary so a mutation never acts on a lagging replica's view.
func (repo *postRepository) FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*entity.Post, error) {
	var postM model.PostModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where(ownedFilter, id, ownerID).
		First(&postM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPostNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find owned post")
	}

	return toPostDomain(&postM), nil
}

func (repo *postRepository) UpdateOwned(ctx context.Context, id, ownerID uuid.UUID, patch entity.PostPatch) error {
	updates := map[string]any{}
	if patch.Text != nil {
		updates["text"] = *patch.Text
	}
	if len(updates) == 0 {
		return nil
	}

	result := repo.db.WithContext(ctx).
		Model(&model.PostModel{}).
		Where(ownedFilter, id, ownerID).
		Updates(updates)

	return ownedResult(result, "failed to update post")
}

func (repo *postRepository) SetMediaRefOwned(ctx context.Context, id, ownerID uuid.UUID, mediaRef *string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PostModel{}).
		Where(ownedFilter, id, ownerID).
		Update("blob_url", mediaRef)

	return ownedResult(result, "failed to set post media")
}

func (repo *postRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where(ownedFilter, id, ownerID).
		Delete(&model.PostModel{})

	return ownedResult(result, "failed to delete post")
}

func (repo *postRepository) ListWithMedia(ctx context.Context, afterID uuid.UUID, limit int) ([]*entity.Post, error) {
	var postsM []*model.PostModel
	err := repo.db.WithContext(ctx).
		Where("id > ? AND blob_url IS NOT NULL", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&postsM).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list posts with media")
	}

	return toPostDomains(postsM), nil
}

func (repo *postRepository) SetMediaRef(ctx context.Context, id uuid.UUID, mediaRef *string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PostModel{}).
		Where("id = ?", id).
		Update("blob_url", mediaRef)

	return ownedResult(result, "failed to set post media")
}

// ownedResult maps a statement that affected no row to ErrPostNotFound.
func ownedResult(result *gorm.DB, details string) error {
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, details)
	}
	if result.RowsAffected == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

func toPostDomain(postM *model.PostModel) *entity.Post {
	if postM == nil {
		return nil
	}

	return &entity.Post{
		ID:        postM.ID,
		UserID:    postM.UserID,
		MediaRef:  postM.MediaRef,
		Text:      postM.Text,
		CreatedAt: postM.CreatedAt,
		Owner:     toUserDomain(postM.Owner),
	}
}

func toPostDomains(postsM []*model.PostModel) []*entity.Post {
	posts := make([]*entity.Post, 0, len(postsM))
	for _, postM := range postsM {
		posts = append(posts, toPostDomain(postM))
	}

	return posts
}

func fromPostDomain(post *entity.Post) *model.PostModel {
	return &model.PostModel{
		ID:        post.ID,
		UserID:    post.UserID,
		MediaRef:  post.MediaRef,
		Text:      post.Text,
		CreatedAt: post.CreatedAt,
	}
}
