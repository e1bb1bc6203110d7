package impl

import (
	"context"
	"testing"

	"postly/internal/domain/entity"
	"postly/internal/domain/service"
	mockRepo "postly/internal/mocks/repository"
	mockService "postly/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBlobName(t *testing.T) {
	tests := []struct {
		stored string
		want   string
	}{
		{stored: "0190.png", want: "0190.png"},
		{stored: "uploads/0190.png", want: "0190.png"},
		{stored: "https://cdn.example.com/media/0190.png?sig=abc#frag", want: "0190.png"},
		{stored: `C:\uploads\0190.png`, want: "0190.png"},
		{stored: "  0190.png ", want: "0190.png"},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			assert.Equal(t, tt.want, blobName(tt.stored))
		})
	}
}

func TestMediaMaintenance_NormalizeReferences(t *testing.T) {
	ctx := context.Background()
	postRepo := mockRepo.NewMockPostRepository(t)
	store := mockService.NewMockMediaStore(t)
	svc := NewMediaMaintenanceService(postRepo, store, newDiscardLogger())

	unchanged := &entity.Post{ID: uuid.New(), MediaRef: strPtr("ok.png")}
	legacy := &entity.Post{ID: uuid.New(), MediaRef: strPtr("uploads/legacy.jpg")}
	dangling := &entity.Post{ID: uuid.New(), MediaRef: strPtr("gone.gif")}

	postRepo.On("ListWithMedia", ctx, uuid.Nil, maintenanceBatchSize).Return([]*entity.Post{unchanged, legacy}, nil)
	postRepo.On("ListWithMedia", ctx, legacy.ID, maintenanceBatchSize).Return([]*entity.Post{dangling}, nil)
	postRepo.On("ListWithMedia", ctx, dangling.ID, maintenanceBatchSize).Return([]*entity.Post{}, nil)

	store.On("Exists", ctx, "ok.png").Return(true, nil)
	store.On("Exists", ctx, "legacy.jpg").Return(true, nil)
	store.On("Exists", ctx, "gone.gif").Return(false, nil)

	postRepo.On("SetMediaRef", ctx, legacy.ID, mock.MatchedBy(func(ref *string) bool {
		return ref != nil && *ref == "legacy.jpg"
	})).Return(nil)
	postRepo.On("SetMediaRef", ctx, dangling.ID, (*string)(nil)).Return(nil)

	report, err := svc.NormalizeReferences(ctx, false)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Normalized)
	assert.Equal(t, 1, report.Cleared)
	assert.Equal(t, 1, report.Unchanged)
}

func TestMediaMaintenance_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	postRepo := mockRepo.NewMockPostRepository(t)
	store := mockService.NewMockMediaStore(t)
	svc := NewMediaMaintenanceService(postRepo, store, newDiscardLogger())

	bad := &entity.Post{ID: uuid.New(), MediaRef: strPtr("..")}
	postRepo.On("ListWithMedia", ctx, uuid.Nil, maintenanceBatchSize).Return([]*entity.Post{bad}, nil)
	postRepo.On("ListWithMedia", ctx, bad.ID, maintenanceBatchSize).Return(nil, nil)
	store.On("Exists", ctx, "..").Return(false, service.ErrInvalidMediaName)

	report, err := svc.NormalizeReferences(ctx, true)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Cleared)
	postRepo.AssertNotCalled(t, "SetMediaRef", mock.Anything, mock.Anything, mock.Anything)
}

func TestMediaMaintenance_StoreErrorStops(t *testing.T) {
	ctx := context.Background()
	postRepo := mockRepo.NewMockPostRepository(t)
	store := mockService.NewMockMediaStore(t)
	svc := NewMediaMaintenanceService(postRepo, store, newDiscardLogger())

	post := &entity.Post{ID: uuid.New(), MediaRef: strPtr("a.png")}
	postRepo.On("ListWithMedia", ctx, uuid.Nil, maintenanceBatchSize).Return([]*entity.Post{post}, nil)
	store.On("Exists", ctx, "a.png").Return(false, errors.New("bucket unreachable"))

	report, err := svc.NormalizeReferences(ctx, false)

	require.Error(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Zero(t, report.Cleared)
}
