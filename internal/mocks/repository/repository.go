// Package repository provides testify mocks of the domain repository interfaces.
package repository

import (
	"context"

	"postly/internal/domain/entity"
	"postly/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockUserRepository is a mock of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository registers expectation checks on test cleanup.
func NewMockUserRepository(t cleanupT) *MockUserRepository {
	m := &MockUserRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockPostRepository is a mock of repository.PostRepository.
type MockPostRepository struct {
	mock.Mock
}

// NewMockPostRepository registers expectation checks on test cleanup.
func NewMockPostRepository(t cleanupT) *MockPostRepository {
	m := &MockPostRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPostRepository) Create(ctx context.Context, post *entity.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*entity.Post)

	return post, args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, offset, limit int) ([]*entity.Post, error) {
	args := m.Called(ctx, offset, limit)
	posts, _ := args.Get(0).([]*entity.Post)

	return posts, args.Error(1)
}

func (m *MockPostRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Post, error) {
	args := m.Called(ctx, userID, offset, limit)
	posts, _ := args.Get(0).([]*entity.Post)

	return posts, args.Error(1)
}

func (m *MockPostRepository) ListMediaRefsByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	refs, _ := args.Get(0).([]string)

	return refs, args.Error(1)
}

func (m *MockPostRepository) FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*entity.Post, error) {
	args := m.Called(ctx, id, ownerID)
	post, _ := args.Get(0).(*entity.Post)

	return post, args.Error(1)
}

func (m *MockPostRepository) UpdateOwned(ctx context.Context, id, ownerID uuid.UUID, patch entity.PostPatch) error {
	return m.Called(ctx, id, ownerID, patch).Error(0)
}

func (m *MockPostRepository) SetMediaRefOwned(ctx context.Context, id, ownerID uuid.UUID, mediaRef *string) error {
	return m.Called(ctx, id, ownerID, mediaRef).Error(0)
}

func (m *MockPostRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

func (m *MockPostRepository) ListWithMedia(ctx context.Context, afterID uuid.UUID, limit int) ([]*entity.Post, error) {
	args := m.Called(ctx, afterID, limit)
	posts, _ := args.Get(0).([]*entity.Post)

	return posts, args.Error(1)
}

func (m *MockPostRepository) SetMediaRef(ctx context.Context, id uuid.UUID, mediaRef *string) error {
	return m.Called(ctx, id, mediaRef).Error(0)
}

// MockRepositoryFactory hands out fixed repositories.
type MockRepositoryFactory struct {
	Users repository.UserRepository
	Posts repository.PostRepository
}

func (f *MockRepositoryFactory) UserRepo() repository.UserRepository {
	return f.Users
}

func (f *MockRepositoryFactory) PostRepo() repository.PostRepository {
	return f.Posts
}

// PassthroughTransactionManager runs fn directly against its factory, with no transaction.
type PassthroughTransactionManager struct {
	Factory repository.RepositoryFactory
}

func (tm *PassthroughTransactionManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(tm.Factory)
}
