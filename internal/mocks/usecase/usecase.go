// Package usecase provides testify mocks of the use case interfaces.
package usecase

import (
	"context"

	"postly/internal/domain/entity"
	"postly/internal/domain/service"
	"postly/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

func register(t cleanupT, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// MockAuthUsecase is a mock of usecase.AuthUsecase.
type MockAuthUsecase struct {
	mock.Mock
}

func NewMockAuthUsecase(t cleanupT) *MockAuthUsecase {
	m := &MockAuthUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockAuthUsecase) Signup(ctx context.Context, input *usecase.SignupInput) (*entity.User, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *MockAuthUsecase) Signin(ctx context.Context, input *usecase.SigninInput) (*usecase.SigninOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.SigninOutput)

	return out, args.Error(1)
}

func (m *MockAuthUsecase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

// MockAccountUsecase is a mock of usecase.AccountUsecase.
type MockAccountUsecase struct {
	mock.Mock
}

func NewMockAccountUsecase(t cleanupT) *MockAccountUsecase {
	m := &MockAccountUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockAccountUsecase) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*entity.User)

	return user, args.Error(1)
}

func (m *MockAccountUsecase) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockPostUsecase is a mock of usecase.PostUsecase.
type MockPostUsecase struct {
	mock.Mock
}

func NewMockPostUsecase(t cleanupT) *MockPostUsecase {
	m := &MockPostUsecase{}
	register(t, &m.Mock)

	return m
}

func (m *MockPostUsecase) Create(ctx context.Context, input *usecase.CreatePostInput) (*entity.Post, error) {
	args := m.Called(ctx, input)
	post, _ := args.Get(0).(*entity.Post)

	return post, args.Error(1)
}

func (m *MockPostUsecase) Get(ctx context.Context, postID uuid.UUID) (*entity.Post, error) {
	args := m.Called(ctx, postID)
	post, _ := args.Get(0).(*entity.Post)

	return post, args.Error(1)
}

func (m *MockPostUsecase) List(ctx context.Context, page usecase.PageInput) ([]*entity.Post, error) {
	args := m.Called(ctx, page)
	posts, _ := args.Get(0).([]*entity.Post)

	return posts, args.Error(1)
}

func (m *MockPostUsecase) ListByUser(ctx context.Context, userID uuid.UUID, page usecase.PageInput) ([]*entity.Post, error) {
	args := m.Called(ctx, userID, page)
	posts, _ := args.Get(0).([]*entity.Post)

	return posts, args.Error(1)
}

func (m *MockPostUsecase) Update(ctx context.Context, input *usecase.UpdatePostInput) (*entity.Post, error) {
	args := m.Called(ctx, input)
	post, _ := args.Get(0).(*entity.Post)

	return post, args.Error(1)
}

func (m *MockPostUsecase) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	return m.Called(ctx, postID, userID).Error(0)
}

func (m *MockPostUsecase) AttachMedia(ctx context.Context, input *usecase.AttachMediaInput) (*entity.Post, error) {
	args := m.Called(ctx, input)
	post, _ := args.Get(0).(*entity.Post)

	return post, args.Error(1)
}

func (m *MockPostUsecase) OpenMedia(ctx context.Context, name string) (*service.MediaObject, error) {
	args := m.Called(ctx, name)
	obj, _ := args.Get(0).(*service.MediaObject)

	return obj, args.Error(1)
}

func (m *MockPostUsecase) ShareQRCode(ctx context.Context, postID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, postID)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}
