// Package service provides testify mocks of the domain service interfaces.
package service

import (
	"context"
	"io"
	"time"

	"postly/internal/domain/service"

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

// MockPasswordHasher is a mock of service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func NewMockPasswordHasher(t cleanupT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	register(t, &m.Mock)

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, digest string) bool {
	return m.Called(password, digest).Bool(0)
}

func (m *MockPasswordHasher) NeedsRehash(digest string) bool {
	return m.Called(digest).Bool(0)
}

// MockTokenService is a mock of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

func NewMockTokenService(t cleanupT) *MockTokenService {
	m := &MockTokenService{}
	register(t, &m.Mock)

	return m
}

func (m *MockTokenService) Issue(subject uuid.UUID, ttl time.Duration) (string, error) {
	args := m.Called(subject, ttl)

	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Verify(token string) (uuid.UUID, error) {
	args := m.Called(token)
	subject, _ := args.Get(0).(uuid.UUID)

	return subject, args.Error(1)
}

func (m *MockTokenService) AccessTTL() time.Duration {
	args := m.Called()
	ttl, _ := args.Get(0).(time.Duration)

	return ttl
}

// MockMediaStore is a mock of service.MediaStore. Write drains the reader
// before returning so callers observe real byte counts when Return uses a func.
type MockMediaStore struct {
	mock.Mock
}

func NewMockMediaStore(t cleanupT) *MockMediaStore {
	m := &MockMediaStore{}
	register(t, &m.Mock)

	return m
}

func (m *MockMediaStore) Write(ctx context.Context, name string, r io.Reader, contentType string) (int64, error) {
	args := m.Called(ctx, name, r, contentType)
	if fn, ok := args.Get(0).(func(io.Reader) (int64, error)); ok {
		return fn(r)
	}
	written, _ := args.Get(0).(int64)

	return written, args.Error(1)
}

func (m *MockMediaStore) Open(ctx context.Context, name string) (*service.MediaObject, error) {
	args := m.Called(ctx, name)
	obj, _ := args.Get(0).(*service.MediaObject)

	return obj, args.Error(1)
}

func (m *MockMediaStore) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockMediaStore) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)

	return args.Bool(0), args.Error(1)
}

func (m *MockMediaStore) Close() error {
	return m.Called().Error(0)
}

// MockEventPublisher is a mock of service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func NewMockEventPublisher(t cleanupT) *MockEventPublisher {
	m := &MockEventPublisher{}
	register(t, &m.Mock)

	return m
}

func (m *MockEventPublisher) PublishPostEvent(ctx context.Context, event *service.PostEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}

// MockQRCodeService is a mock of service.QRCodeService.
type MockQRCodeService struct {
	mock.Mock
}

func NewMockQRCodeService(t cleanupT) *MockQRCodeService {
	m := &MockQRCodeService{}
	register(t, &m.Mock)

	return m
}

func (m *MockQRCodeService) GeneratePostQR(postID uuid.UUID) ([]byte, error) {
	args := m.Called(postID)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

// MockRateLimiter is a mock of service.RateLimiter.
type MockRateLimiter struct {
	mock.Mock
}

func NewMockRateLimiter(t cleanupT) *MockRateLimiter {
	m := &MockRateLimiter{}
	register(t, &m.Mock)

	return m
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (service.RateLimitResult, error) {
	args := m.Called(ctx, key)
	result, _ := args.Get(0).(service.RateLimitResult)

	return result, args.Error(1)
}
