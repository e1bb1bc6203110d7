package impl

import (
	"context"
	"testing"
	"time"

	"postly/internal/domain/constants"
	"postly/internal/domain/entity"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/domain/repository"
	"postly/internal/domain/service"
	mockRepo "postly/internal/mocks/repository"
	mockService "postly/internal/mocks/service"
	"postly/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authServiceFixtures struct {
	service  usecase.AuthUsecase
	userRepo *mockRepo.MockUserRepository
	hasher   *mockService.MockPasswordHasher
	tokens   *mockService.MockTokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockService.NewMockPasswordHasher(t)
	tokens := mockService.NewMockTokenService(t)

	svc := NewAuthService(AuthServiceParams{
		TxManager:    &mockRepo.PassthroughTransactionManager{Factory: &mockRepo.MockRepositoryFactory{Users: userRepo}},
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokens,
		Logger:       newDiscardLogger(),
	})

	return authServiceFixtures{service: svc, userRepo: userRepo, hasher: hasher, tokens: tokens}
}

func TestAuthService_Signup_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	birthday := time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)

	fx.userRepo.On("FindByEmail", ctx, "ada@example.com").Return(nil, repository.ErrUserNotFound)
	fx.hasher.On("Hash", "s3cret-pass").Return("$2a$12$digest", nil)
	fx.userRepo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "ada@example.com" && u.PasswordHash == "$2a$12$digest" && u.Birthday.Equal(birthday)
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = uuid.New()
	}).Return(nil)

	user, err := fx.service.Signup(ctx, &usecase.SignupInput{
		Email:     "ada@example.com",
		Password:  "s3cret-pass",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Birthday:  birthday,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "Ada Lovelace", user.FullName())
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
}

func TestAuthService_Signup_EmailTaken(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.On("FindByEmail", ctx, "ada@example.com").Return(&entity.User{ID: uuid.New()}, nil)

	user, err := fx.service.Signup(ctx, &usecase.SignupInput{Email: "ada@example.com", Password: "x"})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyRegistered)
	fx.hasher.AssertNotCalled(t, "Hash", mock.Anything)
}

func TestAuthService_Signup_InsertRaceIsConflict(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.On("FindByEmail", ctx, "ada@example.com").Return(nil, repository.ErrUserNotFound)
	fx.hasher.On("Hash", "pw").Return("digest", nil)
	fx.userRepo.On("Create", ctx, mock.Anything).
		Return(domainerrors.ErrEmailAlreadyRegistered.WrapMessage("email already exists"))

	_, err := fx.service.Signup(ctx, &usecase.SignupInput{Email: "ada@example.com", Password: "pw"})

	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyRegistered)
}

func TestAuthService_Signin_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: "digest"}

	fx.userRepo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
	fx.hasher.On("Check", "pw", "digest").Return(true)
	fx.hasher.On("NeedsRehash", "digest").Return(false)
	fx.tokens.On("AccessTTL").Return(30 * time.Minute)
	fx.tokens.On("Issue", user.ID, 30*time.Minute).Return("signed.jwt.token", nil)

	out, err := fx.service.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", out.AccessToken)
	assert.Equal(t, constants.TokenTypeBearer, out.TokenType)
	assert.Equal(t, 30*time.Minute, out.ExpiresIn)
	assert.Equal(t, user, out.User)
}

func TestAuthService_Signin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	ctx := context.Background()

	unknown := createTestAuthService(t)
	unknown.userRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)
	unknown.hasher.On("Hash", dummyPassword).Return("dummy-digest", nil).Once()
	unknown.hasher.On("Check", "pw", "dummy-digest").Return(false).Twice()

	_, errUnknown := unknown.service.Signin(ctx, &usecase.SigninInput{Email: "ghost@example.com", Password: "pw"})
	// The placeholder digest is computed once and reused.
	_, errUnknownAgain := unknown.service.Signin(ctx, &usecase.SigninInput{Email: "ghost@example.com", Password: "pw"})

	wrong := createTestAuthService(t)
	wrong.userRepo.On("FindByEmail", ctx, "ada@example.com").Return(&entity.User{ID: uuid.New(), PasswordHash: "digest"}, nil)
	wrong.hasher.On("Check", "pw", "digest").Return(false)

	_, errWrong := wrong.service.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: "pw"})

	require.ErrorIs(t, errUnknown, domainerrors.ErrInvalidCredentials)
	require.ErrorIs(t, errUnknownAgain, domainerrors.ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuthService_Signin_TimingDigestFallback(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)
	fx.hasher.On("Hash", dummyPassword).Return("", errors.New("rng unavailable"))
	fx.hasher.On("Check", "pw", fallbackDummyDigest).Return(false)

	_, err := fx.service.Signin(ctx, &usecase.SigninInput{Email: "ghost@example.com", Password: "pw"})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Signin_RehashesOutdatedDigest(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), PasswordHash: "$argon2id$old"}

	fx.userRepo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
	fx.hasher.On("Check", "pw", "$argon2id$old").Return(true)
	fx.hasher.On("NeedsRehash", "$argon2id$old").Return(true)
	fx.hasher.On("Hash", "pw").Return("$2a$12$new", nil)
	fx.userRepo.On("UpdatePasswordHash", ctx, user.ID, "$2a$12$new").Return(nil)
	fx.tokens.On("AccessTTL").Return(time.Minute)
	fx.tokens.On("Issue", user.ID, time.Minute).Return("tok", nil)

	out, err := fx.service.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "$2a$12$new", out.User.PasswordHash)
}

func TestAuthService_Signin_RehashFailureDoesNotFailSignin(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	user := &entity.User{ID: uuid.New(), PasswordHash: "old"}

	fx.userRepo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
	fx.hasher.On("Check", "pw", "old").Return(true)
	fx.hasher.On("NeedsRehash", "old").Return(true)
	fx.hasher.On("Hash", "pw").Return("new", nil)
	fx.userRepo.On("UpdatePasswordHash", ctx, user.ID, "new").Return(errors.New("connection reset"))
	fx.tokens.On("AccessTTL").Return(time.Minute)
	fx.tokens.On("Issue", user.ID, time.Minute).Return("tok", nil)

	out, err := fx.service.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "tok", out.AccessToken)
	assert.Equal(t, "old", out.User.PasswordHash)
}

func TestAuthService_Signin_StorageFailureIsNotCredentialsError(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	dbErr := domainerrors.NewDatabaseExecuteError(errors.New("timeout"), "failed to find user by email")

	fx.userRepo.On("FindByEmail", ctx, "ada@example.com").Return(nil, dbErr)

	_, err := fx.service.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: "pw"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("valid token of existing user", func(t *testing.T) {
		fx := createTestAuthService(t)
		user := &entity.User{ID: userID}
		fx.tokens.On("Verify", "good").Return(userID, nil)
		fx.userRepo.On("FindByID", ctx, userID).Return(user, nil)

		got, err := fx.service.Authenticate(ctx, "good")
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("invalid token", func(t *testing.T) {
		fx := createTestAuthService(t)
		fx.tokens.On("Verify", "bad").Return(uuid.Nil, service.ErrInvalidToken)

		_, err := fx.service.Authenticate(ctx, "bad")
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	})

	t.Run("deleted user", func(t *testing.T) {
		fx := createTestAuthService(t)
		fx.tokens.On("Verify", "orphan").Return(userID, nil)
		fx.userRepo.On("FindByID", ctx, userID).Return(nil, repository.ErrUserNotFound)

		_, err := fx.service.Authenticate(ctx, "orphan")
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	})
}
