// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "postly/internal/delivery/context"
	"postly/internal/domain/constants"
	"postly/internal/domain/entity"
	domainerrors "postly/internal/domain/errors"
	"postly/internal/domain/repository"
	"postly/internal/domain/service"
	"postly/internal/errors"
	"postly/internal/usecase"

	"go.uber.org/fx"
)

// fallbackDummyDigest is a well-formed bcrypt digest of an unguessable value.
// It is only used if hashing the timing placeholder itself fails.
const fallbackDummyDigest = "$2a$12$nRwEHKsFZCJ1zGcJ0FNaFwEaDPjzQNlVLWtKGFY90m54skdVdIk9p"

const dummyPassword = "postly-signin-timing-placeholder"

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerFromContext(ctx, srv.logger)
}

// Signup checks, hashes and inserts inside one transaction. Two concurrent
// signups for one email are settled by the unique index, which the
// repository reports as the same conflict.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*entity.User, error) {
	var created *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByEmail(ctx, input.Email)
		switch {
		case err == nil:
			return domainerrors.ErrEmailAlreadyRegistered
		case !errors.Is(err, repository.ErrUserNotFound):
			return errors.Wrap(err, "failed to check email availability")
		}

		digest, err := srv.hasher.Hash(input.Password)
		if err != nil {
			return errors.Wrap(err, "failed to hash password")
		}

		user := &entity.User{
			Email:        input.Email,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			PasswordHash: digest,
			Birthday:     input.Birthday,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return errors.Wrap(err, "failed to create user")
		}

		created = user

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrEmailAlreadyRegistered) {
			srv.log(ctx).Info("Signup rejected, email already registered")
		}

		return nil, errors.Wrap(err, "signup")
	}

	srv.log(ctx).Info("User signed up", slog.String("userID", created.ID.String()))

	return created, nil
}

func (srv *authService) Signin(ctx context.Context, input *usecase.SigninInput) (*usecase.SigninOutput, error) {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(err, "failed to find user for signin")
		}

		// Spend the same hashing work as a real check before answering.
		srv.hasher.Check(input.Password, srv.timingDigest())

		return nil, domainerrors.ErrInvalidCredentials
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Signin rejected", slog.String("userID", user.ID.String()))

		return nil, domainerrors.ErrInvalidCredentials
	}

	if srv.hasher.NeedsRehash(user.PasswordHash) {
		srv.rehash(ctx, user, input.Password)
	}

	ttl := srv.tokenService.AccessTTL()
	token, err := srv.tokenService.Issue(user.ID, ttl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	return &usecase.SigninOutput{
		AccessToken: token,
		TokenType:   constants.TokenTypeBearer,
		ExpiresIn:   ttl,
		User:        user,
	}, nil
}

// rehash upgrades a digest made with outdated settings. Failure only costs the upgrade.
func (srv *authService) rehash(ctx context.Context, user *entity.User, password string) {
	digest, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Warn("Password rehash failed", slog.String("userID", user.ID.String()), slog.Any("error", err))

		return
	}

	if err := srv.userRepo.UpdatePasswordHash(ctx, user.ID, digest); err != nil {
		srv.log(ctx).Warn("Storing rehashed password failed", slog.String("userID", user.ID.String()), slog.Any("error", err))

		return
	}

	user.PasswordHash = digest
	srv.log(ctx).Info("Password digest upgraded", slog.String("userID", user.ID.String()))
}

// timingDigest is produced by the preferred algorithm so that a miss costs what a hit does.
func (srv *authService) timingDigest() string {
	srv.dummyOnce.Do(func() {
		digest, err := srv.hasher.Hash(dummyPassword)
		if err != nil {
			srv.logger.Warn("Falling back to static timing digest", slog.Any("error", err))
			digest = fallbackDummyDigest
		}
		srv.dummyDigest = digest
	})

	return srv.dummyDigest
}

func (srv *authService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	userID, err := srv.tokenService.Verify(token)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUnauthorized, err.Error())
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUnauthorized.WrapMessage("token subject no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load token subject")
	}

	return user, nil
}
