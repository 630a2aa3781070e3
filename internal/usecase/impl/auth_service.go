// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"authcore/config"
	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/repository"
	"authcore/internal/domain/service"
	"authcore/internal/errors"
	"authcore/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	resetTokens      service.ResetTokenGenerator
	notifier         service.PasswordResetNotifier
	events           service.AuthEventRecorder
	authCfg          config.AuthConfig
	minPasswordLen   int
	logger           *slog.Logger
	now              func() time.Time

	dummyHashOnce sync.Once
	dummyHash     string
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	ResetTokens      service.ResetTokenGenerator
	Notifier         service.PasswordResetNotifier
	Events           service.AuthEventRecorder `optional:"true"`
	Config           *config.Config
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return newAuthService(params, time.Now)
}

func newAuthService(params AuthServiceParams, now func() time.Time) *authService {
	srv := &authService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		resetTokens:      params.ResetTokens,
		notifier:         params.Notifier,
		events:           params.Events,
		authCfg:          config.AuthConfig{SingleSession: true, ResetTokenTTL: time.Hour},
		logger:           params.Logger,
		now:              now,
	}
	if params.Config != nil && params.Config.Auth != nil {
		srv.authCfg = *params.Config.Auth
	}
	if params.Config != nil && params.Config.PasswordPolicy != nil {
		srv.minPasswordLen = params.Config.PasswordPolicy.MinLength
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *authService) record(event string, err error) {
	if srv.events == nil {
		return
	}
	outcome := service.AuthOutcomeSuccess
	if err != nil {
		outcome = service.AuthOutcomeFailure
	}
	srv.events.RecordAuthEvent(event, outcome)
}

// Signup registers a USER account and starts its first session.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (output *usecase.AuthOutput, err error) {
	defer func() { srv.record(service.AuthEventSignup, err) }()

	email := entity.NormalizeEmail(input.Email)
	if err := srv.validatePassword("password", input.Password); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Starting signup", slog.String("email", email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	newUser := &entity.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         input.Name,
		Role:         entity.RoleUser,
		IsActive:     true,
	}

	// The first session is stored in the same transaction as the account.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		_, err := userRepo.FindByEmail(ctx, email)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("signup rejected")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to look up user by email")
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.WithStack(err)
		}

		output, err = srv.startSession(ctx, repoFactory.NewRefreshTokenRepository(), newUser)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute signup transaction")
	}

	srv.log(ctx).Info("Signup completed", slog.Any("user_id", newUser.ID))

	return output, nil
}

// Login verifies credentials and starts a new session. Unknown emails and wrong
// passwords produce the same error.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (output *usecase.AuthOutput, err error) {
	defer func() { srv.record(service.AuthEventLogin, err) }()

	email := entity.NormalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		// Burn a comparison so unknown emails take as long as wrong passwords.
		srv.hasher.Check(input.Password, srv.comparisonHash())
		srv.log(ctx).Warn("Login failed", slog.String("reason", "unknown email"))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("reason", "password mismatch"), slog.Any("user_id", user.ID))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	if !user.IsActive {
		srv.log(ctx).Warn("Login rejected for inactive account", slog.Any("user_id", user.ID))

		return nil, domainerrors.ErrAccountInactive.WrapMessage("login failed")
	}

	if srv.authCfg.SingleSession {
		revoked, err := srv.refreshTokenRepo.DeleteByUserID(ctx, user.ID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to revoke previous sessions")
		}
		srv.log(ctx).Debug("Revoked previous sessions", slog.Any("user_id", user.ID), slog.Int64("count", revoked))
	}

	return srv.startSession(ctx, srv.refreshTokenRepo, user)
}

// Refresh mints a new access token for a stored, unexpired refresh token.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (output *usecase.RefreshOutput, err error) {
	defer func() { srv.record(service.AuthEventRefresh, err) }()

	claims, err := srv.tokenService.Verify(input.RefreshToken, service.TokenKindRefresh)
	if err != nil {
		srv.log(ctx).Debug("Refresh token failed verification", slog.Any("error", err))

		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token verification failed")
	}

	tokenHash := service.HashToken(input.RefreshToken)

	stored, err := srv.refreshTokenRepo.FindByHash(ctx, tokenHash)
	switch {
	case errors.Is(err, repository.ErrRefreshTokenNotFound):
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token not found")
	case errors.Is(err, repository.ErrRefreshTokenExpired):
		if err := srv.refreshTokenRepo.DeleteByHash(ctx, tokenHash); err != nil {
			srv.log(ctx).Warn("Failed to delete expired refresh token", slog.Any("error", err))
		}

		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token expired")
	case err != nil:
		return nil, errors.Wrap(err, "failed to find refresh token")
	}

	if stored.UserID != claims.UserID {
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token subject mismatch")
	}

	user, err := srv.activeUser(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, accessExpiresAt, err := srv.tokenService.IssueAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	output = &usecase.RefreshOutput{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: accessExpiresAt,
	}

	if !srv.authCfg.RotateRefreshTokens {
		return output, nil
	}

	refreshToken, refreshExpiresAt, err := srv.tokenService.IssueRefreshToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	next := &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: service.HashToken(refreshToken),
		ExpiresAt: refreshExpiresAt,
		CreatedAt: srv.now(),
	}
	if err := srv.refreshTokenRepo.Rotate(ctx, tokenHash, next); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token already rotated")
		}

		return nil, errors.Wrap(err, "failed to rotate refresh token")
	}

	output.RefreshToken = refreshToken
	output.RefreshTokenExpiresAt = &refreshExpiresAt

	return output, nil
}

// Logout ends the session of the presented refresh token. Unknown tokens are ignored.
func (srv *authService) Logout(ctx context.Context, input *usecase.LogoutInput) (err error) {
	defer func() { srv.record(service.AuthEventLogout, err) }()

	if err := srv.refreshTokenRepo.DeleteByHash(ctx, service.HashToken(input.RefreshToken)); err != nil {
		return errors.Wrap(err, "failed to delete refresh token")
	}

	return nil
}

// ForgotPassword issues a reset token when the account exists and is active.
// The outcome is never reported to the caller.
func (srv *authService) ForgotPassword(ctx context.Context, input *usecase.ForgotPasswordInput) (err error) {
	defer func() { srv.record(service.AuthEventForgotPassword, err) }()

	email := entity.NormalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Debug("Password reset requested for unknown email")

		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to find user by email")
	}
	if !user.IsActive {
		srv.log(ctx).Debug("Password reset requested for inactive account", slog.Any("user_id", user.ID))

		return nil
	}

	rawToken, tokenHash, err := srv.resetTokens.Generate()
	if err != nil {
		return errors.Wrap(err, "failed to generate reset token")
	}

	now := srv.now()
	reset := &entity.PasswordReset{
		UserID:    user.ID,
		Email:     user.Email,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(srv.authCfg.ResetTokenTTL),
		CreatedAt: now,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		resetRepo := repoFactory.NewPasswordResetRepository()

		if err := resetRepo.SupersedeByUserID(ctx, user.ID); err != nil {
			return errors.Wrap(err, "failed to supersede pending resets")
		}

		return errors.WithStack(resetRepo.Create(ctx, reset))
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute password reset transaction")
	}

	// Delivery failures stay internal; the response must look the same either way.
	if err := srv.notifier.Send(ctx, user.Email, rawToken, reset.ExpiresAt); err != nil {
		srv.log(ctx).Error("Failed to deliver password reset token", slog.Any("user_id", user.ID), slog.Any("error", err))
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the password in one
// transaction, then ends every session of the user.
func (srv *authService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) (err error) {
	defer func() { srv.record(service.AuthEventResetPassword, err) }()

	if err := srv.validatePassword("newPassword", input.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	tokenHash := service.HashToken(input.Token)

	var (
		userID  uuid.UUID
		revoked int64
	)
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		reset, err := repoFactory.NewPasswordResetRepository().Consume(ctx, tokenHash, srv.now())
		if errors.Is(err, repository.ErrPasswordResetNotFound) {
			return domainerrors.ErrResetTokenInvalid.WrapMessage("reset token rejected")
		}
		if err != nil {
			return errors.Wrap(err, "failed to consume reset token")
		}

		err = repoFactory.NewUserRepository().UpdatePassword(ctx, reset.UserID, hashedPassword)
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrResetTokenInvalid.WrapMessage("reset token owner missing")
		}
		if err != nil {
			return errors.Wrap(err, "failed to update password")
		}

		// Revocation runs last so its failure rolls back the password change.
		revoked, err = repoFactory.NewRefreshTokenRepository().DeleteByUserID(ctx, reset.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to revoke sessions")
		}

		userID = reset.UserID

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to execute reset password transaction")
	}

	srv.log(ctx).Info("Password reset completed", slog.Any("user_id", userID), slog.Int64("revoked_sessions", revoked))

	return nil
}

// Authenticate verifies an access token and loads the active user behind it.
func (srv *authService) Authenticate(ctx context.Context, accessToken string) (*entity.Principal, error) {
	claims, err := srv.tokenService.Verify(accessToken, service.TokenKindAccess)
	if errors.Is(err, service.ErrTokenExpired) {
		return nil, domainerrors.ErrTokenExpired.WrapMessage("access token expired")
	}
	if err != nil {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage(err.Error())
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token subject no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load token subject")
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountInactive.WrapMessage("token subject is inactive")
	}

	return &entity.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

// startSession issues a token pair and persists the refresh half in tokens.
func (srv *authService) startSession(ctx context.Context, tokens repository.RefreshTokenRepository, user *entity.User) (*usecase.AuthOutput, error) {
	accessToken, accessExpiresAt, err := srv.tokenService.IssueAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, refreshExpiresAt, err := srv.tokenService.IssueRefreshToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	stored := &entity.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: service.HashToken(refreshToken),
		ExpiresAt: refreshExpiresAt,
		CreatedAt: srv.now(),
	}
	if err := tokens.Create(ctx, stored); err != nil {
		return nil, errors.Wrap(err, "failed to persist refresh token")
	}

	return &usecase.AuthOutput{
		User:                  user,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiresAt,
	}, nil
}

func (srv *authService) activeUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh token owner missing")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountInactive.WrapMessage("refresh rejected for inactive account")
	}

	return user, nil
}

func (srv *authService) validatePassword(field, password string) error {
	// bcrypt refuses longer input; the request-level max counts characters, not bytes.
	if len(password) > maxPasswordBytes {
		return domainerrors.NewValidationError(domainerrors.FieldError{
			Field:   field,
			Message: "must be at most " + strconv.Itoa(maxPasswordBytes) + " bytes",
		})
	}
	if srv.minPasswordLen > 0 && len([]rune(password)) < srv.minPasswordLen {
		return domainerrors.NewValidationError(domainerrors.FieldError{
			Field:   field,
			Message: "must be at least " + strconv.Itoa(srv.minPasswordLen) + " characters",
		})
	}

	return nil
}

// comparisonHash returns a throwaway hash used to equalize login timing.
func (srv *authService) comparisonHash() string {
	srv.dummyHashOnce.Do(func() {
		hash, err := srv.hasher.Hash(uuid.NewString())
		if err != nil {
			srv.logger.Warn("Failed to prepare comparison hash", slog.Any("error", err))

			return
		}
		srv.dummyHash = hash
	})

	return srv.dummyHash
}
