package impl

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"authcore/config"
	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/service"
	"authcore/internal/errors"
	"authcore/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func signup(t *testing.T, f *authFixture, email, password, name string) *usecase.AuthOutput {
	t.Helper()

	out, err := f.service.Signup(context.Background(), &usecase.SignupInput{Email: email, Password: password, Name: name})
	require.NoError(t, err)

	return out
}

func appErrorOf(t *testing.T, err error) domainerrors.AppError {
	t.Helper()

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)

	return appErr
}

func TestAuthService_Signup(t *testing.T) {
	f := newAuthFixture(t)

	out := signup(t, f, "A@X.com", "secret123", "A")

	assert.Equal(t, "a@x.com", out.User.Email)
	assert.Equal(t, entity.RoleUser, out.User.Role)
	assert.True(t, out.User.IsActive)
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, 1, f.store.tokensOf(out.User.ID))

	body, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "$2a$")
	assert.NotContains(t, string(body), "passwordHash")

	claims, err := f.tokens.Verify(out.AccessToken, service.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)
	assert.Equal(t, 1, f.events.count(service.AuthEventSignup, service.AuthOutcomeSuccess))
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	signup(t, f, "a@x.com", "secret123", "A")

	_, err := f.service.Signup(context.Background(), &usecase.SignupInput{Email: "A@x.com", Password: "secret123", Name: "B"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
	assert.Equal(t, 409, appErrorOf(t, err).HTTPCode())
	assert.Equal(t, 1, f.events.count(service.AuthEventSignup, service.AuthOutcomeFailure))
}

func TestAuthService_Signup_ShortPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Signup(context.Background(), &usecase.SignupInput{Email: "a@x.com", Password: "short", Name: "A"})

	require.Error(t, err)
	var validationErr *domainerrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, 422, validationErr.HTTPCode())
	require.Len(t, validationErr.FieldErrors(), 1)
	assert.Equal(t, "password", validationErr.FieldErrors()[0].Field)
	assert.Empty(t, f.store.users)
}

func TestAuthService_Signup_PasswordByteLimit(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "72 bytes of cyrillic", password: strings.Repeat("пароль", 6)},
		{name: "84 bytes in 42 characters", password: strings.Repeat("пароль", 7), wantErr: true},
		{name: "73 ascii bytes", password: strings.Repeat("a", 73), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)

			out, err := f.service.Signup(context.Background(), &usecase.SignupInput{Email: "a@x.com", Password: tt.password, Name: "A"})

			if !tt.wantErr {
				require.NoError(t, err)
				_, err = f.service.Login(context.Background(), &usecase.LoginInput{Email: "a@x.com", Password: tt.password})
				assert.NoError(t, err)
				assert.NotNil(t, out)

				return
			}
			var validationErr *domainerrors.ValidationError
			require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)
			assert.Equal(t, 422, validationErr.HTTPCode())
			assert.Equal(t, "password", validationErr.FieldErrors()[0].Field)
			assert.Empty(t, f.store.users)
		})
	}
}

func TestAuthService_Signup_SessionFailureRollsBackAccount(t *testing.T) {
	f := newAuthFixture(t)
	f.store.failTokenCreate = errors.New("refresh store unavailable")

	_, err := f.service.Signup(context.Background(), &usecase.SignupInput{Email: "a@x.com", Password: "secret123", Name: "A"})
	require.Error(t, err)
	assert.Empty(t, f.store.users)

	// A retry is not answered with USER_ALREADY_EXISTS.
	f.store.failTokenCreate = nil
	out := signup(t, f, "a@x.com", "secret123", "A")
	assert.Equal(t, 1, f.store.tokensOf(out.User.ID))
}

func TestAuthService_Login_EnumerationResistant(t *testing.T) {
	f := newAuthFixture(t)
	signup(t, f, "a@x.com", "secret123", "A")

	_, unknownErr := f.service.Login(context.Background(), &usecase.LoginInput{Email: "nobody@x.com", Password: "secret123"})
	_, wrongErr := f.service.Login(context.Background(), &usecase.LoginInput{Email: "a@x.com", Password: "wrong-password"})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)

	unknown := appErrorOf(t, unknownErr)
	wrong := appErrorOf(t, wrongErr)
	assert.Equal(t, "INVALID_CREDENTIALS", unknown.ErrorCode())
	assert.Equal(t, unknown.ErrorCode(), wrong.ErrorCode())
	assert.Equal(t, unknown.Message(), wrong.Message())
	assert.Equal(t, unknown.HTTPCode(), wrong.HTTPCode())
	assert.Equal(t, 2, f.events.count(service.AuthEventLogin, service.AuthOutcomeFailure))
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	f := newAuthFixture(t)
	out := signup(t, f, "a@x.com", "secret123", "A")
	f.store.users[out.User.ID].IsActive = false

	_, err := f.service.Login(context.Background(), &usecase.LoginInput{Email: "a@x.com", Password: "secret123"})
	assert.True(t, errors.Is(err, domainerrors.ErrAccountInactive))

	// A wrong password never reveals that the account is inactive.
	_, err = f.service.Login(context.Background(), &usecase.LoginInput{Email: "a@x.com", Password: "wrong-password"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_SessionPolicy(t *testing.T) {
	tests := []struct {
		name          string
		singleSession bool
		wantTokens    int
	}{
		{name: "single session revokes prior tokens", singleSession: true, wantTokens: 1},
		{name: "multi session keeps prior tokens", singleSession: false, wantTokens: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t, func(cfg *config.Config) { cfg.Auth.SingleSession = tt.singleSession })
			out := signup(t, f, "a@x.com", "secret123", "A")

			for range 2 {
				_, err := f.service.Login(context.Background(), &usecase.LoginInput{Email: "a@x.com", Password: "secret123"})
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantTokens, f.store.tokensOf(out.User.ID))

			_, err := f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
			if tt.singleSession {
				assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	f := newAuthFixture(t)
	out := signup(t, f, "a@x.com", "secret123", "A")

	refreshed, err := f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	require.NoError(t, err)

	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Empty(t, refreshed.RefreshToken)
	assert.Nil(t, refreshed.RefreshTokenExpiresAt)

	claims, err := f.tokens.Verify(refreshed.AccessToken, service.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)

	// Without rotation the same refresh token keeps working.
	_, err = f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	assert.NoError(t, err)
}

func TestAuthService_Refresh_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *authFixture, out *usecase.AuthOutput) string
		wantErr error
	}{
		{
			name:    "access token presented as refresh token",
			prepare: func(_ *authFixture, out *usecase.AuthOutput) string { return out.AccessToken },
			wantErr: domainerrors.ErrRefreshTokenInvalid,
		},
		{
			name:    "garbage",
			prepare: func(_ *authFixture, _ *usecase.AuthOutput) string { return "not-a-token" },
			wantErr: domainerrors.ErrRefreshTokenInvalid,
		},
		{
			name: "signed but never stored",
			prepare: func(f *authFixture, out *usecase.AuthOutput) string {
				token, _, _ := f.tokens.IssueRefreshToken(out.User)

				return token
			},
			wantErr: domainerrors.ErrRefreshTokenInvalid,
		},
		{
			name: "user deactivated",
			prepare: func(f *authFixture, out *usecase.AuthOutput) string {
				f.store.users[out.User.ID].IsActive = false

				return out.RefreshToken
			},
			wantErr: domainerrors.ErrAccountInactive,
		},
		{
			name: "user removed",
			prepare: func(f *authFixture, out *usecase.AuthOutput) string {
				delete(f.store.users, out.User.ID)

				return out.RefreshToken
			},
			wantErr: domainerrors.ErrRefreshTokenInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			out := signup(t, f, "a@x.com", "secret123", "A")

			_, err := f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: tt.prepare(f, out)})

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, 401, appErrorOf(t, err).HTTPCode())
		})
	}
}

func TestAuthService_Refresh_ExpiredInStoreIsDeleted(t *testing.T) {
	f := newAuthFixture(t)
	out := signup(t, f, "a@x.com", "secret123", "A")

	hash := service.HashToken(out.RefreshToken)
	f.store.tokens[hash].ExpiresAt = time.Now().Add(-time.Minute)

	_, err := f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})

	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
	assert.NotContains(t, f.store.tokens, hash)
}

func TestAuthService_Refresh_Rotation(t *testing.T) {
	f := newAuthFixture(t, func(cfg *config.Config) { cfg.Auth.RotateRefreshTokens = true })
	out := signup(t, f, "a@x.com", "secret123", "A")

	rotated, err := f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	require.NoError(t, err)
	require.NotEmpty(t, rotated.RefreshToken)
	require.NotNil(t, rotated.RefreshTokenExpiresAt)
	assert.NotEqual(t, out.RefreshToken, rotated.RefreshToken)

	_, err = f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))

	_, err = f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: rotated.RefreshToken})
	assert.NoError(t, err)
	assert.Equal(t, 1, f.store.tokensOf(out.User.ID))
}

func TestAuthService_Refresh_ConcurrentRotationHasOneWinner(t *testing.T) {
	f := newAuthFixture(t, func(cfg *config.Config) { cfg.Auth.RotateRefreshTokens = true })
	out := signup(t, f, "a@x.com", "secret123", "A")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, f.store.tokensOf(out.User.ID))
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	out := signup(t, f, "a@x.com", "secret123", "A")

	require.NoError(t, f.service.Logout(context.Background(), &usecase.LogoutInput{RefreshToken: out.RefreshToken}))

	_, err := f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))

	// Logging out twice is not an error.
	assert.NoError(t, f.service.Logout(context.Background(), &usecase.LogoutInput{RefreshToken: out.RefreshToken}))
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	err := f.service.ForgotPassword(context.Background(), &usecase.ForgotPasswordInput{Email: "nobody@x.com"})

	assert.NoError(t, err)
	assert.Empty(t, f.store.resets)
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ForgotPassword_NotifierFailureIsHidden(t *testing.T) {
	f := newAuthFixture(t)
	signup(t, f, "a@x.com", "secret123", "A")

	f.notifier.EXPECT().Send(mock.Anything, "a@x.com", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(errors.New("smtp down"))

	err := f.service.ForgotPassword(context.Background(), &usecase.ForgotPasswordInput{Email: "a@x.com"})
	assert.NoError(t, err)
	assert.Len(t, f.store.resets, 1)
}

// requestReset runs forgot-password and returns the raw token handed to the notifier.
func requestReset(t *testing.T, f *authFixture, email string) (string, time.Time) {
	t.Helper()

	var rawToken string
	var expiresAt time.Time
	f.notifier.EXPECT().Send(mock.Anything, email, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(_ context.Context, _ string, token string, exp time.Time) {
			rawToken = token
			expiresAt = exp
		}).
		Return(nil).Once()

	require.NoError(t, f.service.ForgotPassword(context.Background(), &usecase.ForgotPasswordInput{Email: email}))
	require.NotEmpty(t, rawToken)

	return rawToken, expiresAt
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	out := signup(t, f, "a@x.com", "secret123", "A")

	rawToken, expiresAt := requestReset(t, f, "a@x.com")
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	for _, reset := range f.store.resets {
		assert.NotEqual(t, rawToken, reset.TokenHash)
		assert.Equal(t, service.HashToken(rawToken), reset.TokenHash)
	}

	require.NoError(t, f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{Token: rawToken, NewPassword: "new-secret-456"}))

	// Every session issued before the reset is gone.
	_, err := f.service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: out.RefreshToken})
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))

	_, err = f.service.Login(context.Background(), &usecase.LoginInput{Email: "a@x.com", Password: "secret123"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = f.service.Login(context.Background(), &usecase.LoginInput{Email: "a@x.com", Password: "new-secret-456"})
	assert.NoError(t, err)

	// The token is single use.
	err = f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{Token: rawToken, NewPassword: "another-789"})
	assert.True(t, errors.Is(err, domainerrors.ErrResetTokenInvalid))
}

func TestAuthService_ResetPassword_GenericFailures(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f *authFixture, rawToken string) string
	}{
		{
			name:    "unknown token",
			prepare: func(_ *testing.T, _ *authFixture, _ string) string { return "unknown-token" },
		},
		{
			name: "expired token",
			prepare: func(_ *testing.T, f *authFixture, rawToken string) string {
				f.store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

				return rawToken
			},
		},
		{
			name: "superseded token",
			prepare: func(t *testing.T, f *authFixture, rawToken string) string {
				requestReset(t, f, "a@x.com")

				return rawToken
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			signup(t, f, "a@x.com", "secret123", "A")
			rawToken, _ := requestReset(t, f, "a@x.com")

			err := f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{
				Token:       tt.prepare(t, f, rawToken),
				NewPassword: "new-secret-456",
			})

			require.Error(t, err)
			appErr := appErrorOf(t, err)
			assert.Equal(t, "RESET_TOKEN_INVALID", appErr.ErrorCode())
			assert.Equal(t, "Token is invalid or has expired", appErr.Message())
		})
	}
}

func TestAuthService_ResetPassword_ShortPasswordKeepsToken(t *testing.T) {
	f := newAuthFixture(t)
	signup(t, f, "a@x.com", "secret123", "A")
	rawToken, _ := requestReset(t, f, "a@x.com")

	err := f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{Token: rawToken, NewPassword: "short"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	err = f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{Token: rawToken, NewPassword: "long-enough-now"})
	assert.NoError(t, err)
}

func TestAuthService_ResetPassword_MultibytePasswordOverLimit(t *testing.T) {
	f := newAuthFixture(t)
	signup(t, f, "a@x.com", "secret123", "A")
	rawToken, _ := requestReset(t, f, "a@x.com")

	err := f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{Token: rawToken, NewPassword: strings.Repeat("пароль", 7)})

	var validationErr *domainerrors.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)
	assert.Equal(t, "newPassword", validationErr.FieldErrors()[0].Field)

	require.NoError(t, f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{Token: rawToken, NewPassword: strings.Repeat("пароль", 6)}))
}

func TestAuthService_ResetPassword_RevokeFailureRollsBack(t *testing.T) {
	f := newAuthFixture(t)
	out := signup(t, f, "a@x.com", "secret123", "A")
	rawToken, _ := requestReset(t, f, "a@x.com")
	f.store.failRevoke = errors.New("refresh store unavailable")

	err := f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{Token: rawToken, NewPassword: "new-secret-456"})
	require.Error(t, err)

	// Neither the password nor the token changed, so the reset can be retried.
	f.store.failRevoke = nil
	_, err = f.service.Login(context.Background(), &usecase.LoginInput{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, f.service.ResetPassword(context.Background(), &usecase.ResetPasswordInput{Token: rawToken, NewPassword: "new-secret-456"}))
	assert.Zero(t, f.store.tokensOf(out.User.ID))
}

func TestAuthService_Authenticate(t *testing.T) {
	f := newAuthFixture(t)
	out := signup(t, f, "a@x.com", "secret123", "A")

	principal, err := f.service.Authenticate(context.Background(), out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, principal.UserID)
	assert.Equal(t, "a@x.com", principal.Email)
	assert.Equal(t, entity.RoleUser, principal.Role)

	_, err = f.service.Authenticate(context.Background(), out.RefreshToken)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenInvalid))

	_, err = f.service.Authenticate(context.Background(), "garbage")
	assert.True(t, errors.Is(err, domainerrors.ErrTokenInvalid))

	f.store.users[out.User.ID].IsActive = false
	_, err = f.service.Authenticate(context.Background(), out.AccessToken)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountInactive))

	delete(f.store.users, out.User.ID)
	_, err = f.service.Authenticate(context.Background(), out.AccessToken)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenInvalid))
}

func TestAuthService_Authenticate_RoleFromStore(t *testing.T) {
	f := newAuthFixture(t)
	out := signup(t, f, "admin@x.com", "secret123", "Admin")
	f.store.users[out.User.ID].Role = entity.RoleAdmin

	principal, err := f.service.Authenticate(context.Background(), out.AccessToken)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())
}

func TestAuthService_TransactionFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.store.failTx = errors.New("connection reset")

	_, err := f.service.Signup(context.Background(), &usecase.SignupInput{Email: "a@x.com", Password: "secret123", Name: "A"})

	require.Error(t, err)
	var appErr domainerrors.AppError
	assert.False(t, errors.As(err, &appErr))
	assert.Empty(t, f.store.tokens)
}
