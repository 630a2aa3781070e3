package impl

import (
	"context"
	"testing"
	"time"

	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetProfile(t *testing.T) {
	store := newMemStore()
	users := &memUserRepo{store: store}
	srv := NewUserService(users, &memRefreshRepo{store: store}, newDiscardLogger())

	user := &entity.User{Email: "a@x.com", PasswordHash: "hash", Role: entity.RoleUser, IsActive: true}
	require.NoError(t, users.Create(context.Background(), user))

	got, err := srv.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = srv.GetProfile(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestUserService_SetActive(t *testing.T) {
	store := newMemStore()
	users := &memUserRepo{store: store}
	tokens := &memRefreshRepo{store: store}
	srv := NewUserService(users, tokens, newDiscardLogger())

	user := &entity.User{Email: "a@x.com", PasswordHash: "hash", Role: entity.RoleUser, IsActive: true}
	require.NoError(t, users.Create(context.Background(), user))
	require.NoError(t, tokens.Create(context.Background(), &entity.RefreshToken{
		ID: uuid.New(), UserID: user.ID, TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour),
	}))

	got, err := srv.SetActive(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Zero(t, store.tokensOf(user.ID))

	got, err = srv.SetActive(context.Background(), user.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	_, err = srv.SetActive(context.Background(), uuid.New(), false)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}
