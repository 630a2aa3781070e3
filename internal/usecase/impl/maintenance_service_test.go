package impl

import (
	"context"
	"testing"
	"time"

	"authcore/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleanupRecorder struct {
	removed map[string]int64
}

func (r *fakeCleanupRecorder) RecordCleanup(store string, removed int64) {
	r.removed[store] += removed
}

func TestMaintenanceService_PurgeExpired(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	userID := uuid.New()

	store.tokens["live"] = &entity.RefreshToken{UserID: userID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}
	store.tokens["dead"] = &entity.RefreshToken{UserID: userID, TokenHash: "dead", ExpiresAt: now.Add(-time.Hour)}

	usedAt := now.Add(-time.Minute)
	pending := uuid.New()
	store.resets[pending] = &entity.PasswordReset{ID: pending, UserID: userID, ExpiresAt: now.Add(time.Hour)}
	used := uuid.New()
	store.resets[used] = &entity.PasswordReset{ID: used, UserID: userID, ExpiresAt: now.Add(time.Hour), UsedAt: &usedAt}
	expired := uuid.New()
	store.resets[expired] = &entity.PasswordReset{ID: expired, UserID: userID, ExpiresAt: now.Add(-time.Hour)}

	recorder := &fakeCleanupRecorder{removed: map[string]int64{}}
	srv := NewMaintenanceService(MaintenanceServiceParams{
		RefreshTokenRepo:  &memRefreshRepo{store: store},
		PasswordResetRepo: &memResetRepo{store: store},
		Recorder:          recorder,
		Logger:            newDiscardLogger(),
	})

	result, err := srv.PurgeExpired(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.RefreshTokens)
	assert.Equal(t, int64(2), result.PasswordResets)
	assert.Contains(t, store.tokens, "live")
	assert.Contains(t, store.resets, pending)
	assert.Equal(t, int64(1), recorder.removed["refresh_tokens"])
	assert.Equal(t, int64(2), recorder.removed["password_resets"])
}
