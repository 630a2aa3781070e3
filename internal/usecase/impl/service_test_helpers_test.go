package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"authcore/config"
	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/repository"
	"authcore/internal/domain/service"
	"authcore/internal/infra/auth"
	mockSvc "authcore/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:      bcrypt.MinCost,
			Issuer:          "authcore-test",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			ResetTokenTTL:   time.Hour,
			SingleSession:   true,
		},
		PasswordPolicy: &config.PasswordPolicyConfig{MinLength: 8},
	}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.SecretKey.Refresh = "test_refresh_secret_key_very_long_for_testing"

	return cfg
}

// memStore backs every in-memory repository so transactions can share state.
type memStore struct {
	mu      sync.Mutex
	now     func() time.Time
	users   map[uuid.UUID]*entity.User
	tokens  map[string]*entity.RefreshToken
	resets  map[uuid.UUID]*entity.PasswordReset
	failTx  error
	txCount int

	failTokenCreate error
	failRevoke      error
}

func newMemStore() *memStore {
	return &memStore{
		now:    time.Now,
		users:  map[uuid.UUID]*entity.User{},
		tokens: map[string]*entity.RefreshToken{},
		resets: map[uuid.UUID]*entity.PasswordReset{},
	}
}

func (s *memStore) tokensOf(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, token := range s.tokens {
		if token.UserID == userID {
			count++
		}
	}

	return count
}

// --- transaction manager ---

type memTxManager struct {
	store *memStore
}

func (tm *memTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	tm.store.mu.Lock()
	tm.store.txCount++
	failTx := tm.store.failTx
	tm.store.mu.Unlock()

	if failTx != nil {
		return failTx
	}

	snapshot := tm.store.snapshot()
	if err := fn(&memFactory{store: tm.store}); err != nil {
		tm.store.restore(snapshot)

		return err
	}

	return nil
}

type memSnapshot struct {
	users  map[uuid.UUID]entity.User
	tokens map[string]entity.RefreshToken
	resets map[uuid.UUID]entity.PasswordReset
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		users:  make(map[uuid.UUID]entity.User, len(s.users)),
		tokens: make(map[string]entity.RefreshToken, len(s.tokens)),
		resets: make(map[uuid.UUID]entity.PasswordReset, len(s.resets)),
	}
	for id, user := range s.users {
		snap.users[id] = *user
	}
	for hash, token := range s.tokens {
		snap.tokens[hash] = *token
	}
	for id, reset := range s.resets {
		snap.resets[id] = *reset
	}

	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[uuid.UUID]*entity.User, len(snap.users))
	for id, user := range snap.users {
		s.users[id] = &user
	}
	s.tokens = make(map[string]*entity.RefreshToken, len(snap.tokens))
	for hash, token := range snap.tokens {
		s.tokens[hash] = &token
	}
	s.resets = make(map[uuid.UUID]*entity.PasswordReset, len(snap.resets))
	for id, reset := range snap.resets {
		s.resets[id] = &reset
	}
}

type memFactory struct {
	store *memStore
}

func (f *memFactory) NewUserRepository() repository.UserRepository {
	return &memUserRepo{store: f.store}
}

func (f *memFactory) NewPasswordResetRepository() repository.PasswordResetRepository {
	return &memResetRepo{store: f.store}
}

func (f *memFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return &memRefreshRepo{store: f.store}
}

func (f *memFactory) NewEquipmentRepository() repository.EquipmentRepository {
	return nil
}

func (f *memFactory) NewMealRepository() repository.MealRepository {
	return nil
}

// --- users ---

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Email == entity.NormalizeEmail(email) {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("duplicate email")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = r.store.now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.store.users[user.ID] = &copied

	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash

	return nil
}

func (r *memUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.IsActive = active

	return nil
}

// --- refresh tokens ---

type memRefreshRepo struct {
	store *memStore
}

func (r *memRefreshRepo) Create(_ context.Context, token *entity.RefreshToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failTokenCreate != nil {
		return r.store.failTokenCreate
	}

	copied := *token
	r.store.tokens[token.TokenHash] = &copied

	return nil
}

func (r *memRefreshRepo) FindByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if token.IsExpired(r.store.now()) {
		return nil, repository.ErrRefreshTokenExpired
	}
	copied := *token

	return &copied, nil
}

func (r *memRefreshRepo) DeleteByHash(_ context.Context, tokenHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.tokens, tokenHash)

	return nil
}

func (r *memRefreshRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failRevoke != nil {
		return 0, r.store.failRevoke
	}

	var removed int64
	for hash, token := range r.store.tokens {
		if token.UserID == userID {
			delete(r.store.tokens, hash)
			removed++
		}
	}

	return removed, nil
}

func (r *memRefreshRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for hash, token := range r.store.tokens {
		if token.IsExpired(r.store.now()) {
			delete(r.store.tokens, hash)
			removed++
		}
	}

	return removed, nil
}

func (r *memRefreshRepo) Rotate(_ context.Context, oldHash string, next *entity.RefreshToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	old, ok := r.store.tokens[oldHash]
	if !ok || old.IsExpired(r.store.now()) {
		return repository.ErrRefreshTokenNotFound
	}
	delete(r.store.tokens, oldHash)
	copied := *next
	r.store.tokens[next.TokenHash] = &copied

	return nil
}

// --- password resets ---

type memResetRepo struct {
	store *memStore
}

func (r *memResetRepo) Create(_ context.Context, reset *entity.PasswordReset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if reset.ID == uuid.Nil {
		reset.ID = uuid.New()
	}
	copied := *reset
	r.store.resets[reset.ID] = &copied

	return nil
}

func (r *memResetRepo) SupersedeByUserID(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, reset := range r.store.resets {
		if reset.UserID == userID && reset.UsedAt == nil {
			delete(r.store.resets, id)
		}
	}

	return nil
}

func (r *memResetRepo) Consume(_ context.Context, tokenHash string, now time.Time) (*entity.PasswordReset, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, reset := range r.store.resets {
		if reset.TokenHash == tokenHash && reset.UsedAt == nil && now.Before(reset.ExpiresAt) {
			usedAt := now
			reset.UsedAt = &usedAt
			copied := *reset

			return &copied, nil
		}
	}

	return nil, repository.ErrPasswordResetNotFound
}

func (r *memResetRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var removed int64
	for id, reset := range r.store.resets {
		if reset.UsedAt != nil || !before.Before(reset.ExpiresAt) {
			delete(r.store.resets, id)
			removed++
		}
	}

	return removed, nil
}

// --- metrics ---

type recordedEvent struct {
	event   string
	outcome string
}

type fakeEventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *fakeEventRecorder) RecordAuthEvent(event, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, recordedEvent{event: event, outcome: outcome})
}

func (r *fakeEventRecorder) count(event, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, e := range r.events {
		if e.event == event && e.outcome == outcome {
			count++
		}
	}

	return count
}

// --- fixture ---

type authFixture struct {
	cfg      *config.Config
	store    *memStore
	notifier *mockSvc.MockPasswordResetNotifier
	events   *fakeEventRecorder
	tokens   service.TokenService
	service  *authService
}

func newAuthFixture(t *testing.T, mutate ...func(*config.Config)) *authFixture {
	t.Helper()

	cfg := newTestConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	store := newMemStore()
	notifier := mockSvc.NewMockPasswordResetNotifier(t)
	events := &fakeEventRecorder{}

	srv := newAuthService(AuthServiceParams{
		TxManager:        &memTxManager{store: store},
		UserRepo:         &memUserRepo{store: store},
		RefreshTokenRepo: &memRefreshRepo{store: store},
		Hasher:           auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		TokenService:     tokenService,
		ResetTokens:      auth.NewResetTokenGenerator(),
		Notifier:         notifier,
		Events:           events,
		Config:           cfg,
		Logger:           newDiscardLogger(),
	}, func() time.Time { return store.now() })

	return &authFixture{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		events:   events,
		tokens:   tokenService,
		service:  srv,
	}
}
