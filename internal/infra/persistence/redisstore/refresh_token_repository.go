package redisstore

import (
	"context"
	"strconv"
	"time"

	"authcore/internal/domain/entity"
	"authcore/internal/domain/repository"
	"authcore/internal/errors"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const defaultKeyPrefix = "authcore:"

const (
	fieldID        = "id"
	fieldUserID    = "user_id"
	fieldExpiresAt = "expires_at"
	fieldCreatedAt = "created_at"
)

// rotateScript swaps the old token for the new one if and only if the old one
// is still live. Redis runs scripts atomically.
//
// KEYS: old token key, new token key, user index key
// ARGV: old hash, new hash, now ms, id, user id, expires ms, created ms
var rotateScript = redis.NewScript(`
local exp = redis.call('HGET', KEYS[1], 'expires_at')
if not exp then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('SREM', KEYS[3], ARGV[1])
if tonumber(exp) <= tonumber(ARGV[3]) then
	return 0
end
redis.call('HSET', KEYS[2], 'id', ARGV[4], 'user_id', ARGV[5], 'expires_at', ARGV[6], 'created_at', ARGV[7])
redis.call('PEXPIREAT', KEYS[2], ARGV[6])
redis.call('SADD', KEYS[3], ARGV[2])
return 1
`)

// deleteUserScript removes every token listed in a user's index together with the index.
var deleteUserScript = redis.NewScript(`
local hashes = redis.call('SMEMBERS', KEYS[1])
local removed = 0
for _, h in ipairs(hashes) do
	removed = removed + redis.call('DEL', ARGV[1] .. h)
end
redis.call('DEL', KEYS[1])
return removed
`)

type refreshTokenRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRefreshTokenRepository creates the Redis-backed refresh token store.
func NewRefreshTokenRepository(client *redis.Client, keyPrefix string) repository.RefreshTokenRepository {
	return newRefreshTokenRepository(client, keyPrefix, time.Now)
}

func newRefreshTokenRepository(client *redis.Client, keyPrefix string, now func() time.Time) *refreshTokenRepository {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}

	return &refreshTokenRepository{client: client, prefix: keyPrefix, now: now}
}

func (repo *refreshTokenRepository) tokenPrefix() string {
	return repo.prefix + "rt:"
}

func (repo *refreshTokenRepository) tokenKey(hash string) string {
	return repo.tokenPrefix() + hash
}

func (repo *refreshTokenRepository) userKey(userID uuid.UUID) string {
	return repo.prefix + "rt-user:" + userID.String()
}

func (repo *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = repo.now().UTC()
	}

	key := repo.tokenKey(token.TokenHash)
	_, err := repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldID, token.ID.String(),
			fieldUserID, token.UserID.String(),
			fieldExpiresAt, token.ExpiresAt.UnixMilli(),
			fieldCreatedAt, token.CreatedAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, token.ExpiresAt)
		pipe.SAdd(ctx, repo.userKey(token.UserID), token.TokenHash)

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to create refresh token")
	}

	return nil
}

func (repo *refreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	values, err := repo.client.HGetAll(ctx, repo.tokenKey(tokenHash)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to find refresh token by hash")
	}
	if len(values) == 0 {
		return nil, repository.ErrRefreshTokenNotFound
	}

	token, err := decodeToken(tokenHash, values)
	if err != nil {
		return nil, err
	}
	if token.IsExpired(repo.now()) {
		return nil, repository.ErrRefreshTokenExpired
	}

	return token, nil
}

func (repo *refreshTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	key := repo.tokenKey(tokenHash)

	userID, err := repo.client.HGet(ctx, key, fieldUserID).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to load refresh token owner")
	}

	_, err = repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
			pipe.SRem(ctx, repo.userKey(parsed), tokenHash)
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete refresh token by hash")
	}

	return nil
}

func (repo *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	removed, err := deleteUserScript.Run(ctx, repo.client, []string{repo.userKey(userID)}, repo.tokenPrefix()).Int64()
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete refresh tokens by user id")
	}

	return removed, nil
}

// DeleteExpired prunes index entries whose token keys Redis already expired.
func (repo *refreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64

	iter := repo.client.Scan(ctx, 0, repo.prefix+"rt-user:*", 100).Iterator()
	for iter.Next(ctx) {
		userKey := iter.Val()

		hashes, err := repo.client.SMembers(ctx, userKey).Result()
		if err != nil {
			return removed, errors.Wrap(err, "failed to list user refresh tokens")
		}

		for _, hash := range hashes {
			exists, err := repo.client.Exists(ctx, repo.tokenKey(hash)).Result()
			if err != nil {
				return removed, errors.Wrap(err, "failed to check refresh token")
			}
			if exists > 0 {
				continue
			}

			if err := repo.client.SRem(ctx, userKey, hash).Err(); err != nil {
				return removed, errors.Wrap(err, "failed to prune refresh token index")
			}
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		return removed, errors.Wrap(err, "failed to scan refresh token indexes")
	}

	return removed, nil
}

func (repo *refreshTokenRepository) Rotate(ctx context.Context, oldHash string, next *entity.RefreshToken) error {
	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}
	now := repo.now()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now.UTC()
	}

	keys := []string{repo.tokenKey(oldHash), repo.tokenKey(next.TokenHash), repo.userKey(next.UserID)}
	swapped, err := rotateScript.Run(ctx, repo.client, keys,
		oldHash,
		next.TokenHash,
		now.UnixMilli(),
		next.ID.String(),
		next.UserID.String(),
		next.ExpiresAt.UnixMilli(),
		next.CreatedAt.UnixMilli(),
	).Int()
	if err != nil {
		return errors.Wrap(err, "failed to rotate refresh token")
	}
	if swapped == 0 {
		return repository.ErrRefreshTokenNotFound
	}

	return nil
}

func decodeToken(tokenHash string, values map[string]string) (*entity.RefreshToken, error) {
	id, err := uuid.Parse(values[fieldID])
	if err != nil {
		return nil, errors.Wrap(err, "corrupt refresh token id")
	}
	userID, err := uuid.Parse(values[fieldUserID])
	if err != nil {
		return nil, errors.Wrap(err, "corrupt refresh token owner")
	}
	expiresAt, err := strconv.ParseInt(values[fieldExpiresAt], 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "corrupt refresh token expiry")
	}
	createdAt, _ := strconv.ParseInt(values[fieldCreatedAt], 10, 64)

	return &entity.RefreshToken{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: time.UnixMilli(expiresAt).UTC(),
		CreatedAt: time.UnixMilli(createdAt).UTC(),
	}, nil
}
