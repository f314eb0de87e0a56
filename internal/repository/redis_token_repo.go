package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
)

// RedisTokenRepo implements domain.TokenRepository using Redis.
type RedisTokenRepo struct {
	client *redis.Client
}

// NewRedisTokenRepo creates a new repository instance.
func NewRedisTokenRepo(client *redis.Client) *RedisTokenRepo {
	return &RedisTokenRepo{client: client}
}

func refreshKey(token string) string {
	return "gate:refresh:" + token
}

// StoreRefreshToken saves an opaque token in Redis with a TTL.
// The key pattern is "gate:refresh:<token>" -> value "<username>".
func (r *RedisTokenRepo) StoreRefreshToken(ctx context.Context, username string, token string, ttl time.Duration) error {
	if err := r.client.Set(ctx, refreshKey(token), username, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token in redis: %w", err)
	}
	return nil
}

// GetUsernameByRefreshToken returns the user a live refresh token was issued to.
func (r *RedisTokenRepo) GetUsernameByRefreshToken(ctx context.Context, token string) (string, error) {
	username, err := r.client.Get(ctx, refreshKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrRefreshTokenInvalid
		}
		return "", fmt.Errorf("redis error: %w", err)
	}
	return username, nil
}

// DeleteRefreshToken removes a token immediately. Used on logout and rotation.
func (r *RedisTokenRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	return r.client.Del(ctx, refreshKey(token)).Err()
}
