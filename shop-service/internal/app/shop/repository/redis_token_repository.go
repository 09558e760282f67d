package repository

import (
	"context"
	"fmt"
	"time"

	"partshop/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "revoked_token:"

type redisTokenRepository struct {
	client *redis.Client
}

// NewRedisTokenRepository создает черный список access токенов в Redis
func NewRedisTokenRepository(client *redis.Client) TokenRepository {
	return &redisTokenRepository{client: client}
}

// Revoke помещает jti токена в черный список до момента истечения токена
func (r *redisTokenRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Токен уже истек, хранить его не нужно
		return nil
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, revokedTokenPrefix+tokenID, "1", ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *redisTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpExists)
	defer timer.ObserveDuration()

	exists, err := r.client.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpExists)
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return exists > 0, nil
}
