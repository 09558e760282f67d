package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"partshop/pkg/metrics"
	"partshop/shop-service/internal/app/shop/entity"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName        = "shop-service"
	categoriesCacheKey = "categories:all"
	categoriesPrefix   = "categories"
)

type redisCategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCategoryCache(client *redis.Client, ttl time.Duration) CategoryCache {
	return &redisCategoryCache{client: client, ttl: ttl}
}

// Get возвращает список категорий из кеша; второй результат false при промахе
func (c *redisCategoryCache) Get(ctx context.Context) ([]entity.Category, bool, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := c.client.Get(ctx, categoriesCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, categoriesPrefix)
			return nil, false, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, false, fmt.Errorf("failed to get categories from cache: %w", err)
	}

	var categories []entity.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	metrics.RecordCacheHit(serviceName, categoriesPrefix)
	return categories, true, nil
}

func (c *redisCategoryCache) Set(ctx context.Context, categories []entity.Category) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := c.client.Set(ctx, categoriesCacheKey, data, c.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set categories in cache: %w", err)
	}
	return nil
}

func (c *redisCategoryCache) Invalidate(ctx context.Context) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := c.client.Del(ctx, categoriesCacheKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to invalidate categories cache: %w", err)
	}
	return nil
}
