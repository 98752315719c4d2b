package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"contenthub/internal/model"

	"github.com/go-redis/redis/v8"
)

// SettingCache is a read-through cache in front of SettingRepository.
type SettingCache interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	Set(ctx context.Context, setting *model.Setting) error
	Invalidate(ctx context.Context, key string) error
}

// TokenBlacklist records revoked tokens until they would have expired.
type TokenBlacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

const settingCacheTTL = 10 * time.Minute

type redisSettingCache struct {
	redisClient *redis.Client
}

func NewSettingCache(redisClient *redis.Client) SettingCache {
	return &redisSettingCache{redisClient: redisClient}
}

func settingKey(key string) string {
	return fmt.Sprintf("setting:%s", key)
}

// Get returns ErrNotFound on a cache miss.
func (c *redisSettingCache) Get(ctx context.Context, key string) (*model.Setting, error) {
	data, err := c.redisClient.Get(ctx, settingKey(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached setting: %w", err)
	}
	var setting model.Setting
	if err := json.Unmarshal(data, &setting); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached setting: %w", err)
	}
	return &setting, nil
}

func (c *redisSettingCache) Set(ctx context.Context, setting *model.Setting) error {
	data, err := json.Marshal(setting)
	if err != nil {
		return fmt.Errorf("failed to marshal setting: %w", err)
	}
	if err := c.redisClient.Set(ctx, settingKey(setting.Key), data, settingCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache setting: %w", err)
	}
	return nil
}

func (c *redisSettingCache) Invalidate(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, settingKey(key)).Err()
}

type redisTokenBlacklist struct {
	redisClient *redis.Client
}

func NewTokenBlacklist(redisClient *redis.Client) TokenBlacklist {
	return &redisTokenBlacklist{redisClient: redisClient}
}

func (b *redisTokenBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.redisClient.Set(ctx, "blacklist:"+token, "true", ttl).Err()
}

func (b *redisTokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := b.redisClient.Exists(ctx, "blacklist:"+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
