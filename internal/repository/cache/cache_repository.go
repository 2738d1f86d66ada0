package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const addressKeyPrefix = "geocode:address:"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

// AddressKey - ключ кеша ответа геокодера для площадки
func AddressKey(site domain.SiteKey) string {
	return addressKeyPrefix + site.String()
}

// GetAddress получает ответ геокодера из кеша; (nil, nil) при промахе
func (r *cacheRepository) GetAddress(ctx context.Context, site domain.SiteKey) (*domain.Address, error) {
	data, err := r.Get(ctx, AddressKey(site))
	if err != nil || data == nil {
		return nil, err
	}

	var addr domain.Address
	if err := json.Unmarshal(data, &addr); err != nil {
		r.logger.Warn("Corrupted cached address, dropping",
			zap.String("site_key", site.String()),
			zap.Error(err))
		_ = r.Delete(ctx, AddressKey(site))
		return nil, nil
	}

	return &addr, nil
}

// SetAddress сохраняет ответ геокодера
func (r *cacheRepository) SetAddress(ctx context.Context, site domain.SiteKey, addr *domain.Address, ttl time.Duration) error {
	data, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}

	return r.Set(ctx, AddressKey(site), data, ttl)
}
