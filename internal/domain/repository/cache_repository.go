package repository

import (
	"context"
	"time"

	"github.com/fse-compliance/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetAddress получает закешированный ответ геокодера для площадки
	GetAddress(ctx context.Context, key domain.SiteKey) (*domain.Address, error)

	// SetAddress сохраняет ответ геокодера для площадки
	SetAddress(ctx context.Context, key domain.SiteKey, addr *domain.Address, ttl time.Duration) error
}
