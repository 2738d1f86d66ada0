package cache

import (
	"context"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	"github.com/fse-compliance/internal/pkg/metrics"
	"go.uber.org/zap"
)

// CachedGeocoder кеширует сырые ответы геокодера по ключу площадки.
// Кешируются только адреса: решение inside/outside каждый прогон принимается заново.
// Ошибки геокодера не кешируются, ошибки кеша не мешают запросу к геокодеру.
type CachedGeocoder struct {
	next    repository.GeocodeRepository
	cache   repository.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCachedGeocoder оборачивает геокодер; при ttl <= 0 кеш выключен и возвращается next
func NewCachedGeocoder(
	next repository.GeocodeRepository,
	cache repository.CacheRepository,
	ttl time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) repository.GeocodeRepository {
	if ttl <= 0 || cache == nil {
		return next
	}
	return &CachedGeocoder{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

func (g *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	site := domain.NewSiteKey(domain.Coordinate{Lat: lat, Lon: lon, Valid: domain.ValidCoordinates(lat, lon)})
	if site == domain.InvalidSiteKey {
		return g.next.ReverseGeocode(ctx, lat, lon)
	}

	cached, err := g.cache.GetAddress(ctx, site)
	if err != nil {
		g.logger.Warn("Geocode cache read failed", zap.String("site_key", site.String()), zap.Error(err))
	}
	if cached != nil {
		g.metrics.ObserveGeocoder("cache_hit")
		return cached, nil
	}

	addr, err := g.next.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if err := g.cache.SetAddress(ctx, site, addr, g.ttl); err != nil {
		g.logger.Warn("Geocode cache write failed", zap.String("site_key", site.String()), zap.Error(err))
	}
	return addr, nil
}
