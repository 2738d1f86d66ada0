package geocoder

import (
	"github.com/fse-compliance/internal/config"
	"github.com/fse-compliance/internal/domain/repository"
	"github.com/fse-compliance/internal/infrastructure/mapbox"
	"github.com/fse-compliance/internal/infrastructure/nominatim"
	"github.com/fse-compliance/internal/pkg/metrics"
	"github.com/fse-compliance/internal/repository/cache"
	"go.uber.org/zap"
)

// New выбирает провайдера обратного геокодирования по конфигурации и
// оборачивает его кешем адресов. cacheRepo может быть nil - тогда без кеша.
func New(
	cfg *config.Config,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	m *metrics.Metrics,
) repository.GeocodeRepository {
	var provider repository.GeocodeRepository
	switch cfg.Geocoder.Provider {
	case config.GeocoderMapbox:
		provider = mapbox.NewMapboxClient(&cfg.Mapbox, logger)
	default:
		provider = nominatim.NewNominatimClient(&cfg.Geocoder, logger)
	}

	logger.Info("Geocoder initialized",
		zap.String("provider", cfg.Geocoder.Provider),
		zap.Duration("cache_ttl", cfg.Geocoder.CacheTTL),
		zap.Bool("cached", cacheRepo != nil && cfg.Geocoder.CacheTTL > 0))

	if cacheRepo == nil {
		return provider
	}
	return cache.NewCachedGeocoder(provider, cacheRepo, cfg.Geocoder.CacheTTL, logger, m)
}
