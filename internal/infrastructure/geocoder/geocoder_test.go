package geocoder

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fse-compliance/internal/config"
	"github.com/fse-compliance/internal/repository/cache"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Geocoder: config.GeocoderConfig{
			Provider:       config.GeocoderNominatim,
			BaseURL:        "http://localhost",
			RequestTimeout: 1,
		},
		Mapbox: config.MapboxConfig{AccessToken: "token", RequestTimeout: 1},
	}

	t.Run("without cache returns bare provider", func(t *testing.T) {
		geo := New(cfg, nil, zap.NewNop(), nil)
		_, cached := geo.(*cache.CachedGeocoder)
		assert.False(t, cached)
	})

	t.Run("mapbox provider", func(t *testing.T) {
		mb := *cfg
		mb.Geocoder.Provider = config.GeocoderMapbox
		assert.NotNil(t, New(&mb, nil, zap.NewNop(), nil))
	})

	t.Run("cache with ttl wraps provider", func(t *testing.T) {
		withTTL := *cfg
		withTTL.Geocoder.CacheTTL = time.Hour
		redisCache := cache.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), zap.NewNop())
		defer redisCache.Close()

		geo := New(&withTTL, cache.NewCacheRepository(redisCache), zap.NewNop(), nil)
		_, cached := geo.(*cache.CachedGeocoder)
		assert.True(t, cached)
	})
}
