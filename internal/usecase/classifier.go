package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	"github.com/fse-compliance/internal/pkg/metrics"
	"go.uber.org/zap"
)

// GeofenceClassifier определяет, находится ли площадка внутри целевого региона.
// Сначала спрашивает геокодер, при любой его ошибке переходит на проверку
// по прямоугольнику региона. Ошибки геокодера наружу не возвращаются.
type GeofenceClassifier struct {
	geocoder      repository.GeocodeRepository
	region        domain.Region
	runner        *BatchRunner
	lookupTimeout time.Duration
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

func NewGeofenceClassifier(
	geocoder repository.GeocodeRepository,
	region domain.Region,
	runner *BatchRunner,
	lookupTimeout time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *GeofenceClassifier {
	if runner == nil {
		runner = NewBatchRunner(3, time.Second, nil, logger)
	}
	return &GeofenceClassifier{
		geocoder:      geocoder,
		region:        region,
		runner:        runner,
		lookupTimeout: lookupTimeout,
		logger:        logger,
		metrics:       m,
	}
}

// Region возвращает целевой регион классификатора
func (c *GeofenceClassifier) Region() domain.Region {
	return c.region
}

// Classify классифицирует каждую уникальную площадку ровно один раз.
// Ошибка возвращается только при сбое самой оркестрации батчей
// (отмена контекста, паника в задаче).
func (c *GeofenceClassifier) Classify(
	ctx context.Context,
	siteKeys []domain.SiteKey,
) (map[domain.SiteKey]domain.ClassificationResult, error) {
	results := make(map[domain.SiteKey]domain.ClassificationResult, len(siteKeys))

	type site struct {
		key   domain.SiteKey
		coord domain.Coordinate
	}
	dispatch := make([]site, 0, len(siteKeys))
	seen := make(map[domain.SiteKey]struct{}, len(siteKeys))

	for _, key := range siteKeys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		coord, ok := key.Coordinate()
		if !ok {
			results[key] = domain.ClassificationResult{
				SiteKey: key,
				Source:  domain.SourceInvalid,
			}
			c.metrics.ObserveClassification(string(domain.SourceInvalid), false)
			continue
		}
		dispatch = append(dispatch, site{key: key, coord: coord})
	}

	c.logger.Info("Classifying sites",
		zap.Int("sites", len(seen)),
		zap.Int("dispatched", len(dispatch)),
		zap.Int("batch_size", c.runner.BatchSize()))

	var mu sync.Mutex
	err := c.runner.Run(ctx, len(dispatch), func(ctx context.Context, i int) {
		s := dispatch[i]
		result := c.classifySite(ctx, s.key, s.coord)

		mu.Lock()
		results[s.key] = result
		mu.Unlock()
	})
	if err != nil {
		return nil, fmt.Errorf("classification run: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("classification run: %w", err)
	}

	return results, nil
}

func (c *GeofenceClassifier) classifySite(
	ctx context.Context,
	key domain.SiteKey,
	coord domain.Coordinate,
) domain.ClassificationResult {
	// офлайн режим: сразу прямоугольник, без предупреждений на каждую площадку
	if c.geocoder == nil {
		return c.fallback(key, coord)
	}

	addr, err := c.lookup(ctx, coord)
	if err != nil {
		c.logger.Warn("Reverse geocoding failed, using bounding box",
			zap.String("site_key", key.String()),
			zap.Error(err))
		return c.fallback(key, coord)
	}

	inside := c.region.MatchesAddress(*addr)
	c.logger.Debug("Site classified",
		zap.String("site_key", key.String()),
		zap.String("province", addr.Province),
		zap.String("country", addr.Country),
		zap.Bool("inside_region", inside))
	c.metrics.ObserveClassification(string(domain.SourceService), inside)

	return domain.ClassificationResult{
		SiteKey:      key,
		InsideRegion: inside,
		Source:       domain.SourceService,
		Province:     addr.Province,
		Country:      addr.Country,
	}
}

func (c *GeofenceClassifier) fallback(key domain.SiteKey, coord domain.Coordinate) domain.ClassificationResult {
	inside := c.region.Bounds.Contains(coord.Lat, coord.Lon)
	c.logger.Debug("Site classified by bounding box",
		zap.String("site_key", key.String()),
		zap.Bool("inside_region", inside))
	c.metrics.ObserveClassification(string(domain.SourceFallback), inside)
	return domain.ClassificationResult{
		SiteKey:      key,
		InsideRegion: inside,
		Source:       domain.SourceFallback,
	}
}

var errMalformedAddress = errors.New("geocoder returned no province or country")

func (c *GeofenceClassifier) lookup(ctx context.Context, coord domain.Coordinate) (*domain.Address, error) {
	if c.geocoder == nil {
		return nil, errors.New("no geocoder configured")
	}

	if c.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.lookupTimeout)
		defer cancel()
	}

	addr, err := c.geocoder.ReverseGeocode(ctx, coord.Lat, coord.Lon)
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		c.metrics.ObserveGeocoder("timeout")
		return nil, err
	case err != nil:
		c.metrics.ObserveGeocoder("error")
		return nil, err
	case addr == nil || strings.TrimSpace(addr.Province) == "" || strings.TrimSpace(addr.Country) == "":
		c.metrics.ObserveGeocoder("malformed")
		return nil, errMalformedAddress
	}

	c.metrics.ObserveGeocoder("ok")
	return addr, nil
}
