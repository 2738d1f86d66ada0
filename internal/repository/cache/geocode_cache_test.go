package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/repository/cache"
)

type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetAddress(ctx context.Context, key domain.SiteKey) (*domain.Address, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *MockCacheRepository) SetAddress(ctx context.Context, key domain.SiteKey, addr *domain.Address, ttl time.Duration) error {
	return m.Called(ctx, key, addr, ttl).Error(0)
}

type MockGeocodeRepository struct {
	mock.Mock
}

func (m *MockGeocodeRepository) ReverseGeocode(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func TestCachedGeocoder(t *testing.T) {
	ctx := context.Background()
	site := domain.SiteKey("49.282700,-123.120700")
	bc := &domain.Address{Province: "British Columbia", Country: "Canada"}

	t.Run("cache hit skips geocoder", func(t *testing.T) {
		store := &MockCacheRepository{}
		next := &MockGeocodeRepository{}
		store.On("GetAddress", ctx, site).Return(bc, nil)

		geo := cache.NewCachedGeocoder(next, store, time.Hour, zap.NewNop(), nil)
		addr, err := geo.ReverseGeocode(ctx, 49.2827, -123.1207)

		require.NoError(t, err)
		assert.Equal(t, bc, addr)
		next.AssertNotCalled(t, "ReverseGeocode", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("miss stores address", func(t *testing.T) {
		store := &MockCacheRepository{}
		next := &MockGeocodeRepository{}
		store.On("GetAddress", ctx, site).Return(nil, nil)
		next.On("ReverseGeocode", ctx, 49.2827, -123.1207).Return(bc, nil)
		store.On("SetAddress", ctx, site, bc, time.Hour).Return(nil)

		geo := cache.NewCachedGeocoder(next, store, time.Hour, zap.NewNop(), nil)
		addr, err := geo.ReverseGeocode(ctx, 49.2827, -123.1207)

		require.NoError(t, err)
		assert.Equal(t, bc, addr)
		store.AssertExpectations(t)
		next.AssertExpectations(t)
	})

	t.Run("geocoder errors are not cached", func(t *testing.T) {
		store := &MockCacheRepository{}
		next := &MockGeocodeRepository{}
		store.On("GetAddress", ctx, site).Return(nil, nil)
		next.On("ReverseGeocode", ctx, 49.2827, -123.1207).Return(nil, errors.New("timeout"))

		geo := cache.NewCachedGeocoder(next, store, time.Hour, zap.NewNop(), nil)
		_, err := geo.ReverseGeocode(ctx, 49.2827, -123.1207)

		assert.Error(t, err)
		store.AssertNotCalled(t, "SetAddress", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("broken cache falls through", func(t *testing.T) {
		store := &MockCacheRepository{}
		next := &MockGeocodeRepository{}
		store.On("GetAddress", ctx, site).Return(nil, errors.New("connection refused"))
		next.On("ReverseGeocode", ctx, 49.2827, -123.1207).Return(bc, nil)
		store.On("SetAddress", ctx, site, bc, time.Hour).Return(errors.New("connection refused"))

		geo := cache.NewCachedGeocoder(next, store, time.Hour, zap.NewNop(), nil)
		addr, err := geo.ReverseGeocode(ctx, 49.2827, -123.1207)

		require.NoError(t, err)
		assert.Equal(t, bc, addr)
	})

	t.Run("zero ttl disables cache", func(t *testing.T) {
		next := &MockGeocodeRepository{}
		geo := cache.NewCachedGeocoder(next, &MockCacheRepository{}, 0, zap.NewNop(), nil)
		assert.Same(t, next, geo)
	})
}
