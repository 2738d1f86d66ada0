package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fse-compliance/internal/config"
	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	"go.uber.org/zap"
)

type client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *zap.Logger
}

// NewMapboxClient создает клиент обратного геокодирования Mapbox Geocoding v5
func NewMapboxClient(cfg *config.MapboxConfig, logger *zap.Logger) repository.GeocodeRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		logger:      logger,
	}
}

type featureCollection struct {
	Features []feature `json:"features"`
	Message  string    `json:"message,omitempty"`
}

type feature struct {
	ID        string        `json:"id"`
	PlaceType []string      `json:"place_type"`
	Text      string        `json:"text"`
	Context   []contextItem `json:"context,omitempty"`
}

type contextItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (f feature) is(placeType string) bool {
	for _, t := range f.PlaceType {
		if t == placeType {
			return true
		}
	}
	return false
}

// ReverseGeocode возвращает регион и страну для точки
func (c *client) ReverseGeocode(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%f,%f.json", c.baseURL, lon, lat)

	query := url.Values{}
	query.Set("types", "region,country")
	query.Set("access_token", c.accessToken)

	c.logger.Debug("Calling Mapbox reverse geocoding",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("Mapbox API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("mapbox API error: status %d", resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	addr := &domain.Address{}
	for _, f := range fc.Features {
		switch {
		case f.is("region") && addr.Province == "":
			addr.Province = f.Text
			for _, item := range f.Context {
				if strings.HasPrefix(item.ID, "country.") && addr.Country == "" {
					addr.Country = item.Text
				}
			}
		case f.is("country"):
			addr.Country = f.Text
		}
	}

	if addr.Province == "" || addr.Country == "" {
		return nil, fmt.Errorf("mapbox returned no region/country for %f,%f", lat, lon)
	}

	return addr, nil
}
