package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fse-compliance/internal/config"
	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	"go.uber.org/zap"
)

// zoom=5 - уровень штата/провинции, город и улица не нужны
const reverseZoom = "5"

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	email      string
	logger     *zap.Logger
}

// NewNominatimClient создает клиент обратного геокодирования OpenStreetMap Nominatim.
// Политика использования Nominatim требует осмысленный User-Agent.
func NewNominatimClient(cfg *config.GeocoderConfig, logger *zap.Logger) repository.GeocodeRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		email:     cfg.Email,
		logger:    logger,
	}
}

type reverseResponse struct {
	Address struct {
		State         string `json:"state"`
		Province      string `json:"province"`
		StateDistrict string `json:"state_district"`
		Country       string `json:"country"`
	} `json:"address"`
	Error string `json:"error,omitempty"`
}

// ReverseGeocode возвращает провинцию/штат и страну для точки
func (c *client) ReverseGeocode(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("zoom", reverseZoom)
	query.Set("addressdetails", "1")
	query.Set("accept-language", "en")
	if c.email != "" {
		query.Set("email", c.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("Nominatim returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("nominatim error: status %d", resp.StatusCode)
	}

	var payload reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("nominatim: %s", payload.Error)
	}

	province := firstNonEmpty(payload.Address.State, payload.Address.Province, payload.Address.StateDistrict)
	if province == "" || payload.Address.Country == "" {
		return nil, fmt.Errorf("nominatim returned no state/country for %f,%f", lat, lon)
	}

	c.logger.Debug("Nominatim reverse geocode",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.String("province", province),
		zap.String("country", payload.Address.Country))

	return &domain.Address{
		Province: province,
		Country:  payload.Address.Country,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
