package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/spf13/viper"
)

const (
	GeocoderNominatim = "nominatim"
	GeocoderMapbox    = "mapbox"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	Worker     WorkerConfig
	Geocoder   GeocoderConfig
	Mapbox     MapboxConfig
	Classifier ClassifierConfig
	Region     RegionConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled         bool
	ConsumerGroup   string
	MaxRetries      int
	ShutdownTimeout time.Duration
}

// GeocoderConfig - внешний сервис обратного геокодирования
type GeocoderConfig struct {
	Provider       string
	BaseURL        string
	UserAgent      string
	Email          string
	RequestTimeout int // seconds
	CacheTTL       time.Duration
}

type MapboxConfig struct {
	AccessToken    string
	BaseURL        string
	RequestTimeout int // seconds
}

// ClassifierConfig - пакетный режим запросов к геокодеру
type ClassifierConfig struct {
	BatchSize     int
	BatchCooldown time.Duration
	LookupTimeout time.Duration
}

// RegionConfig - целевая юрисдикция и запасной прямоугольник
type RegionConfig struct {
	Province string
	Country  string
	Aliases  []string
	MinLat   float64
	MaxLat   float64
	MinLon   float64
	MaxLon   float64
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile читает конфигурацию из указанного .env файла и окружения.
// Отсутствие файла не ошибка: значения берутся из окружения и умолчаний.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	// 0 - допустимое значение (повторы выключены), поэтому умолчание задаётся через viper
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("WORKER_SHUTDOWN_TIMEOUT", 30)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("API_HOST"),
			Port:        v.GetInt("API_PORT"),
			Env:         v.GetString("API_ENV"),
			CORSOrigins: parseList(v.GetString("API_CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:         v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:   v.GetString("WORKER_CONSUMER_GROUP"),
			MaxRetries:      v.GetInt("WORKER_MAX_RETRIES"),
			ShutdownTimeout: time.Duration(v.GetInt("WORKER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Geocoder: GeocoderConfig{
			Provider:       strings.ToLower(strings.TrimSpace(v.GetString("GEOCODER_PROVIDER"))),
			BaseURL:        v.GetString("GEOCODER_BASE_URL"),
			UserAgent:      v.GetString("GEOCODER_USER_AGENT"),
			Email:          v.GetString("GEOCODER_EMAIL"),
			RequestTimeout: v.GetInt("GEOCODER_REQUEST_TIMEOUT"),
			CacheTTL:       time.Duration(v.GetInt("GEOCODER_CACHE_TTL")) * time.Second,
		},
		Mapbox: MapboxConfig{
			AccessToken:    v.GetString("MAPBOX_ACCESS_TOKEN"),
			BaseURL:        v.GetString("MAPBOX_BASE_URL"),
			RequestTimeout: v.GetInt("GEOCODER_REQUEST_TIMEOUT"),
		},
		Classifier: ClassifierConfig{
			BatchSize:     v.GetInt("CLASSIFIER_BATCH_SIZE"),
			BatchCooldown: time.Duration(v.GetInt("CLASSIFIER_BATCH_COOLDOWN")) * time.Millisecond,
			LookupTimeout: time.Duration(v.GetInt("CLASSIFIER_LOOKUP_TIMEOUT")) * time.Millisecond,
		},
		Region: RegionConfig{
			Province: strings.TrimSpace(v.GetString("REGION_PROVINCE")),
			Country:  strings.TrimSpace(v.GetString("REGION_COUNTRY")),
			Aliases:  parseList(v.GetString("REGION_ALIASES")),
			MinLat:   v.GetFloat64("REGION_MIN_LAT"),
			MaxLat:   v.GetFloat64("REGION_MAX_LAT"),
			MinLon:   v.GetFloat64("REGION_MIN_LON"),
			MaxLon:   v.GetFloat64("REGION_MAX_LON"),
		},
	}

	// Set default values if not provided
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "fse-validation-workers"
	}
	if cfg.Geocoder.Provider == "" {
		cfg.Geocoder.Provider = GeocoderNominatim
	}
	if cfg.Geocoder.BaseURL == "" {
		cfg.Geocoder.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Geocoder.UserAgent == "" {
		cfg.Geocoder.UserAgent = "fse-compliance/1.0"
	}
	if cfg.Geocoder.RequestTimeout == 0 {
		cfg.Geocoder.RequestTimeout = 10
	}
	if cfg.Mapbox.BaseURL == "" {
		cfg.Mapbox.BaseURL = "https://api.mapbox.com"
	}
	if cfg.Mapbox.RequestTimeout == 0 {
		cfg.Mapbox.RequestTimeout = cfg.Geocoder.RequestTimeout
	}
	if cfg.Classifier.BatchSize == 0 {
		cfg.Classifier.BatchSize = 3
	}
	if cfg.Classifier.BatchCooldown == 0 {
		cfg.Classifier.BatchCooldown = time.Second
	}
	if cfg.Classifier.LookupTimeout == 0 {
		cfg.Classifier.LookupTimeout = 5 * time.Second
	}
	if cfg.Region.Province == "" {
		cfg.Region.Province = "British Columbia"
	}
	if cfg.Region.Country == "" {
		cfg.Region.Country = "Canada"
	}
	if cfg.Region.MinLat == 0 && cfg.Region.MaxLat == 0 && cfg.Region.MinLon == 0 && cfg.Region.MaxLon == 0 {
		cfg.Region.MinLat = 48.3
		cfg.Region.MaxLat = 60.0
		cfg.Region.MinLon = -139.06
		cfg.Region.MaxLon = -114.03
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	switch c.Geocoder.Provider {
	case GeocoderNominatim:
	case GeocoderMapbox:
		if c.Mapbox.AccessToken == "" {
			return fmt.Errorf("MAPBOX_ACCESS_TOKEN is required for mapbox geocoder")
		}
	default:
		return fmt.Errorf("unknown geocoder provider: %q", c.Geocoder.Provider)
	}
	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("worker max retries must not be negative, got %d", c.Worker.MaxRetries)
	}
	if c.Classifier.BatchSize < 1 {
		return fmt.Errorf("classifier batch size must be positive, got %d", c.Classifier.BatchSize)
	}
	if c.Region.MinLat > c.Region.MaxLat || c.Region.MinLon > c.Region.MaxLon {
		return fmt.Errorf("region bounds are inverted")
	}
	return nil
}

// ToDomain преобразует конфигурацию региона в доменную модель
func (r RegionConfig) ToDomain() domain.Region {
	return domain.Region{
		Province: r.Province,
		Country:  r.Country,
		Aliases:  r.Aliases,
		Bounds: domain.BoundingBox{
			MinLat: r.MinLat,
			MinLon: r.MinLon,
			MaxLat: r.MaxLat,
			MaxLon: r.MaxLon,
		},
	}
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
