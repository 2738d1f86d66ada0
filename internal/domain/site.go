package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SiteKeyPrecision - число знаков после запятой при округлении координат площадки
const SiteKeyPrecision = 6

// SiteKey - канонический ключ физической площадки: "lat,lon" с округлением до 6 знаков
type SiteKey string

// InvalidSiteKey объединяет записи без валидных координат
const InvalidSiteKey SiteKey = "invalid"

// NewSiteKey строит ключ площадки для координаты
func NewSiteKey(c Coordinate) SiteKey {
	if !c.Valid {
		return InvalidSiteKey
	}
	return SiteKey(fmt.Sprintf("%.6f,%.6f", roundTo(c.Lat), roundTo(c.Lon)))
}

// Coordinate разбирает ключ обратно в координату
func (k SiteKey) Coordinate() (Coordinate, bool) {
	if k == InvalidSiteKey {
		return Coordinate{}, false
	}
	latStr, lonStr, ok := strings.Cut(string(k), ",")
	if !ok {
		return Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return Coordinate{}, false
	}
	if !ValidCoordinates(lat, lon) {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lon: lon, Valid: true}, true
}

func (k SiteKey) String() string {
	return string(k)
}

func roundTo(v float64) float64 {
	p := math.Pow10(SiteKeyPrecision)
	r := math.Round(v*p) / p
	// -0.000000 и 0.000000 должны давать один ключ
	if r == 0 {
		return 0
	}
	return r
}

// ClassificationSource - происхождение классификации площадки
type ClassificationSource string

const (
	SourceService  ClassificationSource = "service"
	SourceFallback ClassificationSource = "fallback"
	SourceInvalid  ClassificationSource = "invalid"
)

// ClassificationResult - результат геофенсинга одной площадки
type ClassificationResult struct {
	SiteKey      SiteKey              `json:"site_key"`
	InsideRegion bool                 `json:"inside_region"`
	Source       ClassificationSource `json:"source"`
	Province     string               `json:"province,omitempty"`
	Country      string               `json:"country,omitempty"`
}

// Address - ответ сервиса обратного геокодирования
type Address struct {
	Province string `json:"province"`
	Country  string `json:"country"`
}

// Region - целевая юрисдикция: провинция/штат + страна и запасной прямоугольник
type Region struct {
	Province string      `json:"province"`
	Country  string      `json:"country"`
	Aliases  []string    `json:"aliases,omitempty"`
	Bounds   BoundingBox `json:"bounds"`
}

// MatchesAddress проверяет принадлежность адреса региону без учёта регистра.
// Провинция совпадает точно (имя или алиас) либо содержит имя целевой провинции,
// как в ответах с уровнем округа ("Capital Regional District, British Columbia").
func (r Region) MatchesAddress(addr Address) bool {
	country := strings.TrimSpace(addr.Country)
	province := strings.TrimSpace(addr.Province)
	if country == "" || province == "" {
		return false
	}
	if !strings.EqualFold(country, strings.TrimSpace(r.Country)) {
		return false
	}

	target := strings.TrimSpace(r.Province)
	if strings.EqualFold(province, target) {
		return true
	}
	for _, alias := range r.Aliases {
		if strings.EqualFold(province, strings.TrimSpace(alias)) {
			return true
		}
	}
	return target != "" && strings.Contains(strings.ToLower(province), strings.ToLower(target))
}
