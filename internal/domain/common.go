package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BoundingBox - прямоугольник по осям координат (замкнутый)
type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

// Contains проверяет попадание точки в прямоугольник, границы включительно
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Valid проверяет, что прямоугольник не вырожден и лежит в допустимом диапазоне
func (b BoundingBox) Valid() bool {
	return ValidCoordinates(b.MinLat, b.MinLon) && ValidCoordinates(b.MaxLat, b.MaxLon) &&
		b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon
}

// ValidCoordinates - широта в [-90, 90], долгота в [-180, 180], без NaN/Inf
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// FlexFloat принимает число, числовую строку, пустую строку или null.
// Set=false означает, что значение отсутствует или не распознано.
type FlexFloat struct {
	Value float64
	Set   bool
}

// NewFlexFloat создает заполненное значение
func NewFlexFloat(v float64) FlexFloat {
	return FlexFloat{Value: v, Set: true}
}

// ParseFlexFloat разбирает строковое представление координаты
func ParseFlexFloat(s string) FlexFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return FlexFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return FlexFloat{}
	}
	return FlexFloat{Value: v, Set: true}
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*f = FlexFloat{}
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flex float: %w", err)
		}
		// Нечисловая строка не ошибка: координата просто считается невалидной
		*f = ParseFlexFloat(s)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("flex float: %w", err)
	}
	*f = FlexFloat{Value: v, Set: true}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
