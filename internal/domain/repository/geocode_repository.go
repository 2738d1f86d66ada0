package repository

import (
	"context"

	"github.com/fse-compliance/internal/domain"
)

// GeocodeRepository - порт внешнего сервиса обратного геокодирования.
// Любая ошибка трактуется вызывающим кодом как мягкий отказ.
type GeocodeRepository interface {
	// ReverseGeocode возвращает провинцию/штат и страну для координаты
	ReverseGeocode(ctx context.Context, lat, lon float64) (*domain.Address, error)
}
