package dto

import (
	"time"

	"github.com/fse-compliance/internal/domain"
)

// ValidationRunRequest - синхронный прогон валидации над переданными строками
type ValidationRunRequest struct {
	Rows []domain.SupplyRow `json:"rows" validate:"required,min=1,max=5000,dive"`
	// AsOf подставляется вместо пустых и битых дат; по умолчанию текущая дата
	AsOf string `json:"as_of,omitempty" validate:"omitempty,isodate"`
}

// ReportValidationRequest - асинхронный прогон для отчёта.
// Если строки не переданы, они читаются из БД.
type ReportValidationRequest struct {
	Rows []domain.SupplyRow `json:"rows,omitempty" validate:"omitempty,max=5000,dive"`
	AsOf string             `json:"as_of,omitempty" validate:"omitempty,isodate"`
}

// ResolveAsOf возвращает дату as_of или fallback, если она не задана
func ResolveAsOf(asOf string, fallback time.Time) time.Time {
	if t, ok := domain.ParseDate(asOf); ok {
		return t
	}
	return fallback
}
