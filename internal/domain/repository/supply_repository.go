package repository

import (
	"context"

	"github.com/fse-compliance/internal/domain"
	"github.com/google/uuid"
)

// SupplyRowRepository - источник строк оборудования отчёта
type SupplyRowRepository interface {
	// ListByReport возвращает все строки оборудования отчёта о соответствии
	ListByReport(ctx context.Context, reportID uuid.UUID) ([]domain.SupplyRow, error)
}
