package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type supplyRowRepository struct {
	db     *DB
	logger *zap.Logger
}

func NewSupplyRowRepository(db *DB) repository.SupplyRowRepository {
	return &supplyRowRepository{
		db:     db,
		logger: db.logger,
	}
}

// supplyRowModel - строка таблицы; координаты могут быть NULL
type supplyRowModel struct {
	domain.SupplyRow
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`
}

func (m supplyRowModel) toDomain() domain.SupplyRow {
	row := m.SupplyRow
	if m.Latitude.Valid {
		row.Latitude = domain.NewFlexFloat(m.Latitude.Float64)
	}
	if m.Longitude.Valid {
		row.Longitude = domain.NewFlexFloat(m.Longitude.Float64)
	}
	return row
}

// ListByReport возвращает строки оборудования отчёта в порядке ввода.
// Даты отдаются строками YYYY-MM-DD, NULL превращается в пустую строку.
func (r *supplyRowRepository) ListByReport(ctx context.Context, reportID uuid.UUID) ([]domain.SupplyRow, error) {
	query := `
		SELECT
			id::text                                       AS instance_id,
			COALESCE(fse_id, '')                           AS id,
			COALESCE(display_name, '')                     AS display_name,
			registration_number,
			serial_number,
			COALESCE(street_address, '')                   AS street_address,
			COALESCE(city, '')                             AS city,
			COALESCE(postal_code, '')                      AS postal_code,
			latitude,
			longitude,
			COALESCE(to_char(supply_from, 'YYYY-MM-DD'), '') AS supply_from,
			COALESCE(to_char(supply_to, 'YYYY-MM-DD'), '')   AS supply_to
		FROM fuel_supply_equipment
		WHERE compliance_report_id = $1
		ORDER BY created_at, id
	`

	var models []supplyRowModel
	if err := r.db.SelectContext(ctx, &models, query, reportID); err != nil {
		r.logger.Error("Failed to list supply rows",
			zap.String("report_id", reportID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("list supply rows: %w", err)
	}

	rows := make([]domain.SupplyRow, 0, len(models))
	for _, m := range models {
		rows = append(rows, m.toDomain())
	}

	r.logger.Debug("Supply rows loaded",
		zap.String("report_id", reportID.String()),
		zap.Int("count", len(rows)))

	return rows, nil
}
