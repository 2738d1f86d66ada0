package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SupplyFixture - строка fuel_supply_equipment для тестов; nil означает NULL
type SupplyFixture struct {
	ID           uuid.UUID
	FSEID        *string
	Registration string
	Serial       string
	City         *string
	Latitude     *float64
	Longitude    *float64
	SupplyFrom   *string
	SupplyTo     *string
	CreatedAt    time.Time
}

// InsertSupplyRows вставляет строки оборудования в отчёт
func InsertSupplyRows(ctx context.Context, db *sql.DB, reportID uuid.UUID, rows []SupplyFixture) error {
	query := `
		INSERT INTO fuel_supply_equipment (
			id, compliance_report_id, fse_id, registration_number, serial_number,
			city, latitude, longitude, supply_from, supply_to, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, $10::date, $11)
	`

	for i, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now().Add(time.Duration(i) * time.Millisecond)
		}
		_, err := db.ExecContext(ctx, query,
			r.ID, reportID, r.FSEID, r.Registration, r.Serial,
			r.City, r.Latitude, r.Longitude, r.SupplyFrom, r.SupplyTo, r.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert supply row %d: %w", i, err)
		}
	}

	return nil
}

func Ptr[T any](v T) *T {
	return &v
}
