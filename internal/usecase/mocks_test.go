package usecase_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fse-compliance/internal/domain"
)

// MockGeocodeRepository mocks repository.GeocodeRepository
type MockGeocodeRepository struct {
	mock.Mock
}

func (m *MockGeocodeRepository) ReverseGeocode(ctx context.Context, lat, lon float64) (*domain.Address, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

// MockSupplyRowRepository mocks repository.SupplyRowRepository
type MockSupplyRowRepository struct {
	mock.Mock
}

func (m *MockSupplyRowRepository) ListByReport(ctx context.Context, reportID uuid.UUID) ([]domain.SupplyRow, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SupplyRow), args.Error(1)
}

var britishColumbia = domain.Region{
	Province: "British Columbia",
	Country:  "Canada",
	Aliases:  []string{"BC"},
	Bounds: domain.BoundingBox{
		MinLat: 48.3,
		MinLon: -139.06,
		MaxLat: 60.0,
		MaxLon: -114.03,
	},
}

func day(s string) time.Time {
	t, ok := domain.ParseDate(s)
	if !ok {
		panic("bad date " + s)
	}
	return t
}

func record(instanceID, equipmentKey, from, to string) domain.SupplyRecord {
	return domain.SupplyRecord{
		ID:           instanceID,
		InstanceID:   instanceID,
		EquipmentKey: equipmentKey,
		ActiveFrom:   day(from),
		ActiveTo:     day(to),
	}
}

func row(instanceID, reg, serial string, lat, lon float64, from, to string) domain.SupplyRow {
	return domain.SupplyRow{
		InstanceID:         instanceID,
		RegistrationNumber: reg,
		SerialNumber:       serial,
		Latitude:           domain.NewFlexFloat(lat),
		Longitude:          domain.NewFlexFloat(lon),
		SupplyFrom:         from,
		SupplyTo:           to,
	}
}
