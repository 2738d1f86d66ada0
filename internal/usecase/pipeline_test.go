package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	apperrors "github.com/fse-compliance/internal/pkg/errors"
	"github.com/fse-compliance/internal/usecase"
)

func newTestPipeline(geo *MockGeocodeRepository, repo *MockSupplyRowRepository) *usecase.ValidationUseCase {
	logger := zap.NewNop()
	runner := usecase.NewBatchRunner(3, time.Second, (&fakeSleep{}).Sleep, logger)
	classifier := usecase.NewGeofenceClassifier(geo, britishColumbia, runner, time.Second, logger, nil)

	var supplyRepo repository.SupplyRowRepository
	if repo != nil {
		supplyRepo = repo
	}
	uc := usecase.NewValidationUseCase(classifier, supplyRepo, logger, nil)
	uc.SetClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) })
	return uc
}

// stubGeocoder answers by longitude: west of -115 is British Columbia
func stubGeocoder() *MockGeocodeRepository {
	geo := &MockGeocodeRepository{}
	geo.On("ReverseGeocode", mock.Anything, mock.Anything, mock.MatchedBy(func(lon float64) bool { return lon < -115 })).
		Return(&domain.Address{Province: "British Columbia", Country: "Canada"}, nil)
	geo.On("ReverseGeocode", mock.Anything, mock.Anything, mock.MatchedBy(func(lon float64) bool { return lon >= -115 })).
		Return(&domain.Address{Province: "Alberta", Country: "Canada"}, nil)
	return geo
}

func findRecord(t *testing.T, result *domain.ValidationResult, instanceID string) domain.RecordResult {
	t.Helper()
	for _, rr := range result.Records {
		if rr.Record.InstanceID == instanceID {
			return rr
		}
	}
	t.Fatalf("record %s not found", instanceID)
	return domain.RecordResult{}
}

func TestValidationUseCase_Run(t *testing.T) {
	ctx := context.Background()

	rows := []domain.SupplyRow{
		row("r1", "REG1", "SN1", 49.2827, -123.1207, "2024-01-01", "2024-01-31"),
		row("r2", "REG1", "SN1", 51.0447, -114.0719, "2024-01-15", "2024-02-15"),
		row("r3", "REG1", "SN1", 91, -123, "2024-01-20", "2024-01-25"),
		row("r4", "REG2", "SN2", 49.2827, -123.1207, "2024-01-01", "2024-01-10"),
		row("r5", "REG2", "SN2", 49.2827, -123.1207, "2024-01-11", "2024-01-20"),
	}

	geo := stubGeocoder()
	result, err := newTestPipeline(geo, nil).Run(ctx, rows)
	require.NoError(t, err)

	require.Len(t, result.Records, 5)
	assert.NotEqual(t, uuid.Nil, result.RunID)
	for i, rr := range result.Records {
		assert.Equal(t, rows[i].InstanceID, rr.Record.InstanceID, "input order is kept")
	}

	r1 := findRecord(t, result, "r1")
	assert.Equal(t, domain.SourceService, r1.Classification.Source)
	assert.True(t, r1.Classification.InsideRegion)
	assert.Len(t, r1.Overlaps, 2)

	r2 := findRecord(t, result, "r2")
	assert.False(t, r2.Classification.InsideRegion)

	r3 := findRecord(t, result, "r3")
	assert.Equal(t, domain.InvalidSiteKey, r3.SiteKey)
	assert.Equal(t, domain.SourceInvalid, r3.Classification.Source)
	assert.Len(t, r3.Overlaps, 2, "invalid location still takes part in overlap detection")

	assert.Empty(t, findRecord(t, result, "r4").Overlaps)
	assert.Empty(t, findRecord(t, result, "r5").Overlaps)

	assert.Equal(t, domain.AggregateStats{
		Total:                      5,
		Overlapping:                3,
		NonOverlapping:             2,
		InsideRegionOverlapping:    1,
		OutsideRegionOverlapping:   1,
		InvalidLocationOverlapping: 1,
		InsideRegion:               3,
		OutsideRegion:              1,
		InvalidLocation:            1,
	}, result.Stats)

	// r1, r4, r5 share one site; r3 is never sent to the geocoder
	geo.AssertNumberOfCalls(t, "ReverseGeocode", 2)
	assert.Len(t, result.Classifications, 3)
}

func TestValidationUseCase_Run_SharedSiteClassifiedOnce(t *testing.T) {
	geo := &MockGeocodeRepository{}
	geo.On("ReverseGeocode", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.Address{Province: "British Columbia", Country: "Canada"}, nil).Once()

	rows := []domain.SupplyRow{
		row("a", "REG1", "SN1", 49.2827, -123.1207, "2024-01-01", "2024-01-31"),
		row("b", "REG2", "SN2", 49.2827, -123.1207, "2024-01-01", "2024-01-31"),
		row("c", "REG3", "SN3", 49.28270000001, -123.1207, "2024-01-01", "2024-01-31"),
	}

	result, err := newTestPipeline(geo, nil).Run(context.Background(), rows)
	require.NoError(t, err)

	geo.AssertNumberOfCalls(t, "ReverseGeocode", 1)
	for _, rr := range result.Records {
		assert.Equal(t, domain.SiteKey("49.282700,-123.120700"), rr.SiteKey)
		assert.Equal(t, domain.SourceService, rr.Classification.Source)
		assert.True(t, rr.Classification.InsideRegion)
	}
}

func TestValidationUseCase_Run_FallbackWhenGeocoderFails(t *testing.T) {
	geo := &MockGeocodeRepository{}
	geo.On("ReverseGeocode", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("rate limited"))

	result, err := newTestPipeline(geo, nil).Run(context.Background(), []domain.SupplyRow{
		row("a", "REG1", "SN1", 49.2827, -123.1207, "2024-01-01", "2024-01-31"),
	})
	require.NoError(t, err)

	rr := result.Records[0]
	assert.Equal(t, domain.SourceFallback, rr.Classification.Source)
	assert.True(t, rr.Classification.InsideRegion)
	assert.Equal(t, 1, result.Stats.InsideRegion)
}

func TestValidationUseCase_Run_Idempotent(t *testing.T) {
	rows := []domain.SupplyRow{
		row("", "REG1", "SN1", 49.2827, -123.1207, "2024-01-01", "2024-01-31"),
		row("", "REG1", "SN1", 49.2827, -123.1207, "2024-01-15", ""),
		row("", "REG1", "SN1", 53.5461, -113.4938, "bad date", "2024-02-01"),
		row("", "", "", 0, 0, "2024-01-01", "2024-01-02"),
	}

	uc := newTestPipeline(stubGeocoder(), nil)
	first, err := uc.Run(context.Background(), rows)
	require.NoError(t, err)
	second, err := uc.Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Classifications, second.Classifications)
	assert.Equal(t, first.Stats, second.Stats)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestValidationUseCase_Run_DateDefaulting(t *testing.T) {
	uc := newTestPipeline(stubGeocoder(), nil)

	result, err := uc.RunAsOf(context.Background(), []domain.SupplyRow{
		row("a", "REG1", "SN1", 49.2827, -123.1207, "", ""),
		row("b", "REG1", "SN1", 49.2827, -123.1207, "2024-03-01", "2024-03-01"),
	}, time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	a := findRecord(t, result, "a")
	assert.Equal(t, day("2024-03-01"), a.Record.ActiveFrom)
	assert.Equal(t, []domain.DateIssue{domain.DateIssueFromDefaulted, domain.DateIssueToDefaulted}, a.Record.DateIssues)
	assert.Len(t, a.Overlaps, 1)
	assert.Equal(t, 1, result.Stats.DefaultedDates)
}

func TestValidationUseCase_Run_DuplicateInstanceIDs(t *testing.T) {
	result, err := newTestPipeline(stubGeocoder(), nil).Run(context.Background(), []domain.SupplyRow{
		row("dup", "REG1", "SN1", 49.2827, -123.1207, "2024-01-01", "2024-01-31"),
		row("dup", "REG1", "SN1", 49.2827, -123.1207, "2024-01-10", "2024-01-20"),
	})
	require.NoError(t, err)

	assert.Equal(t, "dup", result.Records[0].Record.InstanceID)
	assert.NotEqual(t, "dup", result.Records[1].Record.InstanceID)
	assert.Len(t, result.Records[0].Overlaps, 1)
	assert.Equal(t, 2, result.Stats.Overlapping)
}

func TestValidationUseCase_Run_OrchestrationFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(stubGeocoder(), nil).Run(ctx, []domain.SupplyRow{
		row("a", "REG1", "SN1", 49.2827, -123.1207, "2024-01-01", "2024-01-31"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrClassificationFailed)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.True(t, appErr.Retryable)
}

func TestValidationUseCase_LoadReportRows(t *testing.T) {
	ctx := context.Background()
	reportID := uuid.New()

	t.Run("rows found", func(t *testing.T) {
		repo := &MockSupplyRowRepository{}
		rows := []domain.SupplyRow{row("a", "REG1", "SN1", 49, -123, "2024-01-01", "2024-01-31")}
		repo.On("ListByReport", ctx, reportID).Return(rows, nil)

		got, err := newTestPipeline(stubGeocoder(), repo).LoadReportRows(ctx, reportID)

		require.NoError(t, err)
		assert.Equal(t, rows, got)
		repo.AssertExpectations(t)
	})

	t.Run("empty report", func(t *testing.T) {
		repo := &MockSupplyRowRepository{}
		repo.On("ListByReport", ctx, reportID).Return([]domain.SupplyRow{}, nil)

		_, err := newTestPipeline(stubGeocoder(), repo).LoadReportRows(ctx, reportID)

		assert.ErrorIs(t, err, apperrors.ErrReportNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		repo := &MockSupplyRowRepository{}
		repo.On("ListByReport", ctx, reportID).Return(nil, errors.New("connection reset"))

		_, err := newTestPipeline(stubGeocoder(), repo).LoadReportRows(ctx, reportID)

		assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
	})

	t.Run("no repository", func(t *testing.T) {
		_, err := newTestPipeline(stubGeocoder(), nil).LoadReportRows(ctx, reportID)
		assert.ErrorIs(t, err, apperrors.ErrInternalServer)
	})
}
