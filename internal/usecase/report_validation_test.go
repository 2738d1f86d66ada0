package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fse-compliance/internal/domain"
	apperrors "github.com/fse-compliance/internal/pkg/errors"
	"github.com/fse-compliance/internal/usecase"
)

func TestReportValidationUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	reportID := uuid.New()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.SupplyRow{
		row("a", "REG1", "SN1", 49.2827, -123.1207, "2024-01-01", "2024-01-31"),
		row("b", "REG1", "SN1", 49.2827, -123.1207, "2024-01-31", "2024-02-28"),
	}

	t.Run("completed run is visible", func(t *testing.T) {
		uc := usecase.NewReportValidationUseCase(newTestPipeline(stubGeocoder(), nil), usecase.NewRunTracker(), zap.NewNop())

		run := uc.Begin(reportID)
		assert.Equal(t, domain.RunStateLoading, uc.Snapshot(reportID).State)

		result, current, err := uc.Execute(ctx, run, rows, asOf)
		require.NoError(t, err)
		assert.True(t, current)

		snap := uc.Snapshot(reportID)
		assert.Equal(t, domain.RunStateCompleted, snap.State)
		assert.Same(t, result, snap.Result)
		assert.Equal(t, 2, snap.Result.Stats.Overlapping)
	})

	t.Run("stale run does not overwrite newer result", func(t *testing.T) {
		uc := usecase.NewReportValidationUseCase(newTestPipeline(stubGeocoder(), nil), usecase.NewRunTracker(), zap.NewNop())

		stale := uc.Begin(reportID)
		fresh := uc.Begin(reportID)

		freshResult, current, err := uc.Execute(ctx, fresh, rows[:1], asOf)
		require.NoError(t, err)
		require.True(t, current)

		_, current, err = uc.Execute(ctx, stale, rows, asOf)
		require.NoError(t, err)
		assert.False(t, current)

		snap := uc.Snapshot(reportID)
		assert.Same(t, freshResult, snap.Result)
		assert.Equal(t, 0, snap.Result.Stats.Overlapping)
	})

	t.Run("orchestration failure flips state to error", func(t *testing.T) {
		geo := &MockGeocodeRepository{}
		geo.On("ReverseGeocode", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { panic("boom") })
		uc := usecase.NewReportValidationUseCase(newTestPipeline(geo, nil), usecase.NewRunTracker(), zap.NewNop())

		run := uc.Begin(reportID)
		_, current, err := uc.Execute(ctx, run, rows, asOf)

		assert.ErrorIs(t, err, apperrors.ErrClassificationFailed)
		assert.True(t, current)
		snap := uc.Snapshot(reportID)
		assert.Equal(t, domain.RunStateError, snap.State)
		assert.NotEmpty(t, snap.Error)
	})
}

func TestReportValidationUseCase_ResolveRows(t *testing.T) {
	ctx := context.Background()
	reportID := uuid.New()

	repo := &MockSupplyRowRepository{}
	stored := []domain.SupplyRow{row("db", "REG1", "SN1", 49, -123, "2024-01-01", "2024-01-31")}
	repo.On("ListByReport", ctx, reportID).Return(stored, nil).Once()

	uc := usecase.NewReportValidationUseCase(newTestPipeline(stubGeocoder(), repo), usecase.NewRunTracker(), zap.NewNop())

	given := []domain.SupplyRow{row("body", "REG1", "SN1", 49, -123, "2024-01-01", "2024-01-31")}
	got, err := uc.ResolveRows(ctx, reportID, given)
	require.NoError(t, err)
	assert.Equal(t, given, got)

	got, err = uc.ResolveRows(ctx, reportID, nil)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	repo.AssertExpectations(t)
}
