package usecase

import (
	"context"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportValidationUseCase связывает конвейер с RunTracker для прогонов по отчётам:
// новый прогон делает предыдущий устаревшим, результат устаревшего отбрасывается.
type ReportValidationUseCase struct {
	pipeline *ValidationUseCase
	tracker  *RunTracker
	logger   *zap.Logger
}

func NewReportValidationUseCase(pipeline *ValidationUseCase, tracker *RunTracker, logger *zap.Logger) *ReportValidationUseCase {
	return &ReportValidationUseCase{
		pipeline: pipeline,
		tracker:  tracker,
		logger:   logger,
	}
}

// ResolveRows возвращает переданные строки или читает строки отчёта из БД
func (uc *ReportValidationUseCase) ResolveRows(
	ctx context.Context,
	reportID uuid.UUID,
	rows []domain.SupplyRow,
) ([]domain.SupplyRow, error) {
	if len(rows) > 0 {
		return rows, nil
	}
	return uc.pipeline.LoadReportRows(ctx, reportID)
}

// Now возвращает "сегодня" по часам конвейера
func (uc *ReportValidationUseCase) Now() time.Time {
	return uc.pipeline.Now()
}

// Begin регистрирует новый прогон для отчёта
func (uc *ReportValidationUseCase) Begin(reportID uuid.UUID) Run {
	return uc.tracker.Begin(reportID.String())
}

// Retry переоткрывает упавший прогон для повторной попытки; false для устаревшего прогона
func (uc *ReportValidationUseCase) Retry(run Run) bool {
	return uc.tracker.Retry(run)
}

// Execute выполняет прогон и фиксирует результат в трекере.
// current=false означает, что за время прогона отчёт перезапустили и результат отброшен.
func (uc *ReportValidationUseCase) Execute(
	ctx context.Context,
	run Run,
	rows []domain.SupplyRow,
	asOf time.Time,
) (result *domain.ValidationResult, current bool, err error) {
	log := uc.logger.With(
		zap.String("report_id", run.Key),
		zap.Uint64("generation", run.Generation))

	result, err = uc.pipeline.RunAsOf(ctx, rows, asOf)
	if err != nil {
		current = uc.tracker.Fail(run, err)
		if !current {
			log.Info("Stale validation run failed, ignoring", zap.Error(err))
		}
		return nil, current, err
	}

	current = uc.tracker.Complete(run, result)
	if !current {
		log.Info("Stale validation run completed, result discarded",
			zap.String("run_id", result.RunID.String()))
	}
	return result, current, nil
}

// Snapshot возвращает состояние последнего прогона отчёта
func (uc *ReportValidationUseCase) Snapshot(reportID uuid.UUID) domain.RunSnapshot {
	return uc.tracker.Snapshot(reportID.String())
}
