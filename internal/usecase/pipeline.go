package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	"github.com/fse-compliance/internal/pkg/errors"
	"github.com/fse-compliance/internal/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidationUseCase - конвейер валидации: нормализация строк, группировка по площадкам,
// классификация, поиск пересечений и сводная статистика. Состояния между прогонами не хранит.
type ValidationUseCase struct {
	classifier *GeofenceClassifier
	supplyRepo repository.SupplyRowRepository
	now        func() time.Time
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewValidationUseCase(
	classifier *GeofenceClassifier,
	supplyRepo repository.SupplyRowRepository,
	logger *zap.Logger,
	m *metrics.Metrics,
) *ValidationUseCase {
	return &ValidationUseCase{
		classifier: classifier,
		supplyRepo: supplyRepo,
		now:        time.Now,
		logger:     logger,
		metrics:    m,
	}
}

// SetClock подменяет источник "сегодня" для подстановки пустых дат
func (uc *ValidationUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// Now возвращает "сегодня" по часам use case
func (uc *ValidationUseCase) Now() time.Time {
	return uc.now()
}

// Run выполняет конвейер над пачкой строк, "сегодня" берётся из часов use case
func (uc *ValidationUseCase) Run(ctx context.Context, rows []domain.SupplyRow) (*domain.ValidationResult, error) {
	return uc.RunAsOf(ctx, rows, uc.now())
}

// RunAsOf выполняет конвейер, подставляя asOf вместо пустых и битых дат.
// Единственная возвращаемая ошибка - ErrClassificationFailed при сбое оркестрации.
func (uc *ValidationUseCase) RunAsOf(
	ctx context.Context,
	rows []domain.SupplyRow,
	asOf time.Time,
) (*domain.ValidationResult, error) {
	started := time.Now()
	runID := uuid.New()
	log := uc.logger.With(zap.String("run_id", runID.String()))

	records := uc.normalize(rows, asOf, log)
	groups := GroupBySite(records)
	keys := SiteKeys(groups)

	log.Info("Validation run started",
		zap.Int("records", len(records)),
		zap.Int("sites", len(keys)))

	classifications, err := uc.classifier.Classify(ctx, keys)
	if err != nil {
		log.Error("Classification run failed", zap.Error(err))
		uc.metrics.ObserveRun(string(domain.RunStateError), time.Since(started), len(records), 0)
		return nil, errors.ErrClassificationFailed.Wrap(err)
	}

	overlaps := DetectOverlaps(records)
	stats := Summarize(records, classifications, overlaps)

	results := make([]domain.RecordResult, 0, len(records))
	for _, rec := range records {
		key := rec.SiteKey()
		results = append(results, domain.RecordResult{
			Record:         rec,
			SiteKey:        key,
			Classification: classifications[key],
			Overlaps:       overlaps[rec.InstanceID],
		})
	}

	finished := time.Now()
	uc.metrics.ObserveRun(string(domain.RunStateCompleted), finished.Sub(started), stats.Total, stats.Overlapping)

	log.Info("Validation run completed",
		zap.Int("total", stats.Total),
		zap.Int("overlapping", stats.Overlapping),
		zap.Int("invalid_location", stats.InvalidLocation),
		zap.Duration("duration", finished.Sub(started)))

	return &domain.ValidationResult{
		RunID:           runID,
		Records:         results,
		Classifications: classifications,
		Stats:           stats,
		StartedAt:       started,
		FinishedAt:      finished,
	}, nil
}

// LoadReportRows читает строки отчёта из хранилища
func (uc *ValidationUseCase) LoadReportRows(ctx context.Context, reportID uuid.UUID) ([]domain.SupplyRow, error) {
	if uc.supplyRepo == nil {
		return nil, errors.ErrInternalServer.Wrap(fmt.Errorf("supply row repository is not configured"))
	}

	rows, err := uc.supplyRepo.ListByReport(ctx, reportID)
	if err != nil {
		uc.logger.Error("Failed to load report rows",
			zap.String("report_id", reportID.String()),
			zap.Error(err))
		return nil, errors.ErrDatabaseError.Wrap(err)
	}
	if len(rows) == 0 {
		return nil, errors.ErrReportNotFound.WithDetails(map[string]interface{}{
			"report_id": reportID.String(),
		})
	}
	return rows, nil
}

// normalize приводит строки к записям; отсутствующие и повторные InstanceID
// заменяются детерминированными
func (uc *ValidationUseCase) normalize(rows []domain.SupplyRow, asOf time.Time, log *zap.Logger) []domain.SupplyRecord {
	records := make([]domain.SupplyRecord, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for i, row := range rows {
		if _, dup := seen[row.InstanceID]; dup || row.InstanceID == "" {
			if dup {
				log.Warn("Duplicate instance id, deriving a new one",
					zap.String("instance_id", row.InstanceID),
					zap.Int("row", i))
			}
			row.InstanceID = domain.RowInstanceID(i, row)
		}
		seen[row.InstanceID] = struct{}{}

		rec := domain.NewSupplyRecord(row, asOf)
		if len(rec.DateIssues) > 0 {
			log.Debug("Row dates normalized",
				zap.String("instance_id", rec.InstanceID),
				zap.Any("issues", rec.DateIssues))
		}
		records = append(records, rec)
	}
	return records
}
