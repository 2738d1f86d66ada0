package handler

import (
	"context"
	"sync"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/pkg/errors"
	"github.com/fse-compliance/internal/pkg/utils"
	"github.com/fse-compliance/internal/pkg/validator"
	"github.com/fse-compliance/internal/usecase"
	"github.com/fse-compliance/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ValidationHandler обрабатывает запросы на валидацию оборудования FSE
type ValidationHandler struct {
	validationUC *usecase.ValidationUseCase
	reportUC     *usecase.ReportValidationUseCase
	logger       *zap.Logger

	// прогоны отчётов переживают HTTP запрос, но не сервер
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewValidationHandler создает новый экземпляр ValidationHandler
func NewValidationHandler(
	validationUC *usecase.ValidationUseCase,
	reportUC *usecase.ReportValidationUseCase,
	logger *zap.Logger,
) *ValidationHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &ValidationHandler{
		validationUC: validationUC,
		reportUC:     reportUC,
		logger:       logger,
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// RunValidation godoc
// @Summary Run FSE validation
// @Description Синхронно классифицирует площадки и ищет пересечения периодов поставки для переданных строк
// @Tags Validation
// @Accept json
// @Produce json
// @Param request body dto.ValidationRunRequest true "Строки оборудования"
// @Success 200 {object} utils.SuccessResponse{data=dto.ValidationRunResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/validation/run [post]
func (h *ValidationHandler) RunValidation(c *fiber.Ctx) error {
	startTime := time.Now()

	var req dto.ValidationRunRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn("Failed to parse request body", zap.Error(err))
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if len(req.Rows) == 0 {
		return utils.SendError(c, errors.ErrEmptyBatch)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, invalidRequest(err))
	}

	asOf := dto.ResolveAsOf(req.AsOf, h.validationUC.Now())
	result, err := h.validationUC.RunAsOf(c.UserContext(), req.Rows, asOf)
	if err != nil {
		h.logger.Error("Validation run failed", zap.Int("rows", len(req.Rows)), zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.NewValidationRunResponse(result), &utils.Meta{
		Total:    len(result.Records),
		TimeMSec: float64(time.Since(startTime).Microseconds()) / 1000,
	})
}

// StartReportValidation godoc
// @Summary Start report validation
// @Description Запускает асинхронный прогон для отчёта. Повторный запуск делает предыдущий результат устаревшим.
// @Description Если строки не переданы в теле, они читаются из БД.
// @Tags Validation
// @Accept json
// @Produce json
// @Param report_id path string true "ID отчёта (UUID)"
// @Param request body dto.ReportValidationRequest false "Строки оборудования"
// @Success 202 {object} utils.SuccessResponse{data=dto.ReportValidationAccepted}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/reports/{report_id}/validation [post]
func (h *ValidationHandler) StartReportValidation(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("report_id"))
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidReportID)
	}

	var req dto.ReportValidationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
		}
		if err := validator.Validate(&req); err != nil {
			return utils.SendError(c, invalidRequest(err))
		}
	}

	rows, err := h.reportUC.ResolveRows(c.UserContext(), reportID, req.Rows)
	if err != nil {
		return utils.SendError(c, err)
	}

	asOf := dto.ResolveAsOf(req.AsOf, h.reportUC.Now())
	run := h.reportUC.Begin(reportID)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if _, _, err := h.reportUC.Execute(h.baseCtx, run, rows, asOf); err != nil {
			h.logger.Error("Report validation failed",
				zap.String("report_id", reportID.String()),
				zap.Uint64("generation", run.Generation),
				zap.Error(err))
		}
	}()

	return utils.SendAccepted(c, dto.ReportValidationAccepted{
		ReportID:   reportID,
		Generation: run.Generation,
		State:      domain.RunStateLoading,
	}, &utils.Meta{Total: len(rows), Generation: run.Generation})
}

// GetReportValidation godoc
// @Summary Get report validation status
// @Description Возвращает состояние и результат последнего прогона для отчёта
// @Tags Validation
// @Produce json
// @Param report_id path string true "ID отчёта (UUID)"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReportValidationStatus}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/reports/{report_id}/validation [get]
func (h *ValidationHandler) GetReportValidation(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("report_id"))
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidReportID)
	}

	snap := h.reportUC.Snapshot(reportID)
	if snap.State == domain.RunStateIdle {
		return utils.SendError(c, errors.ErrNoValidationRun)
	}

	return utils.SendSuccess(c, dto.NewReportValidationStatus(reportID, snap), &utils.Meta{
		Generation: snap.Generation,
	})
}

// Shutdown отменяет незавершённые прогоны и ждёт их остановки
func (h *ValidationHandler) Shutdown(ctx context.Context) error {
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait ждёт завершения всех запущенных прогонов
func (h *ValidationHandler) Wait() {
	h.wg.Wait()
}

func invalidRequest(err error) *errors.AppError {
	return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
		"validation": err.Error(),
	})
}
