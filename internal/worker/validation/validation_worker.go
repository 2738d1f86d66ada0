package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/domain/repository"
	"github.com/fse-compliance/internal/pkg/errors"
	"github.com/fse-compliance/internal/usecase"
	"github.com/fse-compliance/internal/worker"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxBatchSize    = 10                     // максимум отчётов за раз
	emptyQueueSleep = 200 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second            // пауза после ошибки чтения
	retryBackoff    = 2 * time.Second
)

// ValidationWorker обрабатывает события валидации оборудования отчётов
type ValidationWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	reportUC     *usecase.ReportValidationUseCase
	consumerName string
	maxRetries   int
	sleep        usecase.SleepFunc
}

// NewValidationWorker создает новый ValidationWorker
func NewValidationWorker(
	streamRepo repository.StreamRepository,
	reportUC *usecase.ReportValidationUseCase,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *ValidationWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &ValidationWorker{
		BaseWorker:   worker.NewBaseWorker("fse-validation", consumerGroup, logger),
		streamRepo:   streamRepo,
		reportUC:     reportUC,
		consumerName: consumerName,
		maxRetries:   maxRetries,
		sleep:        usecase.ContextSleep,
	}
}

// SetSleep подменяет функцию ожидания (для тестов)
func (w *ValidationWorker) SetSleep(sleep usecase.SleepFunc) {
	w.sleep = sleep
}

// Start запускает воркер
func (w *ValidationWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting ValidationWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamValidateRequest, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// воркер останавливается и через Stop, и через ctx
	ctx, cancel := w.Context(ctx)
	defer cancel()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			if w.IsStopped() {
				logger.Info("Worker stopped")
				return nil
			}
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.ProcessBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				_ = w.sleep(ctx, errorSleep)
				continue
			}

			if processed == 0 {
				_ = w.sleep(ctx, emptyQueueSleep)
			}
		}
	}
}

// ProcessBatch читает и обрабатывает пачку сообщений.
// Возвращает количество прочитанных сообщений.
func (w *ValidationWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamValidateRequest,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil
	}

	logger.Info("Processing batch", zap.Int("message_count", len(messages)))

	messageIDs := make([]string, 0, len(messages))
	for _, msg := range messages {
		event, err := parseMessage(msg)
		if err != nil {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// ACK битое сообщение чтобы не застревало
			messageIDs = append(messageIDs, msg.ID)
			continue
		}

		if err := w.handleEvent(ctx, event); err != nil {
			// контекст отменён: сообщение останется в PEL и будет переобработано
			logger.Warn("Event left unacknowledged",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}
		messageIDs = append(messageIDs, msg.ID)
	}

	if err := w.streamRepo.AckMessages(ctx, domain.StreamValidateRequest, w.ConsumerGroup(), messageIDs); err != nil {
		logger.Error("Failed to ack messages", zap.Error(err))
	}

	logger.Info("Batch processed", zap.Int("acked", len(messageIDs)))
	return len(messages), nil
}

// handleEvent валидирует один отчёт и публикует итог.
// Ошибка возвращается только при отмене контекста.
func (w *ValidationWorker) handleEvent(ctx context.Context, event *domain.ValidateReportEvent) error {
	logger := w.Logger().With(zap.String("report_id", event.ReportID.String()))

	rows, err := w.reportUC.ResolveRows(ctx, event.ReportID, event.Rows)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Failed to resolve report rows", zap.Error(err))
		w.publish(ctx, &domain.ValidateDoneEvent{ReportID: event.ReportID, Error: err.Error()})
		return nil
	}

	run := w.reportUC.Begin(event.ReportID)
	asOf := w.reportUC.Now()

	for attempt := 0; ; attempt++ {
		result, current, err := w.reportUC.Execute(ctx, run, rows, asOf)
		if err == nil {
			if !current {
				return nil
			}
			w.publish(ctx, &domain.ValidateDoneEvent{
				ReportID:   event.ReportID,
				RunID:      result.RunID,
				Generation: run.Generation,
				Stats:      &result.Stats,
				Records:    result.Records,
			})
			logger.Info("Report validated",
				zap.Int("records", result.Stats.Total),
				zap.Int("overlapping", result.Stats.Overlapping))
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !current {
			logger.Info("Validation run superseded, dropping event", zap.Error(err))
			return nil
		}

		appErr, ok := errors.As(err)
		if ok && appErr.Retryable && attempt < w.maxRetries {
			logger.Warn("Validation failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", w.maxRetries),
				zap.Error(err))
			if err := w.sleep(ctx, retryBackoff); err != nil {
				return err
			}
			// за время паузы отчёт могли перезапустить с новыми строками
			if !w.reportUC.Retry(run) {
				logger.Info("Validation run superseded during backoff, dropping event",
					zap.Uint64("generation", run.Generation))
				return nil
			}
			continue
		}

		logger.Error("Validation failed", zap.Error(err))
		w.publish(ctx, &domain.ValidateDoneEvent{
			ReportID:   event.ReportID,
			Generation: run.Generation,
			Error:      err.Error(),
		})
		return nil
	}
}

func (w *ValidationWorker) publish(ctx context.Context, event *domain.ValidateDoneEvent) {
	if err := w.streamRepo.PublishToStream(ctx, domain.StreamValidateDone, event); err != nil {
		w.Logger().Error("Failed to publish done event",
			zap.String("report_id", event.ReportID.String()),
			zap.Error(err))
	}
}

// parseMessage парсит сообщение из стрима в ValidateReportEvent
func parseMessage(msg domain.StreamMessage) (*domain.ValidateReportEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("missing 'data' field")
	}

	var event domain.ValidateReportEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.ReportID == uuid.Nil {
		return nil, fmt.Errorf("missing report_id")
	}

	return &event, nil
}
