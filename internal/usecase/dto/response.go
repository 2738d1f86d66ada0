package dto

import (
	"sort"
	"time"

	"github.com/fse-compliance/internal/domain"
	"github.com/google/uuid"
)

// ValidationRunResponse - результат прогона для презентационного слоя
type ValidationRunResponse struct {
	RunID           uuid.UUID                     `json:"run_id"`
	Stats           domain.AggregateStats         `json:"stats"`
	Records         []domain.RecordResult         `json:"records"`
	Classifications []domain.ClassificationResult `json:"classifications"`
	DurationMS      float64                       `json:"duration_ms"`
}

// NewValidationRunResponse разворачивает карту классификаций в отсортированный по ключу список
func NewValidationRunResponse(result *domain.ValidationResult) *ValidationRunResponse {
	if result == nil {
		return nil
	}

	classifications := make([]domain.ClassificationResult, 0, len(result.Classifications))
	for _, c := range result.Classifications {
		classifications = append(classifications, c)
	}
	sort.Slice(classifications, func(i, j int) bool {
		return classifications[i].SiteKey < classifications[j].SiteKey
	})

	return &ValidationRunResponse{
		RunID:           result.RunID,
		Stats:           result.Stats,
		Records:         result.Records,
		Classifications: classifications,
		DurationMS:      float64(result.FinishedAt.Sub(result.StartedAt).Microseconds()) / 1000,
	}
}

// ReportValidationAccepted - ответ на запуск асинхронного прогона
type ReportValidationAccepted struct {
	ReportID   uuid.UUID       `json:"report_id"`
	Generation uint64          `json:"generation"`
	State      domain.RunState `json:"state"`
}

// ReportValidationStatus - состояние последнего прогона отчёта
type ReportValidationStatus struct {
	ReportID   uuid.UUID              `json:"report_id"`
	State      domain.RunState        `json:"state"`
	Generation uint64                 `json:"generation"`
	Error      string                 `json:"error,omitempty"`
	UpdatedAt  *time.Time             `json:"updated_at,omitempty"`
	Result     *ValidationRunResponse `json:"result,omitempty"`
}

func NewReportValidationStatus(reportID uuid.UUID, snap domain.RunSnapshot) *ReportValidationStatus {
	status := &ReportValidationStatus{
		ReportID:   reportID,
		State:      snap.State,
		Generation: snap.Generation,
		Error:      snap.Error,
		Result:     NewValidationRunResponse(snap.Result),
	}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt
		status.UpdatedAt = &updated
	}
	return status
}
