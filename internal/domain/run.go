package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunState - состояние прогона классификации
type RunState string

const (
	RunStateIdle      RunState = "idle"
	RunStateLoading   RunState = "loading"
	RunStateCompleted RunState = "completed"
	RunStateError     RunState = "error"
)

// RecordResult - итог по одной записи: её площадка, классификация и пересечения
type RecordResult struct {
	Record         SupplyRecord         `json:"record"`
	SiteKey        SiteKey              `json:"site_key"`
	Classification ClassificationResult `json:"classification"`
	Overlaps       []OverlapEdge        `json:"overlaps"`
}

// ValidationResult - результат полного прогона пайплайна на одной пачке записей
type ValidationResult struct {
	RunID           uuid.UUID                        `json:"run_id"`
	Records         []RecordResult                   `json:"records"`
	Classifications map[SiteKey]ClassificationResult `json:"classifications"`
	Stats           AggregateStats                   `json:"stats"`
	StartedAt       time.Time                        `json:"started_at"`
	FinishedAt      time.Time                        `json:"finished_at"`
}

// RunSnapshot - наблюдаемое состояние последнего прогона для отчёта
type RunSnapshot struct {
	Key        string            `json:"key"`
	State      RunState          `json:"state"`
	Generation uint64            `json:"generation"`
	Result     *ValidationResult `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
