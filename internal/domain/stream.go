package domain

import "github.com/google/uuid"

// Stream names
const (
	StreamValidateRequest = "stream:fse:validate"
	StreamValidateDone    = "stream:fse:validated"
)

// ValidateReportEvent - входящее событие на валидацию оборудования отчёта.
// Если Rows пуст, строки читаются из БД по ReportID.
type ValidateReportEvent struct {
	ReportID uuid.UUID   `json:"report_id"`
	Rows     []SupplyRow `json:"rows,omitempty"`
}

// ValidateDoneEvent - результат валидации, публикуемый в stream:fse:validated
type ValidateDoneEvent struct {
	ReportID   uuid.UUID       `json:"report_id"`
	RunID      uuid.UUID       `json:"run_id,omitempty"`
	Generation uint64          `json:"generation"`
	Stats      *AggregateStats `json:"stats,omitempty"`
	Records    []RecordResult  `json:"records,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream; Data - JSON из поля "data"
type StreamMessage struct {
	ID   string
	Data string
}
