package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// SupplyRow - сырая строка оборудования из отчёта (HTTP, CSV, БД или стрим)
type SupplyRow struct {
	ID                 string    `json:"id,omitempty" db:"id"`
	InstanceID         string    `json:"instance_id,omitempty" db:"instance_id"`
	DisplayName        string    `json:"display_name,omitempty" db:"display_name"`
	RegistrationNumber string    `json:"registration_number" db:"registration_number" validate:"max=128"`
	SerialNumber       string    `json:"serial_number" db:"serial_number" validate:"max=128"`
	StreetAddress      string    `json:"street_address,omitempty" db:"street_address"`
	City               string    `json:"city,omitempty" db:"city"`
	PostalCode         string    `json:"postal_code,omitempty" db:"postal_code"`
	Latitude           FlexFloat `json:"latitude" db:"-"`
	Longitude          FlexFloat `json:"longitude" db:"-"`
	SupplyFrom         string    `json:"supply_from,omitempty" db:"supply_from"`
	SupplyTo           string    `json:"supply_to,omitempty" db:"supply_to"`
}

// Coordinate - координата записи; Valid=false для отсутствующих и выходящих за диапазон значений
type Coordinate struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Valid bool    `json:"valid"`
}

// NewCoordinate строит координату из необязательных значений
func NewCoordinate(lat, lon FlexFloat) Coordinate {
	if !lat.Set || !lon.Set {
		return Coordinate{}
	}
	return Coordinate{
		Lat:   lat.Value,
		Lon:   lon.Value,
		Valid: ValidCoordinates(lat.Value, lon.Value),
	}
}

// DateIssue помечает запись, даты которой были исправлены при нормализации
type DateIssue string

const (
	DateIssueFromDefaulted DateIssue = "from_defaulted"
	DateIssueToDefaulted   DateIssue = "to_defaulted"
	DateIssueRangeInverted DateIssue = "range_inverted"
)

// SupplyRecord - нормализованная запись оборудования
type SupplyRecord struct {
	ID           string      `json:"id"`
	InstanceID   string      `json:"instance_id"`
	EquipmentKey string      `json:"equipment_key"`
	DisplayName  string      `json:"display_name"`
	Coordinate   Coordinate  `json:"coordinate"`
	ActiveFrom   time.Time   `json:"active_from"`
	ActiveTo     time.Time   `json:"active_to"`
	DateIssues   []DateIssue `json:"date_issues,omitempty"`
}

// Period возвращает период поставки записи
func (r SupplyRecord) Period() DateRange {
	return DateRange{From: r.ActiveFrom, To: r.ActiveTo}
}

// SiteKey возвращает ключ площадки, к которой относится запись
func (r SupplyRecord) SiteKey() SiteKey {
	return NewSiteKey(r.Coordinate)
}

// EquipmentKey - регистрационный номер + серийный номер.
// Пустая строка означает, что идентичность оборудования неизвестна.
func EquipmentKey(registration, serial string) string {
	registration = strings.TrimSpace(registration)
	serial = strings.TrimSpace(serial)
	if registration == "" && serial == "" {
		return ""
	}
	return registration + "_" + serial
}

// NewSupplyRecord нормализует строку отчёта.
// Битые или пустые даты заменяются на today и помечаются в DateIssues.
// Период с From позже To сохраняется без изменений и помечается range_inverted.
func NewSupplyRecord(row SupplyRow, today time.Time) SupplyRecord {
	today = TruncateDay(today)

	rec := SupplyRecord{
		ID:           strings.TrimSpace(row.ID),
		InstanceID:   strings.TrimSpace(row.InstanceID),
		EquipmentKey: EquipmentKey(row.RegistrationNumber, row.SerialNumber),
		DisplayName:  strings.TrimSpace(row.DisplayName),
		Coordinate:   NewCoordinate(row.Latitude, row.Longitude),
	}

	if rec.InstanceID == "" {
		rec.InstanceID = uuid.NewString()
	}
	if rec.ID == "" {
		rec.ID = rec.InstanceID
	}
	if rec.DisplayName == "" {
		rec.DisplayName = strings.TrimSpace(row.SerialNumber)
	}

	from, ok := ParseDate(row.SupplyFrom)
	if !ok {
		from = today
		rec.DateIssues = append(rec.DateIssues, DateIssueFromDefaulted)
	}
	to, ok := ParseDate(row.SupplyTo)
	if !ok {
		to = today
		rec.DateIssues = append(rec.DateIssues, DateIssueToDefaulted)
	}
	// перевёрнутый период только помечается: проверка пересечений идёт по датам как есть
	if from.After(to) {
		rec.DateIssues = append(rec.DateIssues, DateIssueRangeInverted)
	}

	rec.ActiveFrom = from
	rec.ActiveTo = to
	return rec
}

// RowInstanceID детерминированно выводит InstanceID для строки без него:
// одинаковая пачка строк всегда получает одинаковые идентификаторы.
func RowInstanceID(index int, row SupplyRow) string {
	name := strings.Join([]string{
		strconv.Itoa(index),
		row.ID,
		row.RegistrationNumber,
		row.SerialNumber,
		row.SupplyFrom,
		row.SupplyTo,
	}, "|")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// ParseDate разбирает календарную дату ISO 8601; время суток отбрасывается
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) {
		return time.Time{}, false
	}
	if len(s) > len(dateLayout) {
		if sep := s[len(dateLayout)]; sep != 'T' && sep != ' ' {
			return time.Time{}, false
		}
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TruncateDay приводит момент времени к полуночи UTC того же календарного дня
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate форматирует календарную дату
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
