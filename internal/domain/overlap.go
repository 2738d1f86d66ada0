package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateRange - замкнутый интервал календарных дат
type DateRange struct {
	From time.Time
	To   time.Time
}

// Overlaps - включительная проверка: общий хотя бы один день
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.From.After(other.To) && !other.From.After(r.To)
}

// Intersect возвращает общий подынтервал; ok=false если пересечения нет
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	if !r.Overlaps(other) {
		return DateRange{}, false
	}
	from := r.From
	if other.From.After(from) {
		from = other.From
	}
	to := r.To
	if other.To.Before(to) {
		to = other.To
	}
	return DateRange{From: from, To: to}, true
}

func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		From string `json:"from"`
		To   string `json:"to"`
	}{
		From: FormatDate(r.From),
		To:   FormatDate(r.To),
	})
}

func (r *DateRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	from, ok := ParseDate(raw.From)
	if !ok {
		return fmt.Errorf("invalid date range start: %q", raw.From)
	}
	to, ok := ParseDate(raw.To)
	if !ok {
		return fmt.Errorf("invalid date range end: %q", raw.To)
	}
	*r = DateRange{From: from, To: to}
	return nil
}

// OverlapEdge - неупорядоченная пара записей одного оборудования с пересекающимися периодами.
// Хранится канонично: InstanceA < InstanceB.
type OverlapEdge struct {
	InstanceA    string    `json:"instance_a"`
	InstanceB    string    `json:"instance_b"`
	EquipmentKey string    `json:"equipment_key"`
	Overlap      DateRange `json:"overlap"`
}

// NewOverlapEdge создает ребро в каноничном порядке
func NewOverlapEdge(a, b, equipmentKey string, overlap DateRange) OverlapEdge {
	if b < a {
		a, b = b, a
	}
	return OverlapEdge{
		InstanceA:    a,
		InstanceB:    b,
		EquipmentKey: equipmentKey,
		Overlap:      overlap,
	}
}

// Other возвращает второй конец ребра относительно instanceID
func (e OverlapEdge) Other(instanceID string) string {
	if e.InstanceA == instanceID {
		return e.InstanceB
	}
	return e.InstanceA
}

// Touches проверяет, что ребро инцидентно записи
func (e OverlapEdge) Touches(instanceID string) bool {
	return e.InstanceA == instanceID || e.InstanceB == instanceID
}
