package domain

// AggregateStats - сводная статистика прогона для баннеров оператора.
// InsideRegionOverlapping + OutsideRegionOverlapping + InvalidLocationOverlapping == Overlapping.
type AggregateStats struct {
	Total                      int `json:"total"`
	Overlapping                int `json:"overlapping"`
	NonOverlapping             int `json:"non_overlapping"`
	InsideRegionOverlapping    int `json:"inside_region_overlapping"`
	OutsideRegionOverlapping   int `json:"outside_region_overlapping"`
	InvalidLocationOverlapping int `json:"invalid_location_overlapping"`
	InsideRegion               int `json:"inside_region"`
	OutsideRegion              int `json:"outside_region"`
	InvalidLocation            int `json:"invalid_location"`
	DefaultedDates             int `json:"defaulted_dates"`
}
