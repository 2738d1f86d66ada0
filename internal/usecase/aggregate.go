package usecase

import (
	"github.com/fse-compliance/internal/domain"
)

// Summarize сводит классификации и пересечения в статистику.
// Запись без классификации своей площадки считается записью с невалидной локацией.
func Summarize(
	records []domain.SupplyRecord,
	classifications map[domain.SiteKey]domain.ClassificationResult,
	overlaps map[string][]domain.OverlapEdge,
) domain.AggregateStats {
	stats := domain.AggregateStats{Total: len(records)}

	for _, rec := range records {
		overlapping := len(overlaps[rec.InstanceID]) > 0
		if overlapping {
			stats.Overlapping++
		}

		for _, issue := range rec.DateIssues {
			if issue == domain.DateIssueFromDefaulted || issue == domain.DateIssueToDefaulted {
				stats.DefaultedDates++
				break
			}
		}

		cls, ok := classifications[rec.SiteKey()]
		switch {
		case !ok || cls.Source == domain.SourceInvalid:
			stats.InvalidLocation++
			if overlapping {
				stats.InvalidLocationOverlapping++
			}
		case cls.InsideRegion:
			stats.InsideRegion++
			if overlapping {
				stats.InsideRegionOverlapping++
			}
		default:
			stats.OutsideRegion++
			if overlapping {
				stats.OutsideRegionOverlapping++
			}
		}
	}

	stats.NonOverlapping = stats.Total - stats.Overlapping
	return stats
}
