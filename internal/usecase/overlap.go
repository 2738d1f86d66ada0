package usecase

import (
	"sort"

	"github.com/fse-compliance/internal/domain"
)

// DetectOverlaps находит для каждой записи все другие экземпляры того же
// оборудования, периоды поставки которых пересекаются (включая общий граничный день).
// Каждая пара даёт одно ребро, которое попадает в списки обеих записей.
// В результате есть запись для каждого InstanceID, пустой список означает отсутствие пересечений.
// Записи без идентичности оборудования (пустой EquipmentKey) ни с чем не сравниваются.
func DetectOverlaps(records []domain.SupplyRecord) map[string][]domain.OverlapEdge {
	overlaps := make(map[string][]domain.OverlapEdge, len(records))
	partitions := make(map[string][]domain.SupplyRecord)

	for _, rec := range records {
		if _, ok := overlaps[rec.InstanceID]; !ok {
			overlaps[rec.InstanceID] = []domain.OverlapEdge{}
		}
		if rec.EquipmentKey == "" {
			continue
		}
		partitions[rec.EquipmentKey] = append(partitions[rec.EquipmentKey], rec)
	}

	keys := make([]string, 0, len(partitions))
	for key := range partitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		group := partitions[key]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.InstanceID == b.InstanceID {
					continue
				}
				shared, ok := a.Period().Intersect(b.Period())
				if !ok {
					continue
				}
				edge := domain.NewOverlapEdge(a.InstanceID, b.InstanceID, key, shared)
				overlaps[a.InstanceID] = append(overlaps[a.InstanceID], edge)
				overlaps[b.InstanceID] = append(overlaps[b.InstanceID], edge)
			}
		}
	}

	return overlaps
}
