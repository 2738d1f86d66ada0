package usecase

import (
	"sort"

	"github.com/fse-compliance/internal/domain"
)

// GroupBySite группирует записи по ключу площадки. Записи без валидных
// координат попадают под domain.InvalidSiteKey. Порядок записей внутри
// группы совпадает с порядком во входном срезе.
func GroupBySite(records []domain.SupplyRecord) map[domain.SiteKey][]domain.SupplyRecord {
	groups := make(map[domain.SiteKey][]domain.SupplyRecord)
	for _, rec := range records {
		key := rec.SiteKey()
		groups[key] = append(groups[key], rec)
	}
	return groups
}

// SiteKeys возвращает ключи групп в отсортированном порядке
func SiteKeys(groups map[domain.SiteKey][]domain.SupplyRecord) []domain.SiteKey {
	keys := make([]domain.SiteKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
