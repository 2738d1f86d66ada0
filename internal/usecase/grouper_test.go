package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fse-compliance/internal/domain"
	"github.com/fse-compliance/internal/usecase"
)

func TestGroupBySite(t *testing.T) {
	at := func(id string, lat, lon float64) domain.SupplyRecord {
		return domain.SupplyRecord{
			InstanceID: id,
			Coordinate: domain.NewCoordinate(domain.NewFlexFloat(lat), domain.NewFlexFloat(lon)),
		}
	}

	records := []domain.SupplyRecord{
		at("a", 49.2827, -123.1207),
		at("b", 49.28270000004, -123.12069999996),
		at("c", 50.0, -120.0),
		at("d", 91, -123),
		{InstanceID: "e"},
	}

	groups := usecase.GroupBySite(records)

	require.Len(t, groups, 3)
	site := domain.SiteKey("49.282700,-123.120700")
	assert.Len(t, groups[site], 2)
	assert.Equal(t, "a", groups[site][0].InstanceID)
	assert.Equal(t, "b", groups[site][1].InstanceID)
	assert.Len(t, groups[domain.InvalidSiteKey], 2)

	assert.Equal(t, []domain.SiteKey{
		"49.282700,-123.120700",
		"50.000000,-120.000000",
		domain.InvalidSiteKey,
	}, usecase.SiteKeys(groups))
}

func TestGroupBySite_Empty(t *testing.T) {
	groups := usecase.GroupBySite(nil)
	assert.Empty(t, groups)
	assert.Empty(t, usecase.SiteKeys(groups))
}
