package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityKindScopes(t *testing.T) {
	for kind, want := range map[ActivityKind]int{
		KindStationaryFuel: 1,
		KindVehicleFuel:    1,
		KindElectricity:    2,
		KindShipping:       3,
		KindWaste:          3,
	} {
		s := kind.Scope()
		require.NotNil(t, s, kind)
		assert.Equal(t, want, *s, kind)
	}

	assert.Nil(t, KindWater.Scope(), "water usage carries no GHG scope")
	assert.Nil(t, ActivityKind("parsed_bogus").Scope())
}

func TestActivityKindTypes(t *testing.T) {
	assert.Equal(t, "purchased_electricity", KindElectricity.ActivityType())
	assert.Equal(t, "water_usage", KindWater.ActivityType())
	assert.Equal(t, "unknown", ActivityKind("parsed_bogus").ActivityType())
}

func TestPriorityForScore(t *testing.T) {
	assert.Equal(t, "high", PriorityForScore(1.0))
	assert.Equal(t, "high", PriorityForScore(0.7))
	assert.Equal(t, "medium", PriorityForScore(0.69))
	assert.Equal(t, "medium", PriorityForScore(0.4))
	assert.Equal(t, "low", PriorityForScore(0.39))
	assert.Equal(t, "low", PriorityForScore(0))
}

func TestVendorDistanceMiles(t *testing.T) {
	km := 100.0
	v := Vendor{DistanceKm: &km}
	mi, ok := v.DistanceMiles()
	require.True(t, ok)
	assert.InDelta(t, 62.1371, mi, 1e-4)

	_, ok = (&Vendor{}).DistanceMiles()
	assert.False(t, ok)
}
