package factors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationaryFuel(t *testing.T) {
	f, err := StationaryFuel("natural_gas", "therm")
	require.NoError(t, err)
	assert.InDelta(t, 5.3067, f, 1e-9)

	f, err = StationaryFuel("Propane", " gallon ")
	require.NoError(t, err)
	assert.InDelta(t, 5.7260, f, 1e-9)

	_, err = StationaryFuel("coal", "ton")
	assert.ErrorIs(t, err, ErrNoFactor)

	_, err = StationaryFuel("natural_gas", "barrel")
	assert.ErrorIs(t, err, ErrNoFactor)
}

func TestVehicleFuel(t *testing.T) {
	f, err := VehicleFuel("diesel", "gallon")
	require.NoError(t, err)
	assert.InDelta(t, 10.18, f, 1e-9)

	f, err = VehicleFuel("gasoline", "liter")
	require.NoError(t, err)
	assert.InDelta(t, 2.3480, f, 1e-9)

	_, err = VehicleFuel("hydrogen", "kg")
	assert.ErrorIs(t, err, ErrNoFactor)
}

func TestTransportFallsBackToTruck(t *testing.T) {
	assert.InDelta(t, 0.1693, Transport(""), 1e-9)
	assert.InDelta(t, 0.1693, Transport("zeppelin"), 1e-9)
	assert.InDelta(t, 0.0229, Transport("Rail"), 1e-9)

	_, err := TransportStrict("zeppelin")
	assert.ErrorIs(t, err, ErrNoFactor)
}

func TestWasteFallsBackToLandfill(t *testing.T) {
	assert.InDelta(t, 0.4460, Waste(""), 1e-9)
	assert.InDelta(t, 0.0, Waste("recycle"), 1e-9)
	assert.InDelta(t, 0.0100, Waste("compost"), 1e-9)
}

func TestToKg(t *testing.T) {
	assert.InDelta(t, 0.453592, ToKg(1, "lb"), 1e-9)
	assert.InDelta(t, 4.53592, ToKg(10, "lbs"), 1e-9)
	assert.InDelta(t, 25.0, ToKg(25, "kg"), 1e-9)
}
