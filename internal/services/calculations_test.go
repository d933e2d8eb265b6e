package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse-backend/internal/factors"
	"pulse-backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestElectricityEmission(t *testing.T) {
	res := ElectricityEmission(models.ParsedElectricity{ParsedID: 1, KWh: 1000})
	assert.InDelta(t, 386.2, res.KgCO2e, 1e-6)
	assert.InDelta(t, 0.3862, res.MetricTons, 1e-6)
	assert.Equal(t, models.KindElectricity, res.Kind)
	require.NotNil(t, res.Scope)
	assert.Equal(t, 2, *res.Scope)
	assert.Equal(t, "kg_co2e_per_kwh", res.FactorUnit)
}

func TestStationaryFuelEmission(t *testing.T) {
	res, err := StationaryFuelEmission(models.ParsedStationaryFuel{
		ParsedID: 2, FuelType: strPtr("natural_gas"), Quantity: 100, Unit: strPtr("therm"),
	})
	require.NoError(t, err)
	assert.InDelta(t, 530.67, res.KgCO2e, 1e-6)
	require.NotNil(t, res.Scope)
	assert.Equal(t, 1, *res.Scope)

	_, err = StationaryFuelEmission(models.ParsedStationaryFuel{
		ParsedID: 3, FuelType: strPtr("coal"), Quantity: 10, Unit: strPtr("ton"),
	})
	assert.ErrorIs(t, err, factors.ErrNoFactor)
}

func TestVehicleFuelEmission(t *testing.T) {
	res, err := VehicleFuelEmission(models.ParsedVehicleFuel{
		ParsedID: 4, FuelType: strPtr("diesel"), Quantity: 50, Unit: strPtr("gallon"),
	})
	require.NoError(t, err)
	assert.InDelta(t, 509.0, res.KgCO2e, 1e-6)
}

func TestShippingEmission(t *testing.T) {
	res := ShippingEmission(models.ParsedShipping{
		ParsedID: 5, WeightTons: 2, DistanceMiles: 500, TransportMode: strPtr("truck"),
	})
	assert.InDelta(t, 169.3, res.KgCO2e, 1e-6)
	require.NotNil(t, res.Scope)
	assert.Equal(t, 3, *res.Scope)

	// missing mode assumes truck
	noMode := ShippingEmission(models.ParsedShipping{ParsedID: 6, WeightTons: 2, DistanceMiles: 500})
	assert.Equal(t, res.KgCO2e, noMode.KgCO2e)

	rail := ShippingEmission(models.ParsedShipping{
		ParsedID: 7, WeightTons: 2, DistanceMiles: 500, TransportMode: strPtr("rail"),
	})
	assert.InDelta(t, 22.9, rail.KgCO2e, 1e-6)
	assert.Less(t, rail.KgCO2e, res.KgCO2e)
}

func TestWasteEmissionConvertsPounds(t *testing.T) {
	res := WasteEmission(models.ParsedWaste{
		ParsedID: 8, WasteWeight: 100, Unit: strPtr("lb"), DisposalMethod: strPtr("landfill"),
	})
	assert.InDelta(t, 100*0.453592*0.4460, res.KgCO2e, 1e-4)

	recycled := WasteEmission(models.ParsedWaste{
		ParsedID: 9, WasteWeight: 100, Unit: strPtr("kg"), DisposalMethod: strPtr("recycle"),
	})
	assert.Zero(t, recycled.KgCO2e)
}

func TestMetricTonsTracksKilograms(t *testing.T) {
	for _, res := range []models.EmissionResult{
		ElectricityEmission(models.ParsedElectricity{ParsedID: 1, KWh: 12345.6}),
		ShippingEmission(models.ParsedShipping{ParsedID: 2, WeightTons: 3.3, DistanceMiles: 777}),
		WasteEmission(models.ParsedWaste{ParsedID: 3, WasteWeight: 123.4567, Unit: strPtr("lb")}),
	} {
		assert.InDelta(t, res.KgCO2e/1000.0, res.MetricTons, 1e-6)
	}
}

func TestDiversionRateBounds(t *testing.T) {
	assert.Equal(t, 0.0, DiversionRate(0, 0))
	assert.Equal(t, 0.0, DiversionRate(0, 50))
	assert.InDelta(t, 0.25, DiversionRate(100, 25), 1e-9)
	assert.Equal(t, 1.0, DiversionRate(100, 150)) // clamped
	assert.Equal(t, 0.0, DiversionRate(100, -5))
}

func TestCriterionTitle(t *testing.T) {
	assert.Equal(t, "Better Closer Hauler", criterionTitle("better_closer_hauler"))
	assert.Equal(t, "Green Electricity", criterionTitle("green_electricity"))
	assert.Equal(t, "Recommendation", criterionTitle(""))
}
