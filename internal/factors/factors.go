// Package factors holds the static emission-factor tables (kg CO2e per unit)
// used by the calculation engine.
//
// Sources: US EPA Emission Factors for Greenhouse Gas Inventories (2023),
// DEFRA UK Government GHG Conversion Factors.
package factors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoFactor is returned when no factor exists for an
// (activity, fuel/mode, unit) combination. Callers treat it as a per-record
// data warning, not a batch failure.
var ErrNoFactor = errors.New("no emission factor for combination")

// Scope 2 — US national average grid (EPA eGRID 2023), kg CO2e / kWh.
const ElectricityKgPerKWh = 0.3862

// Unit converters.
const (
	LbToKg      = 0.453592
	KmToMiles   = 0.621371
	M3ToGallons = 264.172
)

// Scope 1 — stationary fuel combustion, kg CO2e per unit.
var stationaryFuelKg = map[string]map[string]float64{
	"natural_gas": {
		"therm":  5.3067,
		"ft3":    0.0549, // 1 therm ≈ 96.7 ft3
		"gallon": 5.3067,
	},
	"propane": {
		"gallon": 5.7260,
		"therm":  6.3200,
		"ft3":    0.0680,
	},
	"heating_oil": {
		"gallon": 10.1530,
		"therm":  7.4100,
	},
}

// Scope 1 — vehicle fuel combustion, kg CO2e per unit.
var vehicleFuelKg = map[string]map[string]float64{
	"gasoline": {
		"gallon": 8.8878,
		"liter":  2.3480,
	},
	"diesel": {
		"gallon": 10.1800,
		"liter":  2.6893,
	},
}

// Scope 3 — freight, kg CO2e / ton-mile (EPA MOVES / DEFRA 2023).
var shippingKgPerTonMile = map[string]float64{
	"truck": 0.1693,
	"ship":  0.0098,
	"rail":  0.0229,
	"air":   1.1300,
}

// Scope 3 — waste disposal, kg CO2e / kg waste (EPA WARM typical values).
// Recycling's avoided emissions are conservatively counted as 0.
var wasteKgPerKg = map[string]float64{
	"landfill":   0.4460,
	"incinerate": 0.0980,
	"recycle":    0.0000,
	"compost":    0.0100,
}

// DefaultTransportMode is assumed when a shipping record has no mode.
const DefaultTransportMode = "truck"

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Electricity returns the grid factor for a location. Only the US national
// average is carried for now; location-specific grids are a data question,
// not a code one.
func Electricity(location string) float64 {
	return ElectricityKgPerKWh
}

// StationaryFuel returns the kg CO2e factor for one unit of a stationary fuel.
func StationaryFuel(fuelType, unit string) (float64, error) {
	units, ok := stationaryFuelKg[norm(fuelType)]
	if !ok {
		return 0, fmt.Errorf("%w: stationary fuel %q", ErrNoFactor, fuelType)
	}
	f, ok := units[norm(unit)]
	if !ok {
		return 0, fmt.Errorf("%w: stationary fuel %q unit %q", ErrNoFactor, fuelType, unit)
	}
	return f, nil
}

// VehicleFuel returns the kg CO2e factor for one unit of a vehicle fuel.
func VehicleFuel(fuelType, unit string) (float64, error) {
	units, ok := vehicleFuelKg[norm(fuelType)]
	if !ok {
		return 0, fmt.Errorf("%w: vehicle fuel %q", ErrNoFactor, fuelType)
	}
	f, ok := units[norm(unit)]
	if !ok {
		return 0, fmt.Errorf("%w: vehicle fuel %q unit %q", ErrNoFactor, fuelType, unit)
	}
	return f, nil
}

// Transport returns the kg CO2e/ton-mile factor for a shipment mode.
// Empty or unknown modes fall back to truck.
func Transport(mode string) float64 {
	if f, ok := shippingKgPerTonMile[norm(mode)]; ok {
		return f
	}
	return shippingKgPerTonMile[DefaultTransportMode]
}

// TransportStrict is Transport without the truck fallback, for callers that
// must distinguish a real mode from a default.
func TransportStrict(mode string) (float64, error) {
	if f, ok := shippingKgPerTonMile[norm(mode)]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: transport mode %q", ErrNoFactor, mode)
}

// TransportModes returns every mode with a known factor.
func TransportModes() []string {
	return []string{"truck", "rail", "ship", "air"}
}

// Waste returns the kg CO2e/kg factor for a disposal method.
// Empty or unknown methods fall back to landfill.
func Waste(disposalMethod string) float64 {
	if f, ok := wasteKgPerKg[norm(disposalMethod)]; ok {
		return f
	}
	return wasteKgPerKg["landfill"]
}

// ToKg converts a weight in the given unit to kilograms.
func ToKg(weight float64, unit string) float64 {
	switch norm(unit) {
	case "lb", "lbs", "pound", "pounds":
		return weight * LbToKg
	default:
		return weight
	}
}
