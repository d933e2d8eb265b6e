package recommend

import (
	"fmt"
	"math"
	"strings"

	"pulse-backend/internal/factors"
	"pulse-backend/internal/models"
)

// Fuel substitutions with a lower-carbon drop-in alternative.
var (
	vehicleSwitch    = map[string][2]string{"diesel": {"gasoline", "gallon"}}
	stationarySwitch = map[string][2]string{"heating_oil": {"propane", "gallon"}}
)

// ReduceFuelCandidates recommends lower-carbon fuel substitutions for vehicle
// and stationary fuel groups. Vehicle switches are additionally scored against
// energy vendors to suggest a supplier; stationary switches carry a fixed
// feasibility weight.
func ReduceFuelCandidates(vehGroups, statGroups [][]FuelRecord, energyVendors []models.Vendor) []Candidate {
	var candidates []Candidate

	for _, group := range vehGroups {
		rep := group[0]
		fuel := strings.ToLower(derefStr(rep.FuelType, ""))
		unit := strings.ToLower(derefStr(rep.Unit, "gallon"))
		qty := rep.Quantity
		alt, ok := vehicleSwitch[fuel]
		if qty <= 0 || !ok {
			continue
		}
		altFuel, altUnit := alt[0], alt[1]

		curFactor, err := factors.VehicleFuel(fuel, unit)
		if err != nil {
			continue
		}
		altFactor, err := factors.VehicleFuel(altFuel, altUnit)
		if err != nil || curFactor <= altFactor {
			continue
		}

		currentKg := qty * curFactor
		newKg := qty * altFactor
		saving := currentKg - newKg
		n := len(group)
		pct := saving / currentKg * 100

		var bestVendor *models.Vendor
		bestSc := 0.0
		for i, v := range energyVendors {
			vScore := float64(v.SustainabilityScore)
			sim := Cosine(
				[]float64{qty, currentKg, saving},
				[]float64{1.0 / math.Max(v.CarbonIntensity, 0.01), vScore, 1.0 / math.Max(vendorDistanceKm(v), 1)},
			)
			sc := saving * float64(n) * (vScore / 100) * (1 + sim) / 2
			if sc > bestSc {
				bestVendor, bestSc = &energyVendors[i], sc
			}
		}

		vendorScore := 50.0
		vendorNote := ""
		if bestVendor != nil {
			vendorScore = float64(bestVendor.SustainabilityScore)
			vendorNote = fmt.Sprintf(" Consider %q (sustainability %d/100) as energy supplier.",
				bestVendor.Name, bestVendor.SustainabilityScore)
		}
		raw := bestSc
		if raw <= 0 {
			raw = saving * float64(n) * 0.5
		}

		sourceID := rep.ParsedID
		candidates = append(candidates, Candidate{
			Criteria:      models.CriterionReduceFuel,
			ActivityID:    rep.ActivityID,
			SourceID:      &sourceID,
			CurrentKg:     round4(currentKg),
			RecommendedKg: round4(newKg),
			SavingKg:      round4(saving),
			TotalSavingKg: round4(saving * float64(n)),
			RawScore:      raw,
			RecordCount:   n,
			Features:      []float64{qty, currentKg, saving, vendorScore},
			Text: fmt.Sprintf(
				"%d record%s: %.1f %s %s (%.1f kg CO2e each). Switch to %s — cuts %.0f%%, "+
					"saves %.1f kg/record, %.1f kg total.%s",
				n, plural(n), qty, unit, fuel, currentKg, altFuel, pct,
				saving, saving*float64(n), vendorNote),
		})
	}

	for _, group := range statGroups {
		rep := group[0]
		fuel := strings.ToLower(derefStr(rep.FuelType, ""))
		unit := strings.ToLower(derefStr(rep.Unit, "therm"))
		qty := rep.Quantity
		alt, ok := stationarySwitch[fuel]
		if qty <= 0 || !ok {
			continue
		}
		altFuel, altUnit := alt[0], alt[1]

		curFactor, err := factors.StationaryFuel(fuel, unit)
		if err != nil {
			continue
		}
		altFactor, err := factors.StationaryFuel(altFuel, altUnit)
		if err != nil || curFactor <= altFactor {
			continue
		}

		currentKg := qty * curFactor
		newKg := qty * altFactor
		saving := currentKg - newKg
		n := len(group)
		pct := saving / currentKg * 100

		sourceID := rep.ParsedID
		candidates = append(candidates, Candidate{
			Criteria:      models.CriterionReduceFuel,
			ActivityID:    rep.ActivityID,
			SourceID:      &sourceID,
			CurrentKg:     round4(currentKg),
			RecommendedKg: round4(newKg),
			SavingKg:      round4(saving),
			TotalSavingKg: round4(saving * float64(n)),
			RawScore:      saving * float64(n) * 0.7,
			RecordCount:   n,
			Features:      []float64{qty, currentKg, saving, 70},
			Text: fmt.Sprintf(
				"%d record%s: %.1f %s %s (%.1f kg CO2e each). Switch to %s — cuts %.0f%%, "+
					"saves %.1f kg/record, %.1f kg total.",
				n, plural(n), qty, unit, fuel, currentKg, altFuel, pct,
				saving, saving*float64(n)),
		})
	}

	return candidates
}
