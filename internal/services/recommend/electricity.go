package recommend

import (
	"fmt"
	"math"

	"pulse-backend/internal/factors"
	"pulse-backend/internal/models"
)

// GreenElectricityCandidates matches total electricity consumption against
// energy vendors whose carbon intensity beats the average grid factor. One
// candidate per qualifying vendor; requires at least one normalized
// electricity activity to anchor the recommendation.
func GreenElectricityCandidates(records []ElectricityRecord, energyVendors []models.Vendor) []Candidate {
	if len(records) == 0 || len(energyVendors) == 0 {
		return nil
	}

	var totalKWh float64
	for _, r := range records {
		totalKWh += r.KWh
	}
	if totalKWh <= 0 {
		return nil
	}

	currentKg := totalKWh * factors.ElectricityKgPerKWh
	n := len(records)

	var repActivityID *int64
	repParsedID := records[0].ParsedID
	for _, r := range records {
		if r.ActivityID != nil {
			repActivityID = r.ActivityID
			break
		}
	}
	if repActivityID == nil {
		return nil
	}

	var candidates []Candidate
	for _, v := range energyVendors {
		if v.CarbonIntensity >= factors.ElectricityKgPerKWh {
			continue
		}
		newKg := totalKWh * v.CarbonIntensity
		saving := currentKg - newKg
		if saving <= 0 {
			continue
		}
		pct := saving / currentKg * 100
		vScore := float64(v.SustainabilityScore)

		sim := Cosine(
			[]float64{totalKWh, currentKg, factors.ElectricityKgPerKWh},
			[]float64{1.0 / math.Max(v.CarbonIntensity, 0.001), vScore, 1.0 / math.Max(vendorDistanceKm(v), 1)},
		)

		sourceID := repParsedID
		candidates = append(candidates, Candidate{
			Criteria:      models.CriterionGreenElectricity,
			ActivityID:    repActivityID,
			SourceID:      &sourceID,
			CurrentKg:     round4(currentKg),
			RecommendedKg: round4(newKg),
			SavingKg:      round4(saving),
			TotalSavingKg: round4(saving),
			RawScore:      saving * (vScore / 100) * (1 + sim) / 2,
			RecordCount:   n,
			Similarity:    round4(sim),
			Features:      []float64{totalKWh, currentKg, saving, vScore},
			Text: fmt.Sprintf(
				"Switch %.0f kWh (%d bill%s) from grid (%.4f kg/kWh) to %q (%.4f kg/kWh, "+
					"sustainability %d/100). Saves %.1f kg CO2e (%.0f%% reduction).",
				totalKWh, n, plural(n), factors.ElectricityKgPerKWh, v.Name,
				v.CarbonIntensity, v.SustainabilityScore, saving, pct),
		})
	}
	return candidates
}
