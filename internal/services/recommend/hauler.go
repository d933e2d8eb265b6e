package recommend

import (
	"fmt"
	"strings"

	"pulse-backend/internal/factors"
	"pulse-backend/internal/models"
)

// CloserHaulerCandidates matches each shipping fingerprint group against
// logistics vendors located closer than the shipment distance. Emissions
// scale linearly with distance, so a closer hauler saves proportionally.
// Vendors with no recorded distance cannot be compared; each is skipped and
// reported once as a warning.
func CloserHaulerCandidates(groups [][]ShippingRecord, logistics []models.Vendor) ([]Candidate, []string) {
	var candidates []Candidate
	var warnings []string
	warned := map[string]bool{}
	for _, group := range groups {
		rep := group[0]
		distMi := rep.DistanceMiles
		weight := rep.WeightTons
		if distMi <= 0 || weight <= 0 {
			continue
		}

		mode := strings.ToLower(derefStr(rep.TransportMode, "truck"))
		factor := factors.Transport(mode)
		currentKg := distMi * weight * factor
		n := len(group)

		for _, v := range logistics {
			vDistMi, ok := v.DistanceMiles()
			if !ok {
				if !warned[v.ID] {
					warned[v.ID] = true
					warnings = append(warnings,
						fmt.Sprintf("vendor %q (%s) has no recorded distance; skipped for closer-hauler matching", v.Name, v.ID))
				}
				continue
			}
			if vDistMi >= distMi {
				continue
			}
			vScore := float64(v.SustainabilityScore)

			newKg := vDistMi * weight * factor
			saving := currentKg - newKg
			if saving <= 0 {
				continue
			}

			sim := Cosine(
				[]float64{distMi, weight, currentKg},
				[]float64{vDistMi, weight, v.CarbonIntensity},
			)
			pct := (distMi - vDistMi) / distMi * 100

			sourceID := rep.ParsedID
			candidates = append(candidates, Candidate{
				Criteria:      models.CriterionCloserHauler,
				ActivityID:    rep.ActivityID,
				SourceID:      &sourceID,
				CurrentKg:     round4(currentKg),
				RecommendedKg: round4(newKg),
				SavingKg:      round4(saving),
				TotalSavingKg: round4(saving * float64(n)),
				RawScore:      saving * float64(n) * (vScore / 100),
				RecordCount:   n,
				Similarity:    round4(sim),
				Features:      []float64{distMi, weight, saving, vScore},
				Text: fmt.Sprintf(
					"Switch %d shipment%s (%.0f mi, %.1f tons, %s) to %q — only %.0f km away, "+
						"sustainability %d/100. %.0f%% closer, saves %.1f kg CO2e/shipment (%.1f kg total).",
					n, plural(n), distMi, weight, mode, v.Name, vendorDistanceKm(v),
					v.SustainabilityScore, pct, saving, saving*float64(n)),
			})
		}
	}
	return candidates, warnings
}
