package recommend

import (
	"fmt"
	"math"
	"sort"

	"pulse-backend/internal/models"
)

// AltMaterialCandidates compares vendor profiles within each category and
// recommends a greener substitute for the highest-carbon vendor. Profiles are
// [1/carbon_intensity, sustainability_score, 1/distance_km] so that lower
// intensity and shorter distance both pull the cosine similarity up.
//
// Every lower-intensity vendor in the category yields a candidate; the rerank
// decides which survive. A non-empty selection limits which vendors may be
// suggested as substitutes, but the baseline (the category's highest-carbon
// vendor) is still found across the full pool.
func AltMaterialCandidates(vendors []models.Vendor, selected map[string]bool, fallbackActivityID *int64, cfg Config) []Candidate {
	byCat := map[string][]models.Vendor{}
	order := []string{}
	for _, v := range vendors {
		cat := v.Category
		if cat == "" {
			cat = "Other"
		}
		if cat == "Logistics" {
			continue
		}
		if _, seen := byCat[cat]; !seen {
			order = append(order, cat)
		}
		byCat[cat] = append(byCat[cat], v)
	}
	sort.Strings(order)

	var candidates []Candidate
	for _, cat := range order {
		vs := byCat[cat]
		if len(vs) < 2 {
			continue
		}

		profiles := make([][]float64, len(vs))
		for i, v := range vs {
			ci := math.Max(v.CarbonIntensity, 0.01)
			dk := math.Max(vendorDistanceKm(v), 1.0)
			profiles[i] = []float64{1.0 / ci, float64(v.SustainabilityScore), 1.0 / dk}
		}
		sim := similarityMatrix(profiles)

		worstIdx := 0
		for i, v := range vs {
			if v.CarbonIntensity > vs[worstIdx].CarbonIntensity {
				worstIdx = i
			}
		}
		worst := vs[worstIdx]

		for j, v := range vs {
			if j == worstIdx || v.CarbonIntensity >= worst.CarbonIntensity {
				continue
			}
			if len(selected) > 0 && !selected[v.ID] {
				continue
			}
			savingPerUnit := worst.CarbonIntensity - v.CarbonIntensity
			savingPct := savingPerUnit / worst.CarbonIntensity
			similarity := sim[worstIdx][j]
			combined := savingPct*cfg.WeightSaving +
				(float64(v.SustainabilityScore)/100)*cfg.WeightScore +
				similarity*cfg.WeightSimilarity

			candidates = append(candidates, Candidate{
				Criteria:      models.CriterionAltMaterial,
				ActivityID:    fallbackActivityID,
				CurrentKg:     round4(worst.CarbonIntensity),
				RecommendedKg: round4(v.CarbonIntensity),
				SavingKg:      round4(savingPerUnit),
				TotalSavingKg: round4(savingPerUnit),
				RawScore:      combined,
				RecordCount:   1,
				Similarity:    round4(similarity),
				Features:      []float64{worst.CarbonIntensity, v.CarbonIntensity, savingPerUnit, float64(v.SustainabilityScore)},
				Text: fmt.Sprintf(
					"%s: switch from %q (%.1f kg CO2e/unit, score %d) to %q (%.1f kg CO2e/unit, score %d). "+
						"%.0f%% lower carbon intensity, %.0f km away (vs %.0f km). Similarity: %.0f%%.",
					cat, worst.Name, worst.CarbonIntensity, worst.SustainabilityScore,
					v.Name, v.CarbonIntensity, v.SustainabilityScore,
					savingPct*100, vendorDistanceKm(v), vendorDistanceKm(worst), similarity*100),
			})
		}
	}
	return candidates
}
