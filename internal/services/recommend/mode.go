package recommend

import (
	"fmt"
	"strings"

	"pulse-backend/internal/factors"
	"pulse-backend/internal/models"
)

// Operational feasibility weights per target mode. Air scores high on
// feasibility but its factor makes it a worse choice almost always.
var modeFeasibility = map[string]float64{
	"truck": 0.95,
	"rail":  0.70,
	"ship":  0.50,
	"air":   0.95,
}

// Minimum viable distances: modal switches only make sense past these.
const (
	railMinMiles = 100.0
	shipMinMiles = 200.0
)

func feasibility(mode string) float64 {
	if f, ok := modeFeasibility[mode]; ok {
		return f
	}
	return 0.5
}

// ModeChangeCandidates evaluates every alternative transport mode for each
// shipping group and keeps the switch with the best feasibility-weighted
// saving.
func ModeChangeCandidates(groups [][]ShippingRecord) []Candidate {
	var candidates []Candidate
	for _, group := range groups {
		rep := group[0]
		dist := rep.DistanceMiles
		weight := rep.WeightTons
		if dist <= 0 || weight <= 0 {
			continue
		}

		tonMiles := dist * weight
		curMode := strings.ToLower(derefStr(rep.TransportMode, "truck"))
		curKg := tonMiles * factors.Transport(curMode)
		n := len(group)

		bestMode, bestSc, bestNew := "", 0.0, curKg
		for _, mode := range factors.TransportModes() {
			if mode == curMode {
				continue
			}
			if mode == "rail" && dist < railMinMiles {
				continue
			}
			if mode == "ship" && dist < shipMinMiles {
				continue
			}
			altFactor, err := factors.TransportStrict(mode)
			if err != nil {
				continue
			}
			newKg := tonMiles * altFactor
			saving := curKg - newKg
			if saving <= 0 {
				continue
			}
			sc := saving * feasibility(mode)
			if sc > bestSc {
				bestMode, bestSc, bestNew = mode, sc, newKg
			}
		}
		if bestMode == "" {
			continue
		}

		saving := curKg - bestNew
		pct := saving / curKg * 100
		sourceID := rep.ParsedID
		candidates = append(candidates, Candidate{
			Criteria:      models.CriterionModeChange,
			ActivityID:    rep.ActivityID,
			SourceID:      &sourceID,
			CurrentKg:     round4(curKg),
			RecommendedKg: round4(bestNew),
			SavingKg:      round4(saving),
			TotalSavingKg: round4(saving * float64(n)),
			RawScore:      saving * float64(n) * feasibility(bestMode),
			RecordCount:   n,
			Features:      []float64{dist, weight, saving, feasibility(bestMode) * 100},
			Text: fmt.Sprintf(
				"%d shipment%s: %.0f mi × %.1f tons via %s (%.1f kg CO2e each). "+
					"Switch to %s — cuts %.0f%%, saves %.1f kg/shipment, %.1f kg total.",
				n, plural(n), dist, weight, curMode, curKg,
				bestMode, pct, saving, saving*float64(n)),
		})
	}
	return candidates
}
