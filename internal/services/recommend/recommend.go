package recommend

import (
	"fmt"
	"log"
	"sort"

	"github.com/jmoiron/sqlx"

	"pulse-backend/internal/models"
)

// Result summarizes one generation run.
type Result struct {
	Selected       []Candidate    `json:"-"`
	CandidateCount map[string]int `json:"candidates"`
	AfterDiversity int            `json:"after_diversity"`
	TotalSavingKg  float64        `json:"total_saving_kg"`
	VendorsUsed    int            `json:"vendors_used"`
	ShippingGroups int            `json:"shipping_groups"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// Generate runs the full recommender pipeline against the caller's
// transaction: load vendors and source records, build candidates per
// criterion, normalize scores within each criterion, rerank for diversity,
// and keep the top K of each. Persistence is the caller's job.
func Generate(tx *sqlx.Tx, cfg Config) (*Result, error) {
	var vendors []models.Vendor
	if err := tx.Select(&vendors, `
		SELECT vendor_id, vendor_name, category, product_or_service,
		       carbon_intensity, sustainability_score, distance_km_from_sme
		FROM vendors ORDER BY sustainability_score DESC`); err != nil {
		return nil, fmt.Errorf("load vendors: %w", err)
	}

	var shipping []ShippingRecord
	if err := tx.Select(&shipping, `
		SELECT ps.parsed_id, ps.document_id, ps.weight_tons, ps.distance_miles,
		       ps.transport_mode, ps.period_start, ps.period_end, a.activity_id
		FROM parsed_shipping ps
		LEFT JOIN activities a ON a.parsed_table = 'parsed_shipping' AND a.parsed_id = ps.parsed_id
		ORDER BY ps.parsed_id`); err != nil {
		return nil, fmt.Errorf("load shipping: %w", err)
	}

	var vehicleFuel []FuelRecord
	if err := tx.Select(&vehicleFuel, `
		SELECT pv.parsed_id, pv.fuel_type, pv.quantity, pv.unit, a.activity_id
		FROM parsed_vehicle_fuel pv
		LEFT JOIN activities a ON a.parsed_table = 'parsed_vehicle_fuel' AND a.parsed_id = pv.parsed_id
		ORDER BY pv.parsed_id`); err != nil {
		return nil, fmt.Errorf("load vehicle fuel: %w", err)
	}

	var stationaryFuel []FuelRecord
	if err := tx.Select(&stationaryFuel, `
		SELECT psf.parsed_id, psf.fuel_type, psf.quantity, psf.unit, a.activity_id
		FROM parsed_stationary_fuel psf
		LEFT JOIN activities a ON a.parsed_table = 'parsed_stationary_fuel' AND a.parsed_id = psf.parsed_id
		ORDER BY psf.parsed_id`); err != nil {
		return nil, fmt.Errorf("load stationary fuel: %w", err)
	}

	var electricity []ElectricityRecord
	if err := tx.Select(&electricity, `
		SELECT pe.parsed_id, pe.kwh, a.activity_id
		FROM parsed_electricity pe
		LEFT JOIN activities a ON a.parsed_table = 'parsed_electricity' AND a.parsed_id = pe.parsed_id
		ORDER BY pe.parsed_id`); err != nil {
		return nil, fmt.Errorf("load electricity: %w", err)
	}

	var fallbackActivityID *int64
	var fid int64
	if err := tx.Get(&fid, `SELECT activity_id FROM activities ORDER BY activity_id LIMIT 1`); err == nil {
		fallbackActivityID = &fid
	}

	// A non-empty vendor selection restricts which vendors may be suggested
	// as alternatives. Baseline vendor identification (the worst in each
	// category) still looks at the full knowledge base.
	var selectedIDs []string
	if err := tx.Select(&selectedIDs, `SELECT vendor_id FROM selected_vendors`); err != nil {
		return nil, fmt.Errorf("load selected vendors: %w", err)
	}
	var selected map[string]bool
	if len(selectedIDs) > 0 {
		selected = make(map[string]bool, len(selectedIDs))
		for _, id := range selectedIDs {
			selected[id] = true
		}
	}

	var logisticsVendors, energyVendors []models.Vendor
	for _, v := range vendors {
		switch v.Category {
		case "Logistics":
			logisticsVendors = append(logisticsVendors, v)
		case "Energy", "Energy Provider":
			energyVendors = append(energyVendors, v)
		}
	}
	logisticsVendors = allowedVendors(logisticsVendors, selected)
	energyVendors = allowedVendors(energyVendors, selected)

	shipGroups := GroupShipping(shipping)
	vehGroups := GroupFuel(vehicleFuel, "gallon")
	statGroups := GroupFuel(stationaryFuel, "therm")

	haulerCands, haulerWarnings := CloserHaulerCandidates(shipGroups, logisticsVendors)

	byCriterion := map[string][]Candidate{
		models.CriterionCloserHauler:     haulerCands,
		models.CriterionAltMaterial:      AltMaterialCandidates(vendors, selected, fallbackActivityID, cfg),
		models.CriterionModeChange:       ModeChangeCandidates(shipGroups),
		models.CriterionReduceFuel:       ReduceFuelCandidates(vehGroups, statGroups, energyVendors),
		models.CriterionGreenElectricity: GreenElectricityCandidates(electricity, energyVendors),
	}

	result := &Result{
		CandidateCount: map[string]int{},
		VendorsUsed:    len(vendors),
		ShippingGroups: len(shipGroups),
		Warnings:       haulerWarnings,
	}

	criteria := make([]string, 0, len(byCriterion))
	for crit := range byCriterion {
		criteria = append(criteria, crit)
	}
	sort.Strings(criteria)

	for _, crit := range criteria {
		cands := byCriterion[crit]
		result.CandidateCount[crit] = len(cands)
		result.Selected = append(result.Selected, SelectTopK(cands, cfg)...)
	}

	for _, c := range result.Selected {
		result.TotalSavingKg += c.TotalSavingKg
	}
	result.TotalSavingKg = round4(result.TotalSavingKg)
	result.AfterDiversity = len(result.Selected)

	log.Printf("[RECOMMEND] ✅ %d candidates across %d criteria, %d kept after diversity",
		totalCount(result.CandidateCount), len(criteria), result.AfterDiversity)
	return result, nil
}

func totalCount(counts map[string]int) int {
	var n int
	for _, c := range counts {
		n += c
	}
	return n
}
