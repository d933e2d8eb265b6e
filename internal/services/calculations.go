package services

import (
	"fmt"
	"log"
	"math"

	"github.com/jmoiron/sqlx"

	"pulse-backend/internal/factors"
	"pulse-backend/internal/models"
)

// CalculationSummary reports one full recompute pass over the parsed source
// tables. Records that fail factor lookup are skipped and surfaced as
// warnings, never as a batch failure.
type CalculationSummary struct {
	Processed  int      `json:"processed"`
	Skipped    int      `json:"skipped"`
	TotalKg    float64  `json:"total_kg_co2e"`
	TotalTCO2e float64  `json:"total_tco2e"`
	Warnings   []string `json:"warnings"`
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// round6 keeps kg-to-metric-ton conversions within 1e-6 of the exact ratio.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// ElectricityEmission computes scope 2 emissions for one utility-bill row.
func ElectricityEmission(row models.ParsedElectricity) models.EmissionResult {
	factor := factors.Electricity(deref(row.Location))
	kg := round4(row.KWh * factor)
	return result(models.KindElectricity, row.ParsedID, kg, factor, "kg_co2e_per_kwh")
}

// StationaryFuelEmission computes scope 1 emissions for one stationary
// combustion row. Unknown fuel/unit combinations return factors.ErrNoFactor.
func StationaryFuelEmission(row models.ParsedStationaryFuel) (models.EmissionResult, error) {
	fuel, unit := deref(row.FuelType), deref(row.Unit)
	factor, err := factors.StationaryFuel(fuel, unit)
	if err != nil {
		return models.EmissionResult{}, err
	}
	kg := round4(row.Quantity * factor)
	return result(models.KindStationaryFuel, row.ParsedID, kg, factor, "kg_co2e_per_"+unit), nil
}

// VehicleFuelEmission computes scope 1 emissions for one vehicle fuel row.
func VehicleFuelEmission(row models.ParsedVehicleFuel) (models.EmissionResult, error) {
	fuel, unit := deref(row.FuelType), deref(row.Unit)
	factor, err := factors.VehicleFuel(fuel, unit)
	if err != nil {
		return models.EmissionResult{}, err
	}
	kg := round4(row.Quantity * factor)
	return result(models.KindVehicleFuel, row.ParsedID, kg, factor, "kg_co2e_per_"+unit), nil
}

// ShippingEmission computes scope 3 freight emissions as
// weight_tons * distance_miles * mode factor. Missing modes assume truck.
func ShippingEmission(row models.ParsedShipping) models.EmissionResult {
	factor := factors.Transport(deref(row.TransportMode))
	kg := round4(row.WeightTons * row.DistanceMiles * factor)
	return result(models.KindShipping, row.ParsedID, kg, factor, "kg_co2e_per_ton_mile")
}

// WasteEmission computes scope 3 disposal emissions. Weight is converted to kg
// first; unknown disposal methods assume landfill.
func WasteEmission(row models.ParsedWaste) models.EmissionResult {
	kg := factors.ToKg(row.WasteWeight, deref(row.Unit))
	factor := factors.Waste(deref(row.DisposalMethod))
	return result(models.KindWaste, row.ParsedID, round4(kg*factor), factor, "kg_co2e_per_kg")
}

func result(kind models.ActivityKind, sourceID int64, kg, factor float64, unit string) models.EmissionResult {
	return models.EmissionResult{
		Kind:       kind,
		SourceID:   sourceID,
		Scope:      kind.Scope(),
		KgCO2e:     kg,
		MetricTons: round6(kg / 1000.0),
		FactorUsed: factor,
		FactorUnit: unit,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// RunCalculations recomputes every emission from the parsed source tables
// inside the given transaction. Existing activities and emissions are upserted
// in place, so reruns with unchanged inputs produce identical rows.
func RunCalculations(tx *sqlx.Tx) (*CalculationSummary, error) {
	summary := &CalculationSummary{Warnings: []string{}}

	if err := calcElectricity(tx, summary); err != nil {
		return nil, err
	}
	if err := calcStationaryFuel(tx, summary); err != nil {
		return nil, err
	}
	if err := calcVehicleFuel(tx, summary); err != nil {
		return nil, err
	}
	if err := calcShipping(tx, summary); err != nil {
		return nil, err
	}
	if err := calcWaste(tx, summary); err != nil {
		return nil, err
	}
	if err := normalizeWater(tx, summary); err != nil {
		return nil, err
	}

	summary.TotalKg = round4(summary.TotalKg)
	summary.TotalTCO2e = round6(summary.TotalKg / 1000.0)
	log.Printf("[CALC] ✅ Processed %d records (%d skipped), total %.4f tCO2e",
		summary.Processed, summary.Skipped, summary.TotalTCO2e)
	return summary, nil
}

func calcElectricity(tx *sqlx.Tx, summary *CalculationSummary) error {
	var rows []models.ParsedElectricity
	if err := tx.Select(&rows, `SELECT parsed_id, document_id, kwh, unit, location, period_start, period_end FROM parsed_electricity`); err != nil {
		return fmt.Errorf("load parsed_electricity: %w", err)
	}
	for _, row := range rows {
		res := ElectricityEmission(row)
		if err := persistResult(tx, res, row.Location, row.PeriodStart, row.PeriodEnd); err != nil {
			return err
		}
		summary.Processed++
		summary.TotalKg += res.KgCO2e
	}
	return nil
}

func calcStationaryFuel(tx *sqlx.Tx, summary *CalculationSummary) error {
	var rows []models.ParsedStationaryFuel
	if err := tx.Select(&rows, `SELECT parsed_id, document_id, fuel_type, quantity, unit, period_start, period_end FROM parsed_stationary_fuel`); err != nil {
		return fmt.Errorf("load parsed_stationary_fuel: %w", err)
	}
	for _, row := range rows {
		res, err := StationaryFuelEmission(row)
		if err != nil {
			summary.Skipped++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("stationary_fuel record %d: %v", row.ParsedID, err))
			continue
		}
		if err := persistResult(tx, res, nil, row.PeriodStart, row.PeriodEnd); err != nil {
			return err
		}
		summary.Processed++
		summary.TotalKg += res.KgCO2e
	}
	return nil
}

func calcVehicleFuel(tx *sqlx.Tx, summary *CalculationSummary) error {
	var rows []models.ParsedVehicleFuel
	if err := tx.Select(&rows, `SELECT parsed_id, document_id, fuel_type, quantity, unit, period_start, period_end FROM parsed_vehicle_fuel`); err != nil {
		return fmt.Errorf("load parsed_vehicle_fuel: %w", err)
	}
	for _, row := range rows {
		res, err := VehicleFuelEmission(row)
		if err != nil {
			summary.Skipped++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("vehicle_fuel record %d: %v", row.ParsedID, err))
			continue
		}
		if err := persistResult(tx, res, nil, row.PeriodStart, row.PeriodEnd); err != nil {
			return err
		}
		summary.Processed++
		summary.TotalKg += res.KgCO2e
	}
	return nil
}

func calcShipping(tx *sqlx.Tx, summary *CalculationSummary) error {
	var rows []models.ParsedShipping
	if err := tx.Select(&rows, `SELECT parsed_id, document_id, weight_tons, distance_miles, transport_mode, period_start, period_end FROM parsed_shipping`); err != nil {
		return fmt.Errorf("load parsed_shipping: %w", err)
	}
	for _, row := range rows {
		res := ShippingEmission(row)
		if err := persistResult(tx, res, nil, row.PeriodStart, row.PeriodEnd); err != nil {
			return err
		}
		summary.Processed++
		summary.TotalKg += res.KgCO2e
	}
	return nil
}

func calcWaste(tx *sqlx.Tx, summary *CalculationSummary) error {
	var rows []models.ParsedWaste
	if err := tx.Select(&rows, `SELECT parsed_id, document_id, waste_weight, unit, disposal_method, period_start, period_end FROM parsed_waste`); err != nil {
		return fmt.Errorf("load parsed_waste: %w", err)
	}
	for _, row := range rows {
		res := WasteEmission(row)
		if err := persistResult(tx, res, nil, row.PeriodStart, row.PeriodEnd); err != nil {
			return err
		}
		summary.Processed++
		summary.TotalKg += res.KgCO2e
	}
	return nil
}

// normalizeWater registers water rows as scope-less activities so they appear
// in the activity ledger, without writing an emissions row.
func normalizeWater(tx *sqlx.Tx, summary *CalculationSummary) error {
	var rows []models.ParsedWater
	if err := tx.Select(&rows, `SELECT parsed_id, document_id, water_volume, unit, location, period_start, period_end FROM parsed_water`); err != nil {
		return fmt.Errorf("load parsed_water: %w", err)
	}
	for _, row := range rows {
		_, err := upsertActivity(tx, models.KindWater, row.ParsedID, row.Location, row.PeriodStart, row.PeriodEnd)
		if err != nil {
			return err
		}
		summary.Processed++
	}
	return nil
}

func persistResult(tx *sqlx.Tx, res models.EmissionResult, location, periodStart, periodEnd *string) error {
	activityID, err := upsertActivity(tx, res.Kind, res.SourceID, location, periodStart, periodEnd)
	if err != nil {
		return err
	}
	return upsertEmission(tx, activityID, res)
}

func upsertActivity(tx *sqlx.Tx, kind models.ActivityKind, parsedID int64, location, periodStart, periodEnd *string) (int64, error) {
	var activityID int64
	err := tx.QueryRow(`
		INSERT INTO activities (parsed_table, parsed_id, activity_type, scope, location, period_start, period_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (parsed_table, parsed_id)
		DO UPDATE SET activity_type = EXCLUDED.activity_type,
		              scope = EXCLUDED.scope,
		              location = EXCLUDED.location,
		              period_start = EXCLUDED.period_start,
		              period_end = EXCLUDED.period_end
		RETURNING activity_id`,
		string(kind), parsedID, kind.ActivityType(), kind.Scope(), location, periodStart, periodEnd,
	).Scan(&activityID)
	if err != nil {
		return 0, fmt.Errorf("upsert activity %s/%d: %w", kind, parsedID, err)
	}
	return activityID, nil
}

func upsertEmission(tx *sqlx.Tx, activityID int64, res models.EmissionResult) error {
	_, err := tx.Exec(`
		INSERT INTO emissions (activity_id, emissions_kg_co2e, emissions_metric_tons, factor_used, factor_unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (activity_id)
		DO UPDATE SET emissions_kg_co2e = EXCLUDED.emissions_kg_co2e,
		              emissions_metric_tons = EXCLUDED.emissions_metric_tons,
		              factor_used = EXCLUDED.factor_used,
		              factor_unit = EXCLUDED.factor_unit`,
		activityID, res.KgCO2e, res.MetricTons, res.FactorUsed, res.FactorUnit)
	if err != nil {
		return fmt.Errorf("upsert emission for activity %d: %w", activityID, err)
	}
	return nil
}
