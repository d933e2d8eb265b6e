package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"pulse-backend/internal/factors"
	"pulse-backend/internal/models"
)

// Defaults for the energy-intensity denominator, overridable via
// ENERGY_DENOMINATOR_TYPE / ENERGY_DENOMINATOR_VALUE.
const (
	defaultDenominatorType  = "employees"
	defaultDenominatorValue = 10.0
)

func energyDenominator() (string, float64) {
	dtype := os.Getenv("ENERGY_DENOMINATOR_TYPE")
	if dtype == "" {
		dtype = defaultDenominatorType
	}
	dval := defaultDenominatorValue
	if raw := os.Getenv("ENERGY_DENOMINATOR_VALUE"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			dval = v
		}
	}
	return dtype, dval
}

// ComputeMetrics derives the energy, water and waste aggregates from the
// parsed source tables and persists one fresh row per metric table, all
// inside the caller's transaction.
func ComputeMetrics(tx *sqlx.Tx) (models.MetricsSection, []string, error) {
	var warnings []string

	energy, ws, err := computeEnergyMetric(tx)
	if err != nil {
		return models.MetricsSection{}, nil, err
	}
	warnings = append(warnings, ws...)

	water, err := computeWaterMetric(tx)
	if err != nil {
		return models.MetricsSection{}, nil, err
	}

	waste, err := computeWasteMetric(tx)
	if err != nil {
		return models.MetricsSection{}, nil, err
	}
	if waste.NoWasteData {
		warnings = append(warnings, "no waste records; diversion rate reported as 0")
	}

	return models.MetricsSection{Energy: energy, Water: water, Waste: waste}, warnings, nil
}

func computeEnergyMetric(tx *sqlx.Tx) (*models.EnergyMetric, []string, error) {
	var totalKWh float64
	if err := tx.Get(&totalKWh, `SELECT COALESCE(SUM(kwh), 0) FROM parsed_electricity`); err != nil {
		return nil, nil, fmt.Errorf("sum electricity: %w", err)
	}

	dtype, dval := energyDenominator()
	m := &models.EnergyMetric{
		TotalKWh:         round4(totalKWh),
		DenominatorType:  dtype,
		DenominatorValue: dval,
		IntensityUnit:    "kwh_per_" + strings.TrimSuffix(dtype, "s"),
	}

	var warnings []string
	if dval > 0 {
		m.IntensityValue = round4(totalKWh / dval)
	} else {
		warnings = append(warnings, fmt.Sprintf("energy denominator %q is %.2f; intensity not computed", dtype, dval))
	}

	_, err := tx.Exec(`
		INSERT INTO energy_metrics (total_kwh, denominator_type, denominator_value, energy_intensity_value, energy_intensity_unit)
		VALUES ($1, $2, $3, $4, $5)`,
		m.TotalKWh, m.DenominatorType, m.DenominatorValue, m.IntensityValue, m.IntensityUnit)
	if err != nil {
		return nil, nil, fmt.Errorf("insert energy metric: %w", err)
	}
	return m, warnings, nil
}

func computeWaterMetric(tx *sqlx.Tx) (*models.WaterMetric, error) {
	var rows []models.ParsedWater
	if err := tx.Select(&rows, `SELECT parsed_id, document_id, water_volume, unit, location, period_start, period_end FROM parsed_water`); err != nil {
		return nil, fmt.Errorf("load parsed_water: %w", err)
	}

	var gallons float64
	for _, row := range rows {
		switch strings.ToLower(strings.TrimSpace(deref(row.Unit))) {
		case "m3", "cubic_meters", "cubic meters":
			gallons += row.WaterVolume * factors.M3ToGallons
		default:
			gallons += row.WaterVolume
		}
	}

	m := &models.WaterMetric{
		TotalGallons: round4(gallons),
		TotalM3:      round4(gallons / factors.M3ToGallons),
		RecordCount:  len(rows),
	}
	_, err := tx.Exec(`
		INSERT INTO water_metrics (total_water_gallons, total_water_m3, record_count)
		VALUES ($1, $2, $3)`,
		m.TotalGallons, m.TotalM3, m.RecordCount)
	if err != nil {
		return nil, fmt.Errorf("insert water metric: %w", err)
	}
	return m, nil
}

func computeWasteMetric(tx *sqlx.Tx) (*models.WasteMetric, error) {
	var rows []models.ParsedWaste
	if err := tx.Select(&rows, `SELECT parsed_id, document_id, waste_weight, unit, disposal_method, period_start, period_end FROM parsed_waste`); err != nil {
		return nil, fmt.Errorf("load parsed_waste: %w", err)
	}

	m := &models.WasteMetric{}
	for _, row := range rows {
		kg := factors.ToKg(row.WasteWeight, deref(row.Unit))
		m.TotalWasteKg += kg
		switch strings.ToLower(strings.TrimSpace(deref(row.DisposalMethod))) {
		case "recycle":
			m.RecycledKg += kg
		case "compost":
			m.CompostedKg += kg
		default:
			m.LandfillKg += kg
		}
	}

	m.TotalWasteKg = round4(m.TotalWasteKg)
	m.RecycledKg = round4(m.RecycledKg)
	m.CompostedKg = round4(m.CompostedKg)
	m.LandfillKg = round4(m.LandfillKg)
	m.DiversionRate = DiversionRate(m.TotalWasteKg, m.RecycledKg+m.CompostedKg)
	m.NoWasteData = m.TotalWasteKg == 0

	_, err := tx.Exec(`
		INSERT INTO waste_metrics (total_waste_kg, recycled_waste_kg, composted_waste_kg, landfill_waste_kg, diversion_rate, no_waste_data)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.TotalWasteKg, m.RecycledKg, m.CompostedKg, m.LandfillKg, m.DiversionRate, m.NoWasteData)
	if err != nil {
		return nil, fmt.Errorf("insert waste metric: %w", err)
	}
	return m, nil
}

// DiversionRate is the diverted share of total waste, clamped to [0,1].
// A zero total yields 0, never NaN.
func DiversionRate(totalKg, divertedKg float64) float64 {
	if totalKg <= 0 {
		return 0
	}
	rate := divertedKg / totalKg
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return round4(rate)
}

// EmissionsByScope aggregates emissions into the three GHG Protocol scopes.
// Scopes with no activity are still reported, at 0.
func EmissionsByScope(q sqlx.Queryer) ([]models.ScopeEmissions, error) {
	rows := []struct {
		Scope int     `db:"scope"`
		TCO2e float64 `db:"tco2e"`
	}{}
	err := sqlx.Select(q, &rows, `
		SELECT a.scope AS scope, COALESCE(SUM(e.emissions_metric_tons), 0) AS tco2e
		FROM emissions e
		JOIN activities a ON a.activity_id = e.activity_id
		WHERE a.scope IS NOT NULL
		GROUP BY a.scope`)
	if err != nil {
		return nil, fmt.Errorf("emissions by scope: %w", err)
	}

	byScope := map[int]float64{}
	for _, r := range rows {
		byScope[r.Scope] = r.TCO2e
	}
	labels := map[int]string{1: "Direct (fuel combustion)", 2: "Purchased electricity", 3: "Value chain"}
	out := make([]models.ScopeEmissions, 0, 3)
	for _, s := range []int{1, 2, 3} {
		out = append(out, models.ScopeEmissions{Scope: s, Label: labels[s], TCO2e: round4(byScope[s])})
	}
	return out, nil
}

// EmissionsBySource aggregates emissions per activity type.
func EmissionsBySource(q sqlx.Queryer) ([]models.SourceEmissions, error) {
	rows := []struct {
		Source string  `db:"source"`
		Scope  *int    `db:"scope"`
		TCO2e  float64 `db:"tco2e"`
	}{}
	err := sqlx.Select(q, &rows, `
		SELECT a.activity_type AS source, a.scope AS scope,
		       COALESCE(SUM(e.emissions_metric_tons), 0) AS tco2e
		FROM emissions e
		JOIN activities a ON a.activity_id = e.activity_id
		GROUP BY a.activity_type, a.scope
		ORDER BY tco2e DESC`)
	if err != nil {
		return nil, fmt.Errorf("emissions by source: %w", err)
	}

	out := make([]models.SourceEmissions, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SourceEmissions{Source: r.Source, Scope: r.Scope, TCO2e: round4(r.TCO2e)})
	}
	return out, nil
}

// Sparkline returns monthly emission totals keyed by YYYY-MM of the activity
// period start. Records without a period are grouped under "unknown".
func Sparkline(q sqlx.Queryer) ([]models.SparklinePoint, error) {
	rows := []struct {
		Period string  `db:"period"`
		TCO2e  float64 `db:"tco2e"`
	}{}
	err := sqlx.Select(q, &rows, `
		SELECT COALESCE(SUBSTRING(a.period_start FROM 1 FOR 7), 'unknown') AS period,
		       COALESCE(SUM(e.emissions_metric_tons), 0) AS tco2e
		FROM emissions e
		JOIN activities a ON a.activity_id = e.activity_id
		GROUP BY period
		ORDER BY period`)
	if err != nil {
		return nil, fmt.Errorf("sparkline: %w", err)
	}

	out := make([]models.SparklinePoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SparklinePoint{Period: r.Period, TCO2e: round4(r.TCO2e)})
	}
	return out, nil
}
