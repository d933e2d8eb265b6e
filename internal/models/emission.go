package models

// Emission is the computed GHG figure for one Activity. One row per activity
// (unique activity_id); a recompute replaces the previous values in place.
// MetricTons is always KgCO2e / 1000.
type Emission struct {
	ID         int64   `json:"emission_id" db:"emission_id"`
	ActivityID int64   `json:"activity_id" db:"activity_id"`
	KgCO2e     float64 `json:"emissions_kg_co2e" db:"emissions_kg_co2e"`
	MetricTons float64 `json:"emissions_metric_tons" db:"emissions_metric_tons"`
	FactorUsed float64 `json:"factor_used" db:"factor_used"`
	FactorUnit string  `json:"factor_unit" db:"factor_unit"`
}

// EmissionResult is the in-memory outcome of calculating one source row,
// before anything is written.
type EmissionResult struct {
	Kind       ActivityKind `json:"source_table"`
	SourceID   int64        `json:"source_id"`
	Scope      *int         `json:"scope"`
	KgCO2e     float64      `json:"emissions_kg_co2e"`
	MetricTons float64      `json:"emissions_metric_tons"`
	FactorUsed float64      `json:"factor_used"`
	FactorUnit string       `json:"factor_unit"`
	ActivityID int64        `json:"activity_id"` // set after DB write
}
