package models

import "encoding/json"

// Snapshot is one published dashboard payload. Readers always see the version
// the snapshot pointer references; a refresh inserts a new version and
// advances the pointer in the same transaction.
type Snapshot struct {
	Version     int64           `json:"version" db:"version"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	RefreshedAt int64           `json:"refreshed_at" db:"refreshed_at"`
}

// SnapshotPayload is the shape serialized into Snapshot.Payload.
type SnapshotPayload struct {
	KPIs              KPIs              `json:"kpis"`
	EmissionsByScope  []ScopeEmissions  `json:"emissions_by_scope"`
	EmissionsBySource []SourceEmissions `json:"emissions_by_source"`
	Sparkline         []SparklinePoint  `json:"sparkline"`
	Recommendations   []Recommendation  `json:"recommendations"`
	Metrics           MetricsSection    `json:"metrics"`
	Warnings          []string          `json:"warnings"`
}

type KPIs struct {
	TotalEmissionsTCO2e float64 `json:"total_emissions_tco2e"`
	EnergyKWh           float64 `json:"energy_kwh"`
	WaterM3             float64 `json:"water_m3"`
	WasteDiversionPct   float64 `json:"waste_diversion_rate"`
}

type ScopeEmissions struct {
	Scope int     `json:"scope"`
	Label string  `json:"label"`
	TCO2e float64 `json:"tco2e"`
}

type SourceEmissions struct {
	Source string  `json:"source"`
	Scope  *int    `json:"scope,omitempty"`
	TCO2e  float64 `json:"tco2e"`
}

type SparklinePoint struct {
	Period string  `json:"period"` // YYYY-MM
	TCO2e  float64 `json:"tco2e"`
}

type MetricsSection struct {
	Energy *EnergyMetric `json:"energy,omitempty"`
	Water  *WaterMetric  `json:"water,omitempty"`
	Waste  *WasteMetric  `json:"waste,omitempty"`
}
