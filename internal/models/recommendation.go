package models

// Recommendation criteria labels. The persisted set is replaced wholesale on
// every refresh — never patched incrementally.
const (
	CriterionCloserHauler     = "better_closer_hauler"
	CriterionAltMaterial      = "alternative_material"
	CriterionModeChange       = "change_shipment_method"
	CriterionReduceFuel       = "reduce_fuel_emissions"
	CriterionGreenElectricity = "green_electricity"
)

type Recommendation struct {
	ID            string  `json:"id" db:"recommendation_id"`
	ActivityID    *int64  `json:"activity_id,omitempty" db:"activity_id"`
	Criteria      string  `json:"criteria" db:"criteria"`
	Title         string  `json:"title" db:"title"`
	Description   string  `json:"description" db:"recommendation_text"`
	CurrentKg     float64 `json:"current_kg_co2e" db:"current_kg_co2e"`
	RecommendedKg float64 `json:"recommended_kg_co2e" db:"recommended_kg_co2e"`
	SavingKg      float64 `json:"saving_kg_co2e" db:"saving_kg_co2e"`
	SavingTons    float64 `json:"potential_saving_tco2e" db:"saving_tco2e"`
	Score         float64 `json:"score" db:"score"`
	Priority      string  `json:"priority" db:"priority"`
	RecordCount   int     `json:"records_affected" db:"record_count"`
	SourceID      *int64  `json:"source_parsed_id,omitempty" db:"source_parsed_id"`
	CreatedAt     int64   `json:"created_at" db:"created_at"`
}

// PriorityForScore derives priority from a normalized [0,1] score.
func PriorityForScore(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "medium"
	default:
		return "low"
	}
}
