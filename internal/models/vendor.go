package models

// Vendor is a row of the vendor knowledge base. Read-only input to the
// recommendation engine; mutated only by vendor management.
type Vendor struct {
	ID                  string   `json:"vendor_id" db:"vendor_id"`
	Name                string   `json:"vendor_name" db:"vendor_name"`
	Category            string   `json:"category" db:"category"`
	ProductOrService    string   `json:"product_or_service" db:"product_or_service"`
	CarbonIntensity     float64  `json:"carbon_intensity" db:"carbon_intensity"`
	SustainabilityScore int      `json:"sustainability_score" db:"sustainability_score"`
	DistanceKm          *float64 `json:"distance_km_from_sme,omitempty" db:"distance_km_from_sme"`
}

// DistanceMiles converts the stored km distance, returning ok=false when the
// vendor has no recorded distance.
func (v *Vendor) DistanceMiles() (float64, bool) {
	if v.DistanceKm == nil {
		return 0, false
	}
	return *v.DistanceKm * 0.621371, true
}
