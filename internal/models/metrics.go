package models

// EnergyMetric is a period-keyed energy-intensity aggregate.
// Intensity = TotalKWh / DenominatorValue (e.g. kWh per employee).
type EnergyMetric struct {
	ID               int64   `json:"id" db:"id"`
	PeriodStart      *string `json:"period_start,omitempty" db:"period_start"`
	PeriodEnd        *string `json:"period_end,omitempty" db:"period_end"`
	TotalKWh         float64 `json:"total_kwh" db:"total_kwh"`
	DenominatorType  string  `json:"denominator_type" db:"denominator_type"`
	DenominatorValue float64 `json:"denominator_value" db:"denominator_value"`
	IntensityValue   float64 `json:"energy_intensity_value" db:"energy_intensity_value"`
	IntensityUnit    string  `json:"energy_intensity_unit" db:"energy_intensity_unit"`
}

// WaterMetric is a period-keyed water-usage aggregate. Totals are reported in
// both gallons and cubic meters (1 m3 = 264.172 gal).
type WaterMetric struct {
	ID           int64   `json:"id" db:"id"`
	PeriodStart  *string `json:"period_start,omitempty" db:"period_start"`
	PeriodEnd    *string `json:"period_end,omitempty" db:"period_end"`
	TotalGallons float64 `json:"total_water_gallons" db:"total_water_gallons"`
	TotalM3      float64 `json:"total_water_m3" db:"total_water_m3"`
	RecordCount  int     `json:"record_count" db:"record_count"`
}

// WasteMetric is a period-keyed waste aggregate. DiversionRate is always in
// [0,1]; when TotalWasteKg is 0 the rate is reported as 0 with NoWasteData
// set, never NaN.
type WasteMetric struct {
	ID            int64   `json:"id" db:"id"`
	PeriodStart   *string `json:"period_start,omitempty" db:"period_start"`
	PeriodEnd     *string `json:"period_end,omitempty" db:"period_end"`
	TotalWasteKg  float64 `json:"total_waste_kg" db:"total_waste_kg"`
	RecycledKg    float64 `json:"recycled_waste_kg" db:"recycled_waste_kg"`
	CompostedKg   float64 `json:"composted_waste_kg" db:"composted_waste_kg"`
	LandfillKg    float64 `json:"landfill_waste_kg" db:"landfill_waste_kg"`
	DiversionRate float64 `json:"diversion_rate" db:"diversion_rate"`
	NoWasteData   bool    `json:"no_waste_data" db:"no_waste_data"`
}
