package models

// ActivityKind discriminates the six parsed source-record variants an
// Activity can originate from. Switches over ActivityKind are expected to
// cover every constant below.
type ActivityKind string

const (
	KindElectricity    ActivityKind = "parsed_electricity"
	KindStationaryFuel ActivityKind = "parsed_stationary_fuel"
	KindVehicleFuel    ActivityKind = "parsed_vehicle_fuel"
	KindShipping       ActivityKind = "parsed_shipping"
	KindWaste          ActivityKind = "parsed_waste"
	KindWater          ActivityKind = "parsed_water"
)

// ActivityType returns the canonical activity type label for a source kind.
func (k ActivityKind) ActivityType() string {
	switch k {
	case KindElectricity:
		return "purchased_electricity"
	case KindStationaryFuel:
		return "stationary_fuel_combustion"
	case KindVehicleFuel:
		return "vehicle_fuel_use"
	case KindShipping:
		return "transportation_shipping"
	case KindWaste:
		return "waste_generation"
	case KindWater:
		return "water_usage"
	}
	return "unknown"
}

// Scope returns the GHG Protocol scope for a source kind.
// Water usage is a non-GHG resource metric and has no scope (nil).
func (k ActivityKind) Scope() *int {
	var s int
	switch k {
	case KindStationaryFuel, KindVehicleFuel:
		s = 1
	case KindElectricity:
		s = 2
	case KindShipping, KindWaste:
		s = 3
	case KindWater:
		return nil
	default:
		return nil
	}
	return &s
}

// Activity is the canonical record produced by normalizing one parsed source
// row. (ParsedTable, ParsedID) is unique; a full recompute upserts in place.
type Activity struct {
	ID           int64        `json:"activity_id" db:"activity_id"`
	ParsedTable  ActivityKind `json:"parsed_table" db:"parsed_table"`
	ParsedID     int64        `json:"parsed_id" db:"parsed_id"`
	ActivityType string       `json:"activity_type" db:"activity_type"`
	Scope        *int         `json:"scope,omitempty" db:"scope"`
	Location     *string      `json:"location,omitempty" db:"location"`
	PeriodStart  *string      `json:"period_start,omitempty" db:"period_start"`
	PeriodEnd    *string      `json:"period_end,omitempty" db:"period_end"`
}

// Parsed source rows, populated by the external extraction service.
// Numeric fields arrive unit-normalized (weight in tons, distance in miles).

type ParsedElectricity struct {
	ParsedID    int64   `db:"parsed_id"`
	DocumentID  int64   `db:"document_id"`
	KWh         float64 `db:"kwh"`
	Unit        *string `db:"unit"`
	Location    *string `db:"location"`
	PeriodStart *string `db:"period_start"`
	PeriodEnd   *string `db:"period_end"`
}

type ParsedStationaryFuel struct {
	ParsedID    int64   `db:"parsed_id"`
	DocumentID  int64   `db:"document_id"`
	FuelType    *string `db:"fuel_type"`
	Quantity    float64 `db:"quantity"`
	Unit        *string `db:"unit"`
	PeriodStart *string `db:"period_start"`
	PeriodEnd   *string `db:"period_end"`
}

type ParsedVehicleFuel struct {
	ParsedID    int64   `db:"parsed_id"`
	DocumentID  int64   `db:"document_id"`
	FuelType    *string `db:"fuel_type"`
	Quantity    float64 `db:"quantity"`
	Unit        *string `db:"unit"`
	PeriodStart *string `db:"period_start"`
	PeriodEnd   *string `db:"period_end"`
}

type ParsedShipping struct {
	ParsedID      int64   `db:"parsed_id"`
	DocumentID    int64   `db:"document_id"`
	WeightTons    float64 `db:"weight_tons"`
	DistanceMiles float64 `db:"distance_miles"`
	TransportMode *string `db:"transport_mode"`
	PeriodStart   *string `db:"period_start"`
	PeriodEnd     *string `db:"period_end"`
}

type ParsedWaste struct {
	ParsedID       int64   `db:"parsed_id"`
	DocumentID     int64   `db:"document_id"`
	WasteWeight    float64 `db:"waste_weight"`
	Unit           *string `db:"unit"`
	DisposalMethod *string `db:"disposal_method"`
	PeriodStart    *string `db:"period_start"`
	PeriodEnd      *string `db:"period_end"`
}

type ParsedWater struct {
	ParsedID    int64   `db:"parsed_id"`
	DocumentID  int64   `db:"document_id"`
	WaterVolume float64 `db:"water_volume"`
	Unit        *string `db:"unit"`
	Location    *string `db:"location"`
	PeriodStart *string `db:"period_start"`
	PeriodEnd   *string `db:"period_end"`
}

// Document is a source document that contributed one or more parsed rows.
type Document struct {
	ID             int64   `json:"document_id" db:"document_id"`
	DocumentType   string  `json:"document_type" db:"document_type"`
	SourceFilename *string `json:"source_filename,omitempty" db:"source_filename"`
	CreatedAt      int64   `json:"created_at" db:"created_at"`
}
