package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse-backend/internal/models"
)

func strPtr(s string) *string   { return &s }
func i64Ptr(v int64) *int64     { return &v }
func f64Ptr(v float64) *float64 { return &v }

func shipRecord(id int64, dist, weight float64, mode string) ShippingRecord {
	r := ShippingRecord{ActivityID: i64Ptr(id)}
	r.ParsedID = id
	r.DistanceMiles = dist
	r.WeightTons = weight
	if mode != "" {
		r.TransportMode = strPtr(mode)
	}
	return r
}

func TestGroupShippingFingerprints(t *testing.T) {
	records := []ShippingRecord{
		shipRecord(1, 500.2, 2.01, "truck"),
		shipRecord(2, 499.8, 2.04, "truck"), // same fingerprint: 500 | 2.0 | truck
		shipRecord(3, 500.2, 2.01, "rail"),
		shipRecord(4, 120, 1, ""), // empty mode fingerprints as truck
		shipRecord(5, 120, 1, "truck"),
	}
	groups := GroupShipping(records)
	require.Len(t, groups, 3)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 1)
	assert.Len(t, groups[2], 2)
}

func TestModeChangePicksBestFeasibilityWeightedSaving(t *testing.T) {
	groups := GroupShipping([]ShippingRecord{shipRecord(1, 1000, 1, "truck")})
	cands := ModeChangeCandidates(groups)
	require.Len(t, cands, 1)

	c := cands[0]
	// truck: 1000*1*0.1693 = 169.3; rail: 22.9 (saving 146.4, feas 0.70);
	// ship: 9.8 (saving 159.5, feas 0.50). Rail wins on weighted saving.
	assert.InDelta(t, 169.3, c.CurrentKg, 1e-6)
	assert.InDelta(t, 22.9, c.RecommendedKg, 1e-6)
	assert.InDelta(t, 146.4, c.SavingKg, 1e-6)
	assert.InDelta(t, 146.4*0.70, c.RawScore, 1e-6)
	assert.Contains(t, c.Text, "rail")
}

func TestModeChangeViabilityDistances(t *testing.T) {
	// 50 mi: rail (<100) and ship (<200) not viable, air is worse than truck.
	short := ModeChangeCandidates(GroupShipping([]ShippingRecord{shipRecord(1, 50, 1, "truck")}))
	assert.Empty(t, short)

	// 150 mi: rail viable, ship still not.
	mid := ModeChangeCandidates(GroupShipping([]ShippingRecord{shipRecord(2, 150, 1, "truck")}))
	require.Len(t, mid, 1)
	assert.Contains(t, mid[0].Text, "rail")

	// 600 mi: both viable; ship's larger saving does not beat rail's weight
	// here (rail 0.70 vs ship 0.50), so rail is still picked.
	long := ModeChangeCandidates(GroupShipping([]ShippingRecord{shipRecord(3, 600, 1, "truck")}))
	require.Len(t, long, 1)
	assert.Contains(t, long[0].Text, "rail")
}

func TestModeChangeGroupMultipliesSaving(t *testing.T) {
	groups := GroupShipping([]ShippingRecord{
		shipRecord(1, 1000, 1, "truck"),
		shipRecord(2, 1000, 1, "truck"),
		shipRecord(3, 1000, 1, "truck"),
	})
	cands := ModeChangeCandidates(groups)
	require.Len(t, cands, 1)
	assert.Equal(t, 3, cands[0].RecordCount)
	assert.InDelta(t, 146.4*3, cands[0].TotalSavingKg, 1e-6)
	assert.InDelta(t, 146.4*3*0.70, cands[0].RawScore, 1e-6)
}

func logisticsVendor(id, name string, distKm *float64, score int) models.Vendor {
	return models.Vendor{
		ID: id, Name: name, Category: "Logistics",
		CarbonIntensity: 0.5, SustainabilityScore: score, DistanceKm: distKm,
	}
}

func TestCloserHaulerOnlyMatchesCloserVendors(t *testing.T) {
	groups := GroupShipping([]ShippingRecord{shipRecord(1, 500, 2, "truck")})
	vendors := []models.Vendor{
		logisticsVendor("V1", "Near Freight", f64Ptr(50), 90),   // 31.1 mi, closer
		logisticsVendor("V2", "Far Freight", f64Ptr(1000), 95),  // 621.4 mi, farther
		logisticsVendor("V3", "No Distance", nil, 99),           // unusable
	}
	cands, warnings := CloserHaulerCandidates(groups, vendors)
	require.Len(t, cands, 1)

	// the distance-less vendor is reported, once, instead of silently dropped
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "No Distance")
	assert.Contains(t, warnings[0], "no recorded distance")

	c := cands[0]
	assert.Contains(t, c.Text, "Near Freight")
	// current: 500*2*0.1693 = 169.3; new: 31.06855*2*0.1693
	assert.InDelta(t, 169.3, c.CurrentKg, 1e-4)
	newKg := 50 * 0.621371 * 2 * 0.1693
	assert.InDelta(t, newKg, c.RecommendedKg, 1e-4)
	assert.InDelta(t, 169.3-newKg, c.SavingKg, 1e-3)
	assert.InDelta(t, (169.3-newKg)*0.90, c.RawScore, 1e-3)
	assert.Greater(t, c.Similarity, 0.0)
}

func TestCloserHaulerSkipsDegenerateGroups(t *testing.T) {
	groups := GroupShipping([]ShippingRecord{
		shipRecord(1, 0, 2, "truck"),
		shipRecord(2, 500, 0, "truck"),
	})
	vendors := []models.Vendor{logisticsVendor("V1", "Near", f64Ptr(10), 90)}
	cands, warnings := CloserHaulerCandidates(groups, vendors)
	assert.Empty(t, cands)
	assert.Empty(t, warnings)
}

func TestCloserHaulerWarnsOncePerDistancelessVendor(t *testing.T) {
	groups := GroupShipping([]ShippingRecord{
		shipRecord(1, 500, 2, "truck"),
		shipRecord(2, 300, 1, "truck"),
	})
	vendors := []models.Vendor{logisticsVendor("V1", "Mystery Freight", nil, 90)}
	cands, warnings := CloserHaulerCandidates(groups, vendors)
	assert.Empty(t, cands)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Mystery Freight")
}

func TestAltMaterialRecommendsGreenerSubstitute(t *testing.T) {
	vendors := []models.Vendor{
		{ID: "P1", Name: "Dirty Paper", Category: "Packaging", CarbonIntensity: 8.0, SustainabilityScore: 40, DistanceKm: f64Ptr(200)},
		{ID: "P2", Name: "Green Paper", Category: "Packaging", CarbonIntensity: 2.0, SustainabilityScore: 85, DistanceKm: f64Ptr(120)},
		{ID: "L1", Name: "Hauler", Category: "Logistics", CarbonIntensity: 0.1, SustainabilityScore: 99, DistanceKm: f64Ptr(10)},
		{ID: "S1", Name: "Lone Supplier", Category: "Chemicals", CarbonIntensity: 5.0, SustainabilityScore: 50},
	}
	cands := AltMaterialCandidates(vendors, nil, i64Ptr(7), DefaultConfig())
	require.Len(t, cands, 1) // Logistics excluded, singleton category skipped

	c := cands[0]
	assert.Equal(t, models.CriterionAltMaterial, c.Criteria)
	assert.InDelta(t, 8.0, c.CurrentKg, 1e-9)
	assert.InDelta(t, 2.0, c.RecommendedKg, 1e-9)
	assert.InDelta(t, 6.0, c.SavingKg, 1e-9)
	assert.Contains(t, c.Text, "Dirty Paper")
	assert.Contains(t, c.Text, "Green Paper")
	require.NotNil(t, c.ActivityID)
	assert.EqualValues(t, 7, *c.ActivityID)

	// combined = 0.5*saving_pct + 0.3*(score/100) + 0.2*similarity
	assert.Greater(t, c.RawScore, 0.5*0.75+0.3*0.85)
	assert.LessOrEqual(t, c.RawScore, 0.5*0.75+0.3*0.85+0.2+1e-9)
}

func TestAltMaterialEmitsAllLowerIntensityVendors(t *testing.T) {
	vendors := []models.Vendor{
		{ID: "P1", Name: "Worst", Category: "Packaging", CarbonIntensity: 9.0, SustainabilityScore: 30, DistanceKm: f64Ptr(100)},
		{ID: "P2", Name: "Better", Category: "Packaging", CarbonIntensity: 5.0, SustainabilityScore: 60, DistanceKm: f64Ptr(100)},
		{ID: "P3", Name: "Best", Category: "Packaging", CarbonIntensity: 1.0, SustainabilityScore: 90, DistanceKm: f64Ptr(100)},
	}
	cands := AltMaterialCandidates(vendors, nil, nil, DefaultConfig())
	assert.Len(t, cands, 2)
}

func TestAltMaterialRestrictsSubstitutesToSelection(t *testing.T) {
	vendors := []models.Vendor{
		{ID: "P1", Name: "Worst", Category: "Packaging", CarbonIntensity: 9.0, SustainabilityScore: 30, DistanceKm: f64Ptr(100)},
		{ID: "P2", Name: "Better", Category: "Packaging", CarbonIntensity: 5.0, SustainabilityScore: 60, DistanceKm: f64Ptr(100)},
		{ID: "P3", Name: "Best", Category: "Packaging", CarbonIntensity: 1.0, SustainabilityScore: 90, DistanceKm: f64Ptr(100)},
	}

	cands := AltMaterialCandidates(vendors, map[string]bool{"P2": true}, nil, DefaultConfig())
	require.Len(t, cands, 1)
	// the baseline stays the category's worst vendor even though it is not
	// selected; only the substitute side is restricted
	assert.InDelta(t, 9.0, cands[0].CurrentKg, 1e-9)
	assert.InDelta(t, 5.0, cands[0].RecommendedKg, 1e-9)
	assert.Contains(t, cands[0].Text, "Better")
}

func TestAllowedVendorsFiltersToSelection(t *testing.T) {
	vendors := []models.Vendor{
		logisticsVendor("V1", "Kept", f64Ptr(10), 90),
		logisticsVendor("V2", "Dropped", f64Ptr(20), 80),
	}

	// empty selection means no restriction
	assert.Len(t, allowedVendors(vendors, nil), 2)
	assert.Len(t, allowedVendors(vendors, map[string]bool{}), 2)

	kept := allowedVendors(vendors, map[string]bool{"V1": true})
	require.Len(t, kept, 1)
	assert.Equal(t, "Kept", kept[0].Name)
}

func TestSelectTopKNeverExceedsK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopK = 3

	var cands []Candidate
	for i := 0; i < 8; i++ {
		cands = append(cands, Candidate{
			RawScore: float64(i + 1),
			Features: []float64{float64(i + 1), float64(8 - i), float64(i * i), 1},
		})
	}
	out := SelectTopK(cands, cfg)
	assert.LessOrEqual(t, len(out), cfg.TopK)
	// best normalized score always survives the rerank
	assert.Equal(t, 1.0, out[0].Score)

	assert.Empty(t, SelectTopK(nil, cfg))
}

func TestReduceFuelDieselToGasoline(t *testing.T) {
	rec := FuelRecord{ParsedID: 1, FuelType: strPtr("diesel"), Unit: strPtr("gallon"), Quantity: 100, ActivityID: i64Ptr(1)}
	cands := ReduceFuelCandidates(GroupFuel([]FuelRecord{rec}, "gallon"), nil, nil)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.InDelta(t, 1018.0, c.CurrentKg, 1e-6)
	assert.InDelta(t, 888.78, c.RecommendedKg, 1e-6)
	assert.InDelta(t, 129.22, c.SavingKg, 1e-6)
	// no vendors: fallback weight 0.5
	assert.InDelta(t, 129.22*0.5, c.RawScore, 1e-6)
	assert.Contains(t, c.Text, "gasoline")
}

func TestReduceFuelHeatingOilToPropane(t *testing.T) {
	rec := FuelRecord{ParsedID: 2, FuelType: strPtr("heating_oil"), Unit: strPtr("gallon"), Quantity: 50, ActivityID: i64Ptr(2)}
	cands := ReduceFuelCandidates(nil, GroupFuel([]FuelRecord{rec}, "therm"), nil)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.InDelta(t, 50*10.1530, c.CurrentKg, 1e-6)
	assert.InDelta(t, 50*5.7260, c.RecommendedKg, 1e-6)
	assert.InDelta(t, c.SavingKg*0.7, c.RawScore, 1e-6)
	assert.Contains(t, c.Text, "propane")
}

func TestReduceFuelIgnoresNonSwitchableFuels(t *testing.T) {
	gas := FuelRecord{ParsedID: 3, FuelType: strPtr("gasoline"), Unit: strPtr("gallon"), Quantity: 100}
	cands := ReduceFuelCandidates(GroupFuel([]FuelRecord{gas}, "gallon"), nil, nil)
	assert.Empty(t, cands)
}

func TestGreenElectricityFiltersByGridFactor(t *testing.T) {
	records := []ElectricityRecord{
		{ParsedID: 1, KWh: 1000, ActivityID: i64Ptr(11)},
		{ParsedID: 2, KWh: 500},
	}
	vendors := []models.Vendor{
		{ID: "E1", Name: "Solar Co", Category: "Energy", CarbonIntensity: 0.05, SustainabilityScore: 92, DistanceKm: f64Ptr(30)},
		{ID: "E2", Name: "Coal Co", Category: "Energy", CarbonIntensity: 0.90, SustainabilityScore: 20, DistanceKm: f64Ptr(30)},
	}
	cands := GreenElectricityCandidates(records, vendors)
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Contains(t, c.Text, "Solar Co")
	assert.InDelta(t, 1500*0.3862, c.CurrentKg, 1e-4)
	assert.InDelta(t, 1500*0.05, c.RecommendedKg, 1e-4)
	assert.Equal(t, 2, c.RecordCount)
	require.NotNil(t, c.ActivityID)
	assert.EqualValues(t, 11, *c.ActivityID)
}

func TestGreenElectricityNeedsAnchorActivity(t *testing.T) {
	records := []ElectricityRecord{{ParsedID: 1, KWh: 1000}}
	vendors := []models.Vendor{
		{ID: "E1", Name: "Solar Co", Category: "Energy", CarbonIntensity: 0.05, SustainabilityScore: 92},
	}
	assert.Empty(t, GreenElectricityCandidates(records, vendors))
}

func TestNormalizeSingleCandidateScoresOne(t *testing.T) {
	cands := []Candidate{{RawScore: 42}}
	Normalize(cands)
	assert.Equal(t, 1.0, cands[0].Score)
}

func TestNormalizeMinMax(t *testing.T) {
	cands := []Candidate{{RawScore: 10}, {RawScore: 30}, {RawScore: 20}}
	Normalize(cands)
	assert.InDelta(t, 0.0, cands[0].Score, 1e-9)
	assert.InDelta(t, 1.0, cands[1].Score, 1e-9)
	assert.InDelta(t, 0.5, cands[2].Score, 1e-9)
}

func TestNormalizeTiedScoresAllOne(t *testing.T) {
	cands := []Candidate{{RawScore: 5}, {RawScore: 5}, {RawScore: 5}}
	Normalize(cands)
	for _, c := range cands {
		assert.Equal(t, 1.0, c.Score)
	}
}

func TestRerankStartsAtBestScore(t *testing.T) {
	cands := []Candidate{
		{Score: 0.2, Features: []float64{1, 0, 0}},
		{Score: 0.9, Features: []float64{0, 1, 0}},
		{Score: 0.5, Features: []float64{0, 0, 1}},
	}
	out := Rerank(cands, 0.7, 0.93)
	require.Len(t, out, 3)
	assert.Equal(t, 0.9, out[0].Score)
}

func TestRerankDropsNearDuplicates(t *testing.T) {
	cands := []Candidate{
		{Score: 1.0, Features: []float64{100, 10, 50, 80}},
		{Score: 0.9, Features: []float64{100, 10, 50, 80}}, // identical profile, sim = 1.0
		{Score: 0.3, Features: []float64{5, 90, 1, 10}},
	}
	out := Rerank(cands, 0.7, 0.93)
	require.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].Score)
	assert.Equal(t, 0.3, out[1].Score)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 2}))
}

func TestDefaultConfigEnvOverrides(t *testing.T) {
	t.Setenv("REC_LAMBDA", "0.5")
	t.Setenv("REC_TOP_K", "5")
	cfg := DefaultConfig()
	assert.Equal(t, 0.5, cfg.Lambda)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 0.93, cfg.DuplicateCutoff)
}
