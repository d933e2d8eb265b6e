// Package recommend implements the content-based sustainability recommender:
// candidate generation per criterion, min-max score normalization, and an MMR
// diversity rerank that drops near-duplicates before publishing.
package recommend

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"pulse-backend/internal/models"
)

// Config tunes scoring and reranking. Values come from DefaultConfig unless
// overridden through the REC_* environment variables.
type Config struct {
	// Lambda trades relevance against diversity in the MMR rerank.
	Lambda float64
	// TopK is the number of recommendations kept per criterion.
	TopK int
	// DuplicateCutoff skips a candidate whose similarity to an already
	// selected one reaches this value.
	DuplicateCutoff float64
	// Combined-score weights for the alternative-material criterion.
	WeightSaving     float64
	WeightScore      float64
	WeightSimilarity float64
}

// DefaultConfig returns the tuned defaults, with environment overrides
// (REC_LAMBDA, REC_TOP_K, REC_DUP_CUTOFF, REC_W_SAVING, REC_W_SCORE,
// REC_W_SIMILARITY).
func DefaultConfig() Config {
	cfg := Config{
		Lambda:           0.7,
		TopK:             3,
		DuplicateCutoff:  0.93,
		WeightSaving:     0.5,
		WeightScore:      0.3,
		WeightSimilarity: 0.2,
	}
	cfg.Lambda = envFloat("REC_LAMBDA", cfg.Lambda)
	cfg.TopK = envInt("REC_TOP_K", cfg.TopK)
	cfg.DuplicateCutoff = envFloat("REC_DUP_CUTOFF", cfg.DuplicateCutoff)
	cfg.WeightSaving = envFloat("REC_W_SAVING", cfg.WeightSaving)
	cfg.WeightScore = envFloat("REC_W_SCORE", cfg.WeightScore)
	cfg.WeightSimilarity = envFloat("REC_W_SIMILARITY", cfg.WeightSimilarity)
	return cfg
}

func envFloat(key string, def float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return def
}

func envInt(key string, def int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// Candidate is one scored recommendation before persistence. Score is filled
// by Normalize; everything else by the generators.
type Candidate struct {
	Criteria      string
	ActivityID    *int64
	SourceID      *int64
	CurrentKg     float64
	RecommendedKg float64
	SavingKg      float64
	TotalSavingKg float64
	RawScore      float64
	Score         float64
	RecordCount   int
	Similarity    float64
	Features      []float64
	Text          string
}

// Source records as loaded for the recommender: parsed rows joined with their
// normalized activity id (nil when normalization has not run yet).

type ShippingRecord struct {
	models.ParsedShipping
	ActivityID *int64 `db:"activity_id"`
}

type FuelRecord struct {
	ParsedID   int64   `db:"parsed_id"`
	FuelType   *string `db:"fuel_type"`
	Quantity   float64 `db:"quantity"`
	Unit       *string `db:"unit"`
	ActivityID *int64  `db:"activity_id"`
}

type ElectricityRecord struct {
	ParsedID   int64   `db:"parsed_id"`
	KWh        float64 `db:"kwh"`
	ActivityID *int64  `db:"activity_id"`
}

// neutralDistanceKm stands in for a vendor with no recorded distance so the
// profile vector stays comparable without rewarding missing data.
const neutralDistanceKm = 100.0

func vendorDistanceKm(v models.Vendor) float64 {
	if v.DistanceKm == nil {
		return neutralDistanceKm
	}
	return *v.DistanceKm
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// allowedVendors filters a vendor pool to the current selection. An empty or
// nil selection means no restriction.
func allowedVendors(vendors []models.Vendor, selected map[string]bool) []models.Vendor {
	if len(selected) == 0 {
		return vendors
	}
	out := make([]models.Vendor, 0, len(vendors))
	for _, v := range vendors {
		if selected[v.ID] {
			out = append(out, v)
		}
	}
	return out
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

func derefStr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// GroupShipping buckets shipping rows into fingerprint groups: rounded
// distance, weight to one decimal, and mode (truck when absent). Group order
// follows first appearance so output stays deterministic.
func GroupShipping(records []ShippingRecord) [][]ShippingRecord {
	order := []string{}
	buckets := map[string][]ShippingRecord{}
	for _, r := range records {
		fp := fmt.Sprintf("%.0f|%.1f|%s",
			math.Round(r.DistanceMiles),
			math.Round(r.WeightTons*10)/10,
			derefStr(r.TransportMode, "truck"))
		if _, seen := buckets[fp]; !seen {
			order = append(order, fp)
		}
		buckets[fp] = append(buckets[fp], r)
	}
	out := make([][]ShippingRecord, 0, len(order))
	for _, fp := range order {
		out = append(out, buckets[fp])
	}
	return out
}

// GroupFuel buckets fuel rows by fuel type, unit and quantity to one decimal.
func GroupFuel(records []FuelRecord, defaultUnit string) [][]FuelRecord {
	order := []string{}
	buckets := map[string][]FuelRecord{}
	for _, r := range records {
		fp := fmt.Sprintf("%s|%s|%.1f",
			derefStr(r.FuelType, ""),
			derefStr(r.Unit, defaultUnit),
			math.Round(r.Quantity*10)/10)
		if _, seen := buckets[fp]; !seen {
			order = append(order, fp)
		}
		buckets[fp] = append(buckets[fp], r)
	}
	out := make([][]FuelRecord, 0, len(order))
	for _, fp := range order {
		out = append(out, buckets[fp])
	}
	return out
}
