package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pulse-backend/internal/models"
)

// ErrNoSnapshot means no snapshot has been published yet; clients should
// trigger a refresh.
var ErrNoSnapshot = errors.New("no dashboard snapshot published")

// BuildSnapshotPayload assembles the full dashboard payload from the
// transaction's view: KPIs, scope and source breakdowns, the monthly
// sparkline, current recommendations and the latest metrics.
func BuildSnapshotPayload(tx *sqlx.Tx, metrics models.MetricsSection, warnings []string) (*models.SnapshotPayload, error) {
	byScope, err := EmissionsByScope(tx)
	if err != nil {
		return nil, err
	}
	bySource, err := EmissionsBySource(tx)
	if err != nil {
		return nil, err
	}
	sparkline, err := Sparkline(tx)
	if err != nil {
		return nil, err
	}

	var recs []models.Recommendation
	if err := tx.Select(&recs, `
		SELECT recommendation_id, activity_id, criteria, title, recommendation_text,
		       current_kg_co2e, recommended_kg_co2e, saving_kg_co2e, saving_tco2e,
		       score, priority, record_count, source_parsed_id, created_at
		FROM recommendations
		ORDER BY score DESC, criteria`); err != nil {
		return nil, fmt.Errorf("load recommendations for snapshot: %w", err)
	}

	var totalTons float64
	for _, s := range byScope {
		totalTons += s.TCO2e
	}

	kpis := models.KPIs{TotalEmissionsTCO2e: round4(totalTons)}
	if metrics.Energy != nil {
		kpis.EnergyKWh = metrics.Energy.TotalKWh
	}
	if metrics.Water != nil {
		kpis.WaterM3 = metrics.Water.TotalM3
	}
	if metrics.Waste != nil {
		kpis.WasteDiversionPct = round4(metrics.Waste.DiversionRate * 100)
	}

	if warnings == nil {
		warnings = []string{}
	}
	return &models.SnapshotPayload{
		KPIs:              kpis,
		EmissionsByScope:  byScope,
		EmissionsBySource: bySource,
		Sparkline:         sparkline,
		Recommendations:   recs,
		Metrics:           metrics,
		Warnings:          warnings,
	}, nil
}

// GetSnapshot returns the snapshot the pointer currently references. Readers
// never see a partially refreshed payload: the pointer only moves inside the
// refresh transaction.
func GetSnapshot(db *sqlx.DB) (*models.Snapshot, error) {
	var snap models.Snapshot
	err := db.Get(&snap, `
		SELECT s.version, s.payload, s.refreshed_at
		FROM dashboard_snapshots s
		JOIN snapshot_pointer p ON p.version = s.version
		WHERE p.id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return &snap, nil
}
