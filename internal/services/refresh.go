package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pulse-backend/internal/models"
	"pulse-backend/internal/services/recommend"
)

// ErrRefreshInProgress signals that another refresh holds the single-flight
// lock. Callers map it to 409.
var ErrRefreshInProgress = errors.New("a refresh is already running")

// Broadcaster pushes an event to connected dashboard clients. Satisfied by
// the websocket hub; nil-safe at the call sites.
type Broadcaster interface {
	BroadcastJSON(v interface{})
}

// Refresher runs the full recompute pipeline: calculations, metrics,
// recommendations, and snapshot publication, all inside one transaction so a
// failure leaves the previous published world intact.
type Refresher struct {
	db  *sqlx.DB
	hub Broadcaster
	cfg recommend.Config
	mu  sync.Mutex
}

func NewRefresher(db *sqlx.DB, hub Broadcaster) *Refresher {
	return &Refresher{db: db, hub: hub, cfg: recommend.DefaultConfig()}
}

// RefreshReport is returned to the caller that triggered the refresh.
type RefreshReport struct {
	SnapshotVersion int64               `json:"snapshot_version"`
	Calculations    *CalculationSummary `json:"calculations"`
	Recommendations *recommend.Result   `json:"recommendations"`
	DurationMS      int64               `json:"duration_ms"`
}

// Run executes one refresh. Concurrent calls fail fast with
// ErrRefreshInProgress instead of queueing.
func (r *Refresher) Run() (*RefreshReport, error) {
	if !r.mu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer r.mu.Unlock()

	started := time.Now()
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin refresh tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	summary, err := RunCalculations(tx)
	if err != nil {
		return nil, err
	}

	metrics, metricWarnings, err := ComputeMetrics(tx)
	if err != nil {
		return nil, err
	}

	recResult, err := recommend.Generate(tx, r.cfg)
	if err != nil {
		return nil, err
	}

	if err := replaceRecommendations(tx, recResult.Selected); err != nil {
		return nil, err
	}

	warnings := append(summary.Warnings, metricWarnings...)
	warnings = append(warnings, recResult.Warnings...)
	version, err := publishSnapshot(tx, metrics, warnings)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit refresh: %w", err)
	}
	committed = true

	if r.hub != nil {
		r.hub.BroadcastJSON(map[string]interface{}{
			"type":    "snapshot_published",
			"version": version,
		})
	}

	log.Printf("[REFRESH] ✅ Published snapshot v%d in %s", version, time.Since(started).Round(time.Millisecond))
	return &RefreshReport{
		SnapshotVersion: version,
		Calculations:    summary,
		Recommendations: recResult,
		DurationMS:      time.Since(started).Milliseconds(),
	}, nil
}

// replaceRecommendations swaps the persisted set wholesale. Candidates
// without an anchoring activity are skipped.
func replaceRecommendations(tx *sqlx.Tx, selected []recommend.Candidate) error {
	if _, err := tx.Exec(`DELETE FROM recommendations`); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}
	for _, c := range selected {
		if c.ActivityID == nil {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO recommendations
				(recommendation_id, activity_id, criteria, title, recommendation_text,
				 current_kg_co2e, recommended_kg_co2e, saving_kg_co2e, saving_tco2e,
				 score, priority, record_count, source_parsed_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			uuid.New().String(), *c.ActivityID, c.Criteria, criterionTitle(c.Criteria), c.Text,
			c.CurrentKg, c.RecommendedKg, c.SavingKg, round6(c.TotalSavingKg/1000.0),
			c.Score, models.PriorityForScore(c.Score), c.RecordCount, c.SourceID,
			time.Now().Unix())
		if err != nil {
			return fmt.Errorf("insert recommendation (%s): %w", c.Criteria, err)
		}
	}
	return nil
}

func criterionTitle(criteria string) string {
	if criteria == "" {
		return "Recommendation"
	}
	words := strings.Split(strings.ReplaceAll(criteria, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// publishSnapshot builds the dashboard payload from the transaction's view of
// the world, inserts it as the next version, and advances the pointer.
func publishSnapshot(tx *sqlx.Tx, metrics models.MetricsSection, warnings []string) (int64, error) {
	payload, err := BuildSnapshotPayload(tx, metrics, warnings)
	if err != nil {
		return 0, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot payload: %w", err)
	}

	var version int64
	if err := tx.Get(&version, `SELECT COALESCE(MAX(version), 0) + 1 FROM dashboard_snapshots`); err != nil {
		return 0, fmt.Errorf("next snapshot version: %w", err)
	}
	now := time.Now().Unix()
	if _, err := tx.Exec(`
		INSERT INTO dashboard_snapshots (version, payload, refreshed_at) VALUES ($1, $2, $3)`,
		version, raw, now); err != nil {
		return 0, fmt.Errorf("insert snapshot v%d: %w", version, err)
	}
	if _, err := tx.Exec(`
		INSERT INTO snapshot_pointer (id, version) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET version = EXCLUDED.version`, version); err != nil {
		return 0, fmt.Errorf("advance snapshot pointer: %w", err)
	}
	return version, nil
}
