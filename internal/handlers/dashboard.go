package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"pulse-backend/internal/services"
	"pulse-backend/pkg/utils"
)

// GetDashboard returns the currently published snapshot. 404 means no
// snapshot exists yet and the client should POST /api/refresh first.
func GetDashboard(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := services.GetSnapshot(db)
		if errors.Is(err, services.ErrNoSnapshot) {
			utils.Error(w, http.StatusNotFound, "no dashboard snapshot published yet; trigger a refresh")
			return
		}
		if err != nil {
			log.Printf("❌ Failed to read snapshot: %v", err)
			utils.Error(w, http.StatusInternalServerError, "failed to read dashboard snapshot")
			return
		}
		utils.Success(w, snap)
	}
}

// snapshotSection serves one top-level section of the published payload so
// lightweight widgets can avoid pulling the whole snapshot.
func snapshotSection(db *sqlx.DB, section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := services.GetSnapshot(db)
		if errors.Is(err, services.ErrNoSnapshot) {
			utils.Error(w, http.StatusNotFound, "no dashboard snapshot published yet; trigger a refresh")
			return
		}
		if err != nil {
			log.Printf("❌ Failed to read snapshot: %v", err)
			utils.Error(w, http.StatusInternalServerError, "failed to read dashboard snapshot")
			return
		}

		var payload map[string]json.RawMessage
		if err := json.Unmarshal(snap.Payload, &payload); err != nil {
			log.Printf("❌ Corrupt snapshot payload v%d: %v", snap.Version, err)
			utils.Error(w, http.StatusInternalServerError, "corrupt snapshot payload")
			return
		}

		part, ok := payload[section]
		if !ok {
			utils.Error(w, http.StatusNotFound, "section not present in snapshot")
			return
		}
		utils.Success(w, map[string]interface{}{
			"version":      snap.Version,
			"refreshed_at": snap.RefreshedAt,
			section:        part,
		})
	}
}

func GetKPIs(db *sqlx.DB) http.HandlerFunc {
	return snapshotSection(db, "kpis")
}

func GetEmissionsByScope(db *sqlx.DB) http.HandlerFunc {
	return snapshotSection(db, "emissions_by_scope")
}

func GetEmissionsBySource(db *sqlx.DB) http.HandlerFunc {
	return snapshotSection(db, "emissions_by_source")
}

func GetSparkline(db *sqlx.DB) http.HandlerFunc {
	return snapshotSection(db, "sparkline")
}
