package handlers

import (
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"pulse-backend/internal/models"
	"pulse-backend/pkg/utils"
)

// GetRecommendations lists current recommendations, best score first.
// Optional ?criteria= filters to one criterion.
func GetRecommendations(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `
			SELECT recommendation_id, activity_id, criteria, title, recommendation_text,
			       current_kg_co2e, recommended_kg_co2e, saving_kg_co2e, saving_tco2e,
			       score, priority, record_count, source_parsed_id, created_at
			FROM recommendations`
		args := []interface{}{}
		if criteria := r.URL.Query().Get("criteria"); criteria != "" {
			query += ` WHERE criteria = $1`
			args = append(args, criteria)
		}
		query += ` ORDER BY score DESC, criteria`

		recs := []models.Recommendation{}
		if err := db.Select(&recs, query, args...); err != nil {
			log.Printf("❌ Failed to load recommendations: %v", err)
			utils.Error(w, http.StatusInternalServerError, "failed to load recommendations")
			return
		}

		utils.Success(w, map[string]interface{}{
			"count":           len(recs),
			"recommendations": recs,
		})
	}
}
