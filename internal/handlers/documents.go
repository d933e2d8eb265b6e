package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"pulse-backend/internal/models"
	"pulse-backend/pkg/utils"
)

// parsedSources unions the six parsed tables into (parsed_table, parsed_id,
// document_id) so documents can be joined to the activity ledger.
const parsedSources = `
	SELECT 'parsed_electricity' AS parsed_table, parsed_id, document_id FROM parsed_electricity
	UNION ALL SELECT 'parsed_stationary_fuel', parsed_id, document_id FROM parsed_stationary_fuel
	UNION ALL SELECT 'parsed_vehicle_fuel', parsed_id, document_id FROM parsed_vehicle_fuel
	UNION ALL SELECT 'parsed_shipping', parsed_id, document_id FROM parsed_shipping
	UNION ALL SELECT 'parsed_waste', parsed_id, document_id FROM parsed_waste
	UNION ALL SELECT 'parsed_water', parsed_id, document_id FROM parsed_water`

// GetDocuments lists ingested documents, newest first. Optional ?scope=
// keeps only documents that contributed at least one activity in that GHG
// scope; optional ?type= filters on document type.
func GetDocuments(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `SELECT d.document_id, d.document_type, d.source_filename, d.created_at FROM documents d`
		where := ``
		args := []interface{}{}
		if scope := r.URL.Query().Get("scope"); scope != "" {
			args = append(args, scope)
			where = ` WHERE EXISTS (
				SELECT 1 FROM (` + parsedSources + `) p
				JOIN activities a ON a.parsed_table = p.parsed_table AND a.parsed_id = p.parsed_id
				WHERE p.document_id = d.document_id AND a.scope = $1)`
		}
		if docType := r.URL.Query().Get("type"); docType != "" {
			args = append(args, docType)
			clause := fmt.Sprintf(`d.document_type = $%d`, len(args))
			if where == "" {
				where = ` WHERE ` + clause
			} else {
				where += ` AND ` + clause
			}
		}
		query += where + ` ORDER BY d.created_at DESC, d.document_id DESC`

		docs := []models.Document{}
		if err := db.Select(&docs, query, args...); err != nil {
			log.Printf("❌ Failed to load documents: %v", err)
			utils.Error(w, http.StatusInternalServerError, "failed to load documents")
			return
		}
		utils.Success(w, map[string]interface{}{
			"count":     len(docs),
			"documents": docs,
		})
	}
}

// GetActivities lists normalized activities, optionally filtered by GHG
// scope (?scope=1|2|3).
func GetActivities(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `
			SELECT a.activity_id, a.parsed_table, a.parsed_id, a.activity_type,
			       a.scope, a.location, a.period_start, a.period_end
			FROM activities a`
		args := []interface{}{}
		if scope := r.URL.Query().Get("scope"); scope != "" {
			query += ` WHERE a.scope = $1`
			args = append(args, scope)
		}
		query += ` ORDER BY a.activity_id`

		activities := []models.Activity{}
		if err := db.Select(&activities, query, args...); err != nil {
			log.Printf("❌ Failed to load activities: %v", err)
			utils.Error(w, http.StatusInternalServerError, "failed to load activities")
			return
		}
		utils.Success(w, map[string]interface{}{
			"count":      len(activities),
			"activities": activities,
		})
	}
}
