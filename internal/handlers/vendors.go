package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pulse-backend/internal/models"
	"pulse-backend/pkg/utils"
)

// GetVendors lists the vendor knowledge base, most sustainable first.
func GetVendors(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendors := []models.Vendor{}
		err := db.Select(&vendors, `
			SELECT vendor_id, vendor_name, category, product_or_service,
			       carbon_intensity, sustainability_score, distance_km_from_sme
			FROM vendors
			ORDER BY sustainability_score DESC, vendor_name`)
		if err != nil {
			log.Printf("❌ Failed to load vendors: %v", err)
			utils.Error(w, http.StatusInternalServerError, "failed to load vendors")
			return
		}
		utils.Success(w, map[string]interface{}{
			"count":   len(vendors),
			"vendors": vendors,
		})
	}
}

// GetSelectedVendors returns the ids of the current vendor selection in
// selection order.
func GetSelectedVendors(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := []string{}
		if err := db.Select(&ids, `SELECT vendor_id FROM selected_vendors ORDER BY selected_at`); err != nil {
			log.Printf("❌ Failed to load selected vendors: %v", err)
			utils.Error(w, http.StatusInternalServerError, "failed to load selected vendors")
			return
		}
		utils.Success(w, map[string]interface{}{"vendor_ids": ids})
	}
}

type setSelectedVendorsRequest struct {
	VendorIDs []string `json:"vendor_ids"`
}

// SetSelectedVendors replaces the current selection wholesale. Unknown ids
// are silently dropped.
func SetSelectedVendors(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setSelectedVendorsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update selection")
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM selected_vendors`); err != nil {
			log.Printf("❌ Failed to clear vendor selection: %v", err)
			utils.Error(w, http.StatusInternalServerError, "failed to update selection")
			return
		}

		saved := []string{}
		if len(req.VendorIDs) > 0 {
			valid := []string{}
			if err := tx.Select(&valid, `SELECT vendor_id FROM vendors WHERE vendor_id = ANY($1)`,
				pq.Array(req.VendorIDs)); err != nil {
				log.Printf("❌ Failed to validate vendor ids: %v", err)
				utils.Error(w, http.StatusInternalServerError, "failed to update selection")
				return
			}
			validSet := map[string]bool{}
			for _, id := range valid {
				validSet[id] = true
			}
			for _, id := range req.VendorIDs {
				if !validSet[id] || contains(saved, id) {
					continue
				}
				if _, err := tx.Exec(`INSERT INTO selected_vendors (vendor_id) VALUES ($1)`, id); err != nil {
					log.Printf("❌ Failed to insert vendor selection %s: %v", id, err)
					utils.Error(w, http.StatusInternalServerError, "failed to update selection")
					return
				}
				saved = append(saved, id)
			}
		}

		if err := tx.Commit(); err != nil {
			utils.Error(w, http.StatusInternalServerError, "failed to update selection")
			return
		}
		utils.Success(w, map[string]interface{}{"vendor_ids": saved})
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
