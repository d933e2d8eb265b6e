package handlers

import (
	"errors"
	"log"
	"net/http"

	"pulse-backend/internal/services"
	"pulse-backend/pkg/utils"
)

// Refresh triggers a full recompute and snapshot publication. A refresh that
// is already running returns 409 instead of queueing a second one.
func Refresh(refresher *services.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := refresher.Run()
		if errors.Is(err, services.ErrRefreshInProgress) {
			utils.Error(w, http.StatusConflict, "a refresh is already in progress")
			return
		}
		if err != nil {
			log.Printf("❌ Refresh failed: %v", err)
			utils.Error(w, http.StatusInternalServerError, "refresh failed; previous snapshot remains published")
			return
		}
		utils.Success(w, report)
	}
}
