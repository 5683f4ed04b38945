package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/brightpath-lms/internal/feed"
	"github.com/brightpath/brightpath-lms/internal/progress"
)

// ReportProgressHandler ingests one raw consumption signal for an item.
// The engine coalesces noisy signals, ratchets the percent and decides when
// to persist; the response carries the current record either way.
func ReportProgressHandler(mgr *feed.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		var req struct {
			ItemID string          `json:"item_id" validate:"required"`
			Signal progress.Signal `json:"signal"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, err := mgr.ReportProgress(r.Context(), enrollmentID, req.ItemID, req.Signal)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
