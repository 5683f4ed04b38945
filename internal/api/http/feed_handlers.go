package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/brightpath-lms/internal/feed"
)

type feedSnapshot struct {
	Enrollment  interface{}  `json:"enrollment"`
	Items       interface{}  `json:"items"`
	Records     interface{}  `json:"records"`
	ActiveIndex int          `json:"active_index"`
	Resume      feed.Outcome `json:"resume"`
}

// GetFeedHandler returns the session snapshot and resolves the initial
// resume position (idempotent after the first call).
func GetFeedHandler(mgr *feed.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		c, err := mgr.Controller(r.Context(), enrollmentID)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		s := c.Session()
		resume, err := mgr.Resume(r.Context(), enrollmentID)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, feedSnapshot{
			Enrollment:  s.Enrollment,
			Items:       s.Items,
			Records:     s.Records(),
			ActiveIndex: resume.Index,
			Resume:      resume,
		})
	}
}

// AdvanceHandler feeds an explicit navigation intent through the gate.
func AdvanceHandler(mgr *feed.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		var req struct {
			From    int    `json:"from"`
			To      int    `json:"to"`
			Trigger string `json:"trigger" validate:"omitempty,oneof=visibility gesture jump"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		trigger := feed.Trigger(req.Trigger)
		if trigger == "" {
			trigger = feed.TriggerVisibility
		}
		out, err := mgr.Advance(r.Context(), enrollmentID,
			feed.Advance{From: req.From, To: req.To, Trigger: trigger})
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// WheelHandler applies an accumulated wheel/trackpad delta.
func WheelHandler(mgr *feed.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		var req struct {
			Delta float64 `json:"delta" validate:"required"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		out, err := mgr.Wheel(r.Context(), enrollmentID, req.Delta)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// JumpHandler is the sidebar/table-of-contents path; it bypasses gating.
func JumpHandler(mgr *feed.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		var req struct {
			To int `json:"to"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		out, err := mgr.Advance(r.Context(), enrollmentID,
			feed.Advance{To: req.To, Trigger: feed.TriggerJump})
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// AckAssignmentHandler dismisses an assignment checkpoint and performs any
// deferred advance.
func AckAssignmentHandler(mgr *feed.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		var req struct {
			ItemID string `json:"item_id" validate:"required"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		out, err := mgr.Acknowledge(r.Context(), enrollmentID, req.ItemID)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
