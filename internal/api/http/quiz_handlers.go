package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/brightpath-lms/internal/feed"
	"github.com/brightpath/brightpath-lms/internal/progress"
	"github.com/brightpath/brightpath-lms/internal/quiz"
)

// GetQuizHandler serves the question set with correctness metadata
// stripped.
func GetQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := chi.URLParam(r, "itemID")
		questions, err := svc.Load(r.Context(), itemID)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quiz.Sanitize(questions))
	}
}

// AnswerQuizHandler records one answer and returns the updated progress
// plus the next visible question index.
func AnswerQuizHandler(mgr *feed.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		itemID := chi.URLParam(r, "itemID")
		var req struct {
			QuestionID string `json:"question_id" validate:"required"`
			OptionID   string `json:"option_id"`
			Text       string `json:"text"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		rec, pointer, err := mgr.AnswerQuiz(r.Context(), enrollmentID, itemID,
			req.QuestionID, req.OptionID, req.Text)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Record  progress.Record `json:"record"`
			Pointer int             `json:"pointer"`
		}{rec, pointer})
	}
}

// SubmitQuizHandler performs the idempotent submission. Resubmitting (e.g.
// a retry after a transient failure) updates the existing record.
func SubmitQuizHandler(mgr *feed.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		itemID := chi.URLParam(r, "itemID")
		sub, rec, err := mgr.SubmitQuiz(r.Context(), enrollmentID, itemID)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Submission quiz.Submission `json:"submission"`
			Record     progress.Record `json:"record"`
		}{sub, rec})
	}
}
