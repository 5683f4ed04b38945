package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brightpath/brightpath-lms/internal/quiz"
	"github.com/brightpath/brightpath-lms/internal/rbac"
)

type studentProgressRow struct {
	EnrollmentID string  `json:"enrollment_id"`
	StudentID    string  `json:"student_id"`
	StudentName  string  `json:"student_name"`
	ItemID       string  `json:"item_id"`
	Percent      float64 `json:"percent"`
	Completed    bool    `json:"completed"`
	Seen         bool    `json:"seen"`
	UpdatedAt    int64   `json:"updated_at"`
}

// GroupProgressHandler lists persisted progress for every enrollment in a
// group (teacher dashboard).
func GroupProgressHandler(db *sql.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")
		rows, err := db.QueryContext(r.Context(),
			`SELECT e.id, e.student_id, e.student_name, p.item_id, p.percent, p.completed, p.seen, p.updated_at
			 FROM enrollments e
			 JOIN progress p ON p.enrollment_id = e.id
			 WHERE e.group_id=$1
			 ORDER BY e.student_name, p.item_id`, groupID)
		if err != nil {
			log.Error("group progress query failed", zap.String("group", groupID), zap.Error(err))
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []studentProgressRow{}
		for rows.Next() {
			var row studentProgressRow
			if err := rows.Scan(&row.EnrollmentID, &row.StudentID, &row.StudentName,
				&row.ItemID, &row.Percent, &row.Completed, &row.Seen, &row.UpdatedAt); err != nil {
				http.Error(w, "scan failed", http.StatusInternalServerError)
				return
			}
			out = append(out, row)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ListSubmissionsHandler lists quiz submissions for one class item.
func ListSubmissionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "groupID")
		itemID := chi.URLParam(r, "itemID")
		subs, err := svc.ListByItem(r.Context(), groupID, itemID)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		if subs == nil {
			subs = []quiz.Submission{}
		}
		writeJSON(w, http.StatusOK, subs)
	}
}

// GradeSubmissionHandler lets a teacher score a pending submission.
func GradeSubmissionHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "submissionID")
		var req struct {
			Grade int `json:"grade" validate:"min=0,max=100"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		gradedBy := rbac.SubjectFromContext(r.Context())
		sub, err := svc.ApplyManualGrade(r.Context(), id, req.Grade, gradedBy)
		if err != nil {
			writeFeedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sub)
	}
}
