package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/enrollment"
	"github.com/brightpath/brightpath-lms/internal/quiz"
	"github.com/brightpath/brightpath-lms/internal/rbac"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// writeFeedError maps engine errors onto the API. A missing enrollment or
// course is the structural empty state; everything else is a plain 400.
func writeFeedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, enrollment.ErrNoEnrollment):
		http.Error(w, "no active enrollment", http.StatusNotFound)
	case errors.Is(err, content.ErrCourseNotFound):
		http.Error(w, "course content unavailable", http.StatusNotFound)
	case errors.Is(err, quiz.ErrSubmissionNotFound):
		http.Error(w, "submission not found", http.StatusNotFound)
	case errors.Is(err, quiz.ErrAlreadySubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// EnrollmentOwner builds the ownership predicate for the feed routes: the
// authenticated subject must be the student the enrollment belongs to.
// Wired through rbac.RequireOwnerOr so roles with the view-all permission
// pass too.
func EnrollmentOwner(resolver enrollment.Resolver) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		enrollmentID := chi.URLParam(r, "enrollmentID")
		if enrollmentID == "" {
			return false
		}
		enr, err := resolver.Get(r.Context(), enrollmentID)
		if err != nil {
			return false
		}
		return rbac.SubjectFromContext(r.Context()) == enr.StudentID
	}
}
