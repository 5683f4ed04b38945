package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath/brightpath-lms/internal/assignments"
)

// GetAssignmentHandler streams an assignment template document.
func GetAssignmentHandler(store assignments.TemplateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "ref")
		rc, err := store.Get(ref)
		if err != nil {
			http.Error(w, "assignment template not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	}
}

// PutAssignmentHandler uploads an assignment template (teacher tooling).
func PutAssignmentHandler(store assignments.TemplateStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "ref")
		canonical, err := store.Put(ref, r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ref": canonical})
	}
}
