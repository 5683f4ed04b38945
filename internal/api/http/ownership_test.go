package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/brightpath/brightpath-lms/internal/cache"
	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/enrollment"
	"github.com/brightpath/brightpath-lms/internal/feed"
	"github.com/brightpath/brightpath-lms/internal/progress"
	"github.com/brightpath/brightpath-lms/internal/quiz"
	"github.com/brightpath/brightpath-lms/internal/rbac"
)

type stubRemote struct{}

func (stubRemote) LoadAll(context.Context, string) (map[string]progress.Record, error) {
	return map[string]progress.Record{}, nil
}
func (stubRemote) Save(context.Context, progress.Record) error { return nil }

type stubSeen struct{}

func (stubSeen) LoadAll(context.Context, string) (map[string]bool, error) {
	return map[string]bool{}, nil
}
func (stubSeen) MarkSeen(context.Context, string, string) error { return nil }

func newFeedRouter(t *testing.T) *chi.Mux {
	t.Helper()
	log := zap.NewNop()

	resolver := enrollment.NewInMemoryResolver()
	resolver.Put(enrollment.Enrollment{ID: "e1", StudentID: "stu1", GroupID: "g1", CourseID: "c1"})

	contents := content.NewInMemoryStore()
	contents.PutCourse("c1", []content.Item{
		{ID: "v1", Ordinal: 0, Type: content.TypeVideo},
	})

	store := progress.NewStore(stubRemote{}, stubSeen{}, cache.NewMemory(), progress.DefaultThresholds(), log)
	quizSvc := quiz.NewService(quiz.NewInMemoryQuestionStore(), quiz.NewInMemorySubmissionStore(), log)
	mgr := feed.NewManager(resolver, contents, store, quizSvc, nil, feed.ControllerConfig{
		Thresholds: progress.DefaultThresholds(),
	}, log)

	r := chi.NewRouter()
	r.Route("/feed/{enrollmentID}", func(fr chi.Router) {
		fr.Use(rbac.RequireOwnerOr("progress:view-all", EnrollmentOwner(resolver)))
		fr.With(rbac.Require("feed:view")).Get("/", GetFeedHandler(mgr))
		fr.With(rbac.Require("progress:report")).Post("/progress", ReportProgressHandler(mgr))
	})
	return r
}

func asUser(r *http.Request, subject, role string) *http.Request {
	ctx := rbac.WithSubject(r.Context(), subject)
	ctx = rbac.WithRole(ctx, role)
	return r.WithContext(ctx)
}

func TestFeedRoutesRejectForeignStudent(t *testing.T) {
	router := newFeedRouter(t)
	body := `{"item_id":"v1","signal":{"position":50,"duration":100}}`

	// a different student cannot report progress on someone else's enrollment
	req := httptest.NewRequest(http.MethodPost, "/feed/e1/progress", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "stu2", "student"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// nor read the feed
	req = httptest.NewRequest(http.MethodGet, "/feed/e1/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "stu2", "student"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFeedRoutesAllowOwner(t *testing.T) {
	router := newFeedRouter(t)
	body := `{"item_id":"v1","signal":{"position":50,"duration":100}}`

	req := httptest.NewRequest(http.MethodPost, "/feed/e1/progress", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "stu1", "student"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFeedRoutesTeacherBypassIsReadOnly(t *testing.T) {
	router := newFeedRouter(t)

	// view-all lets a teacher read any enrollment's feed
	req := httptest.NewRequest(http.MethodGet, "/feed/e1/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "t1", "teacher"))
	assert.Equal(t, http.StatusOK, rec.Code)

	// but the per-route permission still blocks mutations
	body := `{"item_id":"v1","signal":{"position":50,"duration":100}}`
	req = httptest.NewRequest(http.MethodPost, "/feed/e1/progress", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "t1", "teacher"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
