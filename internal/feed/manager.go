package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/enrollment"
	"github.com/brightpath/brightpath-lms/internal/eventlog"
	"github.com/brightpath/brightpath-lms/internal/progress"
	"github.com/brightpath/brightpath-lms/internal/quiz"
)

// EventSink is where completion and submission events land. Append failures
// are logged, never surfaced.
type EventSink interface {
	Append(ctx context.Context, e eventlog.Event) error
}

// Manager builds and owns one Controller per enrollment. It is the single
// entry point the HTTP layer talks to: every mutation funnels through here
// so the session, the progress store and the quiz service stay in step.
type Manager struct {
	enrollments enrollment.Resolver
	contents    content.Store
	store       *progress.Store
	quizzes     *quiz.Service
	events      EventSink
	cfg         ControllerConfig
	log         *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Controller // by enrollment id
}

func NewManager(
	enrollments enrollment.Resolver,
	contents content.Store,
	store *progress.Store,
	quizzes *quiz.Service,
	events EventSink,
	cfg ControllerConfig,
	log *zap.Logger,
) *Manager {
	return &Manager{
		enrollments: enrollments,
		contents:    contents,
		store:       store,
		quizzes:     quizzes,
		events:      events,
		cfg:         cfg,
		log:         log.With(zap.String("component", "feed")),
		sessions:    map[string]*Controller{},
	}
}

// Controller returns the live controller for an enrollment, building the
// session on first use: resolve the enrollment, load the immutable content
// sequence, and merge progress from both sources.
func (m *Manager) Controller(ctx context.Context, enrollmentID string) (*Controller, error) {
	m.mu.Lock()
	if c, ok := m.sessions[enrollmentID]; ok {
		m.mu.Unlock()
		return c, nil
	}
	m.mu.Unlock()

	enr, err := m.enrollments.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	items, err := m.contents.Sequence(ctx, enr.CourseID)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", enr.CourseID, err)
	}
	records, err := m.store.Load(ctx, enr.ID, enr.StudentID, items)
	if err != nil {
		return nil, err
	}

	session := NewSession(enr, items, records)
	c := NewController(session, m.cfg, m.log)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[enrollmentID]; ok {
		return existing, nil
	}
	m.sessions[enrollmentID] = c
	return c, nil
}

// ReportProgress feeds one raw signal through the completion policy and the
// progress store, then mirrors the result into the session.
func (m *Manager) ReportProgress(ctx context.Context, enrollmentID, itemID string, sig progress.Signal) (progress.Record, error) {
	c, err := m.Controller(ctx, enrollmentID)
	if err != nil {
		return progress.Record{}, err
	}
	s := c.Session()
	it, ok := itemByID(s.Items, itemID)
	if !ok {
		return progress.Record{}, fmt.Errorf("unknown item %q", itemID)
	}
	if it.Type == content.TypeImage {
		// cursor position drives the image percent; remember it
		c.mu.Lock()
		if sig.Index > s.Cursor(itemID) {
			s.SetCursor(itemID, sig.Index)
		}
		c.mu.Unlock()
	}

	pct := progress.Percent(it.Type, sig)
	rec, durable := m.store.Report(ctx, enrollmentID, s.Enrollment.StudentID, itemID, it.Type, pct)

	c.mu.Lock()
	wasCompleted := s.Record(itemID).Completed
	s.SetRecord(rec)
	c.mu.Unlock()

	if durable && rec.Completed && !wasCompleted {
		m.appendEvent(ctx, eventlog.TypeItemCompleted, enrollmentID, itemID, rec)
	}
	return rec, nil
}

// Advance applies an explicit navigation intent.
func (m *Manager) Advance(ctx context.Context, enrollmentID string, adv Advance) (Outcome, error) {
	c, err := m.Controller(ctx, enrollmentID)
	if err != nil {
		return Outcome{}, err
	}
	var out Outcome
	switch adv.Trigger {
	case TriggerJump:
		out = c.JumpTo(adv.To)
	default:
		out = c.HandleVisibility(adv.To)
	}
	m.noteCursor(ctx, c, out)
	m.commitLeft(ctx, c, out)
	return out, nil
}

// Wheel applies a wheel/trackpad delta.
func (m *Manager) Wheel(ctx context.Context, enrollmentID string, delta float64) (Outcome, error) {
	c, err := m.Controller(ctx, enrollmentID)
	if err != nil {
		return Outcome{}, err
	}
	out := c.HandleWheel(delta)
	m.noteCursor(ctx, c, out)
	m.commitLeft(ctx, c, out)
	return out, nil
}

// Acknowledge dismisses the assignment checkpoint for an item.
func (m *Manager) Acknowledge(ctx context.Context, enrollmentID, itemID string) (Outcome, error) {
	c, err := m.Controller(ctx, enrollmentID)
	if err != nil {
		return Outcome{}, err
	}
	out := c.Acknowledge(itemID)
	m.commitLeft(ctx, c, out)
	return out, nil
}

// Resume resolves the once-per-session initial position.
func (m *Manager) Resume(ctx context.Context, enrollmentID string) (Outcome, error) {
	c, err := m.Controller(ctx, enrollmentID)
	if err != nil {
		return Outcome{}, err
	}
	return c.Resume(), nil
}

// AnswerQuiz records one answer and reports the answered-ratio progress.
func (m *Manager) AnswerQuiz(ctx context.Context, enrollmentID, itemID, questionID, optionID, text string) (progress.Record, int, error) {
	c, err := m.Controller(ctx, enrollmentID)
	if err != nil {
		return progress.Record{}, 0, err
	}
	set, err := m.answerSet(ctx, c, itemID)
	if err != nil {
		return progress.Record{}, 0, err
	}

	c.mu.Lock()
	if optionID != "" {
		err = set.Select(questionID, optionID)
	} else {
		err = set.SelectText(questionID, text)
	}
	pointer := set.Pointer()
	answered := len(set.Payload())
	total := len(set.Questions())
	c.mu.Unlock()
	if err != nil {
		return progress.Record{}, 0, err
	}

	rec, _ := m.store.Report(ctx, enrollmentID, c.Session().Enrollment.StudentID, itemID,
		content.TypeQuiz, progress.Percent(content.TypeQuiz, progress.Signal{Answered: answered, Total: total}))

	c.mu.Lock()
	c.Session().SetRecord(rec)
	c.mu.Unlock()
	return rec, pointer, nil
}

// SubmitQuiz performs the idempotent submission and pins the item to 100.
// Submission is authoritative for quizzes: completed/seen flip regardless
// of the policy table.
func (m *Manager) SubmitQuiz(ctx context.Context, enrollmentID, itemID string) (quiz.Submission, progress.Record, error) {
	c, err := m.Controller(ctx, enrollmentID)
	if err != nil {
		return quiz.Submission{}, progress.Record{}, err
	}
	set, err := m.answerSet(ctx, c, itemID)
	if err != nil {
		return quiz.Submission{}, progress.Record{}, err
	}

	s := c.Session()
	sub, err := m.quizzes.Submit(ctx, set, s.Enrollment.GroupID, itemID, s.Enrollment.StudentID)
	if err != nil {
		return quiz.Submission{}, progress.Record{}, err
	}

	rec := m.store.ForceComplete(ctx, enrollmentID, s.Enrollment.StudentID, itemID)
	c.mu.Lock()
	s.SetRecord(rec)
	c.mu.Unlock()

	m.appendEvent(ctx, eventlog.TypeQuizSubmitted, enrollmentID, itemID, sub)
	return sub, rec, nil
}

// answerSet lazily loads the question set for a quiz item into the session.
func (m *Manager) answerSet(ctx context.Context, c *Controller, itemID string) (*quiz.AnswerSet, error) {
	s := c.Session()
	it, ok := itemByID(s.Items, itemID)
	if !ok || it.Type != content.TypeQuiz {
		return nil, fmt.Errorf("item %q is not a quiz", itemID)
	}

	c.mu.Lock()
	set, loaded := s.AnswerSet(itemID)
	c.mu.Unlock()
	if loaded {
		return set, nil
	}

	questions, err := m.quizzes.Load(ctx, itemID)
	if err != nil {
		return nil, err
	}
	set = quiz.NewAnswerSet(questions)

	c.mu.Lock()
	if existing, ok := s.AnswerSet(itemID); ok {
		set = existing
	} else {
		s.SetAnswerSet(itemID, set)
	}
	c.mu.Unlock()
	return set, nil
}

// noteCursor reports a gate-driven carousel step as a progress signal so
// the record reflects the cursor position without a separate client POST.
func (m *Manager) noteCursor(ctx context.Context, c *Controller, out Outcome) {
	if !out.CursorAdvanced {
		return
	}
	s := c.Session()
	c.mu.Lock()
	it, ok := s.Item(out.Index)
	c.mu.Unlock()
	if !ok || it.Type != content.TypeImage {
		return
	}
	pct := progress.Percent(content.TypeImage, progress.Signal{Index: out.Cursor, Count: it.ImageCount()})
	rec, _ := m.store.Report(ctx, s.Enrollment.ID, s.Enrollment.StudentID, it.ID, it.Type, pct)

	c.mu.Lock()
	s.SetRecord(rec)
	c.mu.Unlock()
}

// commitLeft flushes the final state of an item the user moved past.
func (m *Manager) commitLeft(ctx context.Context, c *Controller, out Outcome) {
	if !out.Moved || out.LeftItemID == "" {
		return
	}
	s := c.Session()
	m.store.Commit(ctx, s.Enrollment.ID, s.Enrollment.StudentID, out.LeftItemID)
}

func (m *Manager) appendEvent(ctx context.Context, typ, enrollmentID, itemID string, payload interface{}) {
	if m.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	e := eventlog.Event{Type: typ, Key: enrollmentID + "|" + itemID, DataJSON: string(data)}
	if err := m.events.Append(ctx, e); err != nil {
		m.log.Warn("event append failed", zap.String("type", typ), zap.Error(err))
	}
}

func itemByID(items []content.Item, id string) (content.Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return content.Item{}, false
}
