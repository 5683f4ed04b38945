package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// QuestionStore loads the question set for a quiz item. Questions live
// apart from the content sequence payload.
type QuestionStore interface {
	Questions(ctx context.Context, itemID string) ([]Question, error)
}

// SubmissionStore persists submissions, unique per (group, item, student).
type SubmissionStore interface {
	Find(ctx context.Context, groupID, itemID, studentID string) (Submission, error)
	Upsert(ctx context.Context, sub Submission) (Submission, error)
	Get(ctx context.Context, id string) (Submission, error)
	ListByItem(ctx context.Context, groupID, itemID string) ([]Submission, error)
	SetGrade(ctx context.Context, id string, grade int, gradedBy string) (Submission, error)
}

type Service struct {
	questions QuestionStore
	subs      SubmissionStore
	log       *zap.Logger
	now       func() time.Time
}

func NewService(questions QuestionStore, subs SubmissionStore, log *zap.Logger) *Service {
	return &Service{
		questions: questions,
		subs:      subs,
		log:       log.With(zap.String("component", "quiz")),
		now:       time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (s *Service) SetNow(now func() time.Time) { s.now = now }

func (s *Service) Load(ctx context.Context, itemID string) ([]Question, error) {
	return s.questions.Questions(ctx, itemID)
}

// Submit turns a complete answer set into a persisted submission. The
// upsert is idempotent on (group, item, student): a retry or resubmission
// updates the existing record instead of creating a second one. On a write
// failure the set's submitted guard is rolled back so the student can
// retry.
func (s *Service) Submit(ctx context.Context, set *AnswerSet, groupID, itemID, studentID string) (Submission, error) {
	if set.Submitted() {
		if existing, err := s.subs.Find(ctx, groupID, itemID, studentID); err == nil {
			return existing, nil
		}
		return Submission{}, ErrAlreadySubmitted
	}
	if !set.Complete() {
		return Submission{}, errors.New("quiz has unanswered questions")
	}

	now := s.now().Unix()
	sub := Submission{
		GroupID:     groupID,
		ItemID:      itemID,
		StudentID:   studentID,
		Answers:     set.Payload(),
		Status:      StatusPending,
		SubmittedAt: now,
		UpdatedAt:   now,
	}

	questions := set.Questions()
	if Autogradable(questions) {
		answers := make(map[string]Answer, len(sub.Answers))
		for _, a := range sub.Answers {
			answers[a.QuestionID] = a
		}
		g := Grade(questions, answers)
		sub.Grade = &g
		sub.Status = StatusGraded
	}

	set.submitted = true
	saved, err := s.subs.Upsert(ctx, sub)
	if err != nil {
		set.submitted = false
		s.log.Warn("submission write failed",
			zap.String("item", itemID), zap.String("student", studentID), zap.Error(err))
		return Submission{}, err
	}
	return saved, nil
}

// ApplyManualGrade lets a teacher score a pending submission.
func (s *Service) ApplyManualGrade(ctx context.Context, submissionID string, grade int, gradedBy string) (Submission, error) {
	if grade < 0 || grade > 100 {
		return Submission{}, errors.New("grade must be 0..100")
	}
	return s.subs.SetGrade(ctx, submissionID, grade, gradedBy)
}

func (s *Service) ListByItem(ctx context.Context, groupID, itemID string) ([]Submission, error) {
	return s.subs.ListByItem(ctx, groupID, itemID)
}

// newSubmissionID exists so store implementations share one id scheme.
func newSubmissionID() string { return uuid.NewString() }
