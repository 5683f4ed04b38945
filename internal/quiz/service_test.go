package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func boolPtr(b bool) *bool { return &b }

// fourQuestions builds a fully flagged multiple-choice set where option
// "o1" is always the correct one.
func fourQuestions() []Question {
	out := make([]Question, 4)
	for i := range out {
		out[i] = Question{
			ID:     "q" + string(rune('1'+i)),
			Prompt: "prompt",
			Options: []Option{
				{ID: "o1", Text: "right", Correct: boolPtr(true)},
				{ID: "o2", Text: "wrong", Correct: boolPtr(false)},
			},
		}
	}
	return out
}

func answeredSet(t *testing.T, questions []Question, correct int) *AnswerSet {
	t.Helper()
	set := NewAnswerSet(questions)
	for i, q := range questions {
		opt := "o1"
		if i >= correct {
			opt = "o2"
		}
		require.NoError(t, set.Select(q.ID, opt))
	}
	return set
}

func newTestService(subs SubmissionStore) *Service {
	return NewService(NewInMemoryQuestionStore(), subs, zap.NewNop())
}

func TestSubmitAutogradesWhenFullyFlagged(t *testing.T) {
	svc := newTestService(NewInMemorySubmissionStore())
	set := answeredSet(t, fourQuestions(), 3)

	sub, err := svc.Submit(context.Background(), set, "g1", "quiz-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, StatusGraded, sub.Status)
	require.NotNil(t, sub.Grade)
	assert.Equal(t, 75, *sub.Grade)
	assert.Len(t, sub.Answers, 4)
	assert.NotEmpty(t, sub.ID)
}

func TestSubmitPendingWhenCorrectnessMissing(t *testing.T) {
	questions := fourQuestions()
	questions[2].Options[0].Correct = nil

	svc := newTestService(NewInMemorySubmissionStore())
	set := answeredSet(t, questions, 4)

	sub, err := svc.Submit(context.Background(), set, "g1", "quiz-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, sub.Status)
	assert.Nil(t, sub.Grade)
}

func TestSubmitRejectsIncompleteSet(t *testing.T) {
	questions := fourQuestions()
	set := NewAnswerSet(questions)
	require.NoError(t, set.Select("q1", "o1"))

	svc := newTestService(NewInMemorySubmissionStore())
	_, err := svc.Submit(context.Background(), set, "g1", "quiz-1", "s1")
	assert.Error(t, err)
	assert.False(t, set.Submitted())
}

func TestSubmitIdempotent(t *testing.T) {
	store := NewInMemorySubmissionStore()
	svc := newTestService(store)
	set := answeredSet(t, fourQuestions(), 4)

	first, err := svc.Submit(context.Background(), set, "g1", "quiz-1", "s1")
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), set, "g1", "quiz-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	subs, err := store.ListByItem(context.Background(), "g1", "quiz-1")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

type failingSubmissionStore struct {
	SubmissionStore
	fail bool
}

func (f *failingSubmissionStore) Upsert(ctx context.Context, sub Submission) (Submission, error) {
	if f.fail {
		return Submission{}, errors.New("write failed")
	}
	return f.SubmissionStore.Upsert(ctx, sub)
}

func TestSubmitRollsBackGuardOnWriteFailure(t *testing.T) {
	store := &failingSubmissionStore{SubmissionStore: NewInMemorySubmissionStore(), fail: true}
	svc := newTestService(store)
	set := answeredSet(t, fourQuestions(), 4)

	_, err := svc.Submit(context.Background(), set, "g1", "quiz-1", "s1")
	require.Error(t, err)
	assert.False(t, set.Submitted(), "failed write must not leave the set locked")

	store.fail = false
	sub, err := svc.Submit(context.Background(), set, "g1", "quiz-1", "s1")
	require.NoError(t, err)
	assert.Equal(t, StatusGraded, sub.Status)
	assert.True(t, set.Submitted())
}

func TestApplyManualGrade(t *testing.T) {
	questions := fourQuestions()
	questions[0].FreeText = true
	questions[0].Options = nil

	store := NewInMemorySubmissionStore()
	svc := newTestService(store)

	set := NewAnswerSet(questions)
	require.NoError(t, set.SelectText("q1", "an essay"))
	for _, q := range questions[1:] {
		require.NoError(t, set.Select(q.ID, "o1"))
	}

	sub, err := svc.Submit(context.Background(), set, "g1", "quiz-1", "s1")
	require.NoError(t, err)
	require.Equal(t, StatusPending, sub.Status)

	graded, err := svc.ApplyManualGrade(context.Background(), sub.ID, 88, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, StatusGraded, graded.Status)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, 88, *graded.Grade)
	assert.Equal(t, "teacher-1", graded.GradedBy)

	_, err = svc.ApplyManualGrade(context.Background(), sub.ID, 130, "teacher-1")
	assert.Error(t, err)
}
