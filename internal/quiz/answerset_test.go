package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerSetPointerSkipsAnswered(t *testing.T) {
	set := NewAnswerSet(fourQuestions())
	assert.Equal(t, 0, set.Pointer())

	// answering out of order: pointer lands on the next unanswered question
	require.NoError(t, set.Select("q2", "o1"))
	assert.Equal(t, 0, set.Pointer())

	require.NoError(t, set.Select("q1", "o1"))
	assert.Equal(t, 2, set.Pointer())

	require.NoError(t, set.Select("q3", "o2"))
	require.NoError(t, set.Select("q4", "o2"))
	assert.Equal(t, 3, set.Pointer())
	assert.True(t, set.Complete())
}

func TestAnswerSetPercent(t *testing.T) {
	set := NewAnswerSet(fourQuestions())
	assert.Equal(t, 0.0, set.Percent())

	require.NoError(t, set.Select("q1", "o1"))
	assert.InDelta(t, 25.0, set.Percent(), 0.001)

	empty := NewAnswerSet(nil)
	assert.Equal(t, 100.0, empty.Percent())
	assert.True(t, empty.Complete())
}

func TestAnswerSetReSelectOverwrites(t *testing.T) {
	set := NewAnswerSet(fourQuestions())
	require.NoError(t, set.Select("q1", "o1"))
	require.NoError(t, set.Select("q1", "o2"))

	payload := set.Payload()
	require.Len(t, payload, 1)
	assert.Equal(t, "o2", payload[0].OptionID)
}

func TestAnswerSetRejectsUnknownIDs(t *testing.T) {
	set := NewAnswerSet(fourQuestions())
	assert.Error(t, set.Select("nope", "o1"))
	assert.Error(t, set.Select("q1", "nope"))
}

func TestAnswerSetLockedAfterSubmit(t *testing.T) {
	set := answeredSet(t, fourQuestions(), 4)
	set.submitted = true

	err := set.Select("q1", "o2")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	err = set.SelectText("q1", "text")
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestPayloadFollowsQuestionOrder(t *testing.T) {
	set := NewAnswerSet(fourQuestions())
	require.NoError(t, set.Select("q4", "o1"))
	require.NoError(t, set.Select("q2", "o1"))
	require.NoError(t, set.Select("q1", "o1"))
	require.NoError(t, set.Select("q3", "o1"))

	payload := set.Payload()
	require.Len(t, payload, 4)
	for i, ans := range payload {
		assert.Equal(t, "q"+string(rune('1'+i)), ans.QuestionID)
	}
}
