package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutogradable(t *testing.T) {
	assert.True(t, Autogradable(fourQuestions()))
	assert.False(t, Autogradable(nil))

	missing := fourQuestions()
	missing[1].Options[1].Correct = nil
	assert.False(t, Autogradable(missing))

	free := fourQuestions()
	free[0].FreeText = true
	assert.False(t, Autogradable(free))

	noOptions := fourQuestions()
	noOptions[3].Options = nil
	assert.False(t, Autogradable(noOptions))
}

func TestGradeRounds(t *testing.T) {
	questions := []Question{
		{ID: "q1", Options: []Option{{ID: "o1", Correct: boolPtr(true)}, {ID: "o2", Correct: boolPtr(false)}}},
		{ID: "q2", Options: []Option{{ID: "o1", Correct: boolPtr(true)}, {ID: "o2", Correct: boolPtr(false)}}},
		{ID: "q3", Options: []Option{{ID: "o1", Correct: boolPtr(true)}, {ID: "o2", Correct: boolPtr(false)}}},
	}
	answers := map[string]Answer{
		"q1": {QuestionID: "q1", OptionID: "o1"},
		"q2": {QuestionID: "q2", OptionID: "o2"},
		"q3": {QuestionID: "q3", OptionID: "o2"},
	}
	// 1/3 rounds to 33, 2/3 rounds to 67
	assert.Equal(t, 33, Grade(questions, answers))

	answers["q2"] = Answer{QuestionID: "q2", OptionID: "o1"}
	assert.Equal(t, 67, Grade(questions, answers))
}

func TestSanitizeStripsCorrectness(t *testing.T) {
	questions := fourQuestions()
	clean := Sanitize(questions)

	for _, q := range clean {
		for _, o := range q.Options {
			assert.Nil(t, o.Correct)
		}
	}
	// the source set keeps its flags
	assert.NotNil(t, questions[0].Options[0].Correct)
}
