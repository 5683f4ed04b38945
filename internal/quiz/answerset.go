package quiz

import (
	"errors"
	"fmt"
)

var ErrAlreadySubmitted = errors.New("quiz already submitted")

// AnswerSet accumulates a student's answers for one quiz item within a
// session. It is not safe for concurrent use; the owning session serializes
// access.
type AnswerSet struct {
	questions []Question
	answers   map[string]Answer
	pointer   int // visible question index
	submitted bool
}

func NewAnswerSet(questions []Question) *AnswerSet {
	return &AnswerSet{
		questions: questions,
		answers:   map[string]Answer{},
	}
}

func (a *AnswerSet) Questions() []Question { return a.questions }

// Select records an option choice for a question and moves the visible
// pointer to the next unanswered question. Answering out of order is fine.
func (a *AnswerSet) Select(questionID, optionID string) error {
	if a.submitted {
		return ErrAlreadySubmitted
	}
	q, ok := a.question(questionID)
	if !ok {
		return fmt.Errorf("unknown question %q", questionID)
	}
	var opt *Option
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			opt = &q.Options[i]
			break
		}
	}
	if opt == nil {
		return fmt.Errorf("unknown option %q for question %q", optionID, questionID)
	}
	a.answers[questionID] = Answer{
		QuestionID: questionID,
		Prompt:     q.Prompt,
		OptionID:   opt.ID,
		Text:       opt.Text,
	}
	a.advancePointer()
	return nil
}

// SelectText records a free-text response.
func (a *AnswerSet) SelectText(questionID, text string) error {
	if a.submitted {
		return ErrAlreadySubmitted
	}
	q, ok := a.question(questionID)
	if !ok {
		return fmt.Errorf("unknown question %q", questionID)
	}
	a.answers[questionID] = Answer{QuestionID: questionID, Prompt: q.Prompt, Text: text}
	a.advancePointer()
	return nil
}

// Pointer is the index of the question currently shown.
func (a *AnswerSet) Pointer() int { return a.pointer }

// Percent is answered/total × 100; an empty quiz is trivially complete.
func (a *AnswerSet) Percent() float64 {
	if len(a.questions) == 0 {
		return 100
	}
	return float64(len(a.answers)) / float64(len(a.questions)) * 100
}

func (a *AnswerSet) Complete() bool {
	return len(a.answers) == len(a.questions)
}

func (a *AnswerSet) Submitted() bool { return a.submitted }

// Payload builds the ordered answer list following question order.
func (a *AnswerSet) Payload() []Answer {
	out := make([]Answer, 0, len(a.answers))
	for _, q := range a.questions {
		if ans, ok := a.answers[q.ID]; ok {
			out = append(out, ans)
		}
	}
	return out
}

func (a *AnswerSet) question(id string) (Question, bool) {
	for _, q := range a.questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (a *AnswerSet) advancePointer() {
	for i := a.pointer; i < len(a.questions); i++ {
		if _, ok := a.answers[a.questions[i].ID]; !ok {
			a.pointer = i
			return
		}
	}
	for i := 0; i < len(a.questions); i++ {
		if _, ok := a.answers[a.questions[i].ID]; !ok {
			a.pointer = i
			return
		}
	}
	if n := len(a.questions); n > 0 {
		a.pointer = n - 1
	}
}
