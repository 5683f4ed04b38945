package quiz

// Option is one selectable choice. Correct is tri-state: nil means the
// authoring side supplied no correctness metadata, which makes the whole
// quiz manually graded.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct *bool  `json:"correct,omitempty"`
}

type Question struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Options  []Option `json:"options,omitempty"`
	FreeText bool     `json:"free_text,omitempty"`
}

// Answer is one entry of the ordered submission payload.
type Answer struct {
	QuestionID string `json:"question_id"`
	Prompt     string `json:"prompt"`
	OptionID   string `json:"option_id,omitempty"`
	Text       string `json:"text,omitempty"`
}

const (
	StatusPending = "pending"
	StatusGraded  = "graded"
)

// Sanitize strips correctness metadata before questions are served to
// students.
func Sanitize(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]Option(nil), q.Options...)
		for j := range q.Options {
			q.Options[j].Correct = nil
		}
		out[i] = q
	}
	return out
}

// Submission is the persisted record, unique per (group, item, student).
type Submission struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"group_id"`
	ItemID      string   `json:"item_id"`
	StudentID   string   `json:"student_id"`
	Answers     []Answer `json:"answers"`
	Status      string   `json:"status"` // pending|graded
	Grade       *int     `json:"grade,omitempty"`
	GradedBy    string   `json:"graded_by,omitempty"`
	SubmittedAt int64    `json:"submitted_at"`
	UpdatedAt   int64    `json:"updated_at"`
}
