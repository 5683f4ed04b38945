package content

// ItemType is the closed set of consumable content kinds.
type ItemType string

const (
	TypeVideo ItemType = "video"
	TypeAudio ItemType = "audio"
	TypeImage ItemType = "image"
	TypeText  ItemType = "text"
	TypeQuiz  ItemType = "quiz"
)

func (t ItemType) Valid() bool {
	switch t {
	case TypeVideo, TypeAudio, TypeImage, TypeText, TypeQuiz:
		return true
	}
	return false
}

// Payload carries the type-specific content reference. Quiz questions are
// loaded separately (see internal/quiz).
type Payload struct {
	MediaURL string   `json:"media_url,omitempty"` // video, audio
	Body     string   `json:"body,omitempty"`      // text
	Images   []string `json:"images,omitempty"`    // image carousel
}

// Item is one consumable unit within the flattened lesson sequence of a
// course. Ordinal is a dense 0-based index; the sequence is immutable once
// loaded for a session.
type Item struct {
	ID            string   `json:"id"`
	Ordinal       int      `json:"ordinal"`
	Type          ItemType `json:"type"`
	LessonLabel   string   `json:"lesson_label,omitempty"`
	HasAssignment bool     `json:"has_assignment"`
	AssignmentRef string   `json:"assignment_ref,omitempty"`
	Payload       Payload  `json:"payload"`
}

// ImageCount returns the carousel length for image items, 0 otherwise.
func (it Item) ImageCount() int {
	if it.Type != TypeImage {
		return 0
	}
	return len(it.Payload.Images)
}
