package feed

import (
	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/enrollment"
	"github.com/brightpath/brightpath-lms/internal/progress"
	"github.com/brightpath/brightpath-lms/internal/quiz"
)

// Session is the explicit per-enrollment feed state: the immutable content
// sequence, the resident progress records, the active index, image
// sub-cursors, assignment acknowledgments and quiz answer sets. It replaces
// any notion of free-floating module state so gating can be tested without
// a UI. The owning Controller serializes all access.
type Session struct {
	Enrollment enrollment.Enrollment
	Items      []content.Item

	ActiveIndex  int
	records      map[string]progress.Record // by item id
	imageCursors map[string]int
	acks         map[string]bool
	answers      map[string]*quiz.AnswerSet

	resumed       bool
	pendingTarget int // deferred advance target while an assignment checkpoint is up; -1 when none
}

func NewSession(enr enrollment.Enrollment, items []content.Item, records []progress.Record) *Session {
	s := &Session{
		Enrollment:    enr,
		Items:         items,
		records:       make(map[string]progress.Record, len(records)),
		imageCursors:  map[string]int{},
		acks:          map[string]bool{},
		answers:       map[string]*quiz.AnswerSet{},
		pendingTarget: -1,
	}
	for _, rec := range records {
		s.records[rec.ItemID] = rec
	}
	// An assignment checkpoint only reappears on reload when the item is
	// not already completed.
	for _, it := range items {
		if it.HasAssignment && s.records[it.ID].Completed {
			s.acks[it.ID] = true
		}
	}
	return s
}

func (s *Session) Item(i int) (content.Item, bool) {
	if i < 0 || i >= len(s.Items) {
		return content.Item{}, false
	}
	return s.Items[i], true
}

func (s *Session) Record(itemID string) progress.Record {
	return s.records[itemID]
}

func (s *Session) SetRecord(rec progress.Record) {
	s.records[rec.ItemID] = rec
}

func (s *Session) Records() []progress.Record {
	out := make([]progress.Record, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, s.records[it.ID])
	}
	return out
}

// Cursor returns the current image sub-index for an item (0 when unset).
func (s *Session) Cursor(itemID string) int {
	return s.imageCursors[itemID]
}

func (s *Session) SetCursor(itemID string, cursor int) {
	s.imageCursors[itemID] = cursor
}

func (s *Session) Acked(itemID string) bool {
	return s.acks[itemID]
}

func (s *Session) Ack(itemID string) {
	s.acks[itemID] = true
}

// AnswerSet returns the quiz answer set for an item, if loaded.
func (s *Session) AnswerSet(itemID string) (*quiz.AnswerSet, bool) {
	set, ok := s.answers[itemID]
	return set, ok
}

func (s *Session) SetAnswerSet(itemID string, set *quiz.AnswerSet) {
	s.answers[itemID] = set
}

// Done reports whether item i satisfies its gate: percent at or above the
// required threshold, or sticky seen.
func (s *Session) Done(i int, th progress.Thresholds) bool {
	it, ok := s.Item(i)
	if !ok {
		return false
	}
	rec := s.records[it.ID]
	return rec.Seen || rec.Percent >= th.Required(it.Type)
}

// ResolveResume picks the initial position: the lowest-ordinal item that is
// not done, or the last item when everything is done. It runs exactly once
// per session; later progress updates never re-trigger it.
func (s *Session) ResolveResume(th progress.Thresholds) (int, bool) {
	if s.resumed {
		return s.ActiveIndex, false
	}
	s.resumed = true
	idx := len(s.Items) - 1
	for i := range s.Items {
		if !s.Done(i, th) {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = 0
	}
	s.ActiveIndex = idx
	return idx, true
}
