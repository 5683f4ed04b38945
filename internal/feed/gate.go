package feed

import (
	"fmt"

	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/progress"
)

// Trigger identifies the input source behind a navigation intent.
type Trigger string

const (
	TriggerVisibility Trigger = "visibility"
	TriggerGesture    Trigger = "gesture"
	TriggerJump       Trigger = "jump"
)

// Advance is an explicit navigation intent fed into the gate.
type Advance struct {
	From    int     `json:"from"`
	To      int     `json:"to"`
	Trigger Trigger `json:"trigger"`
}

type DecisionKind int

const (
	// DecisionAllow permits the index transition.
	DecisionAllow DecisionKind = iota
	// DecisionDeny blocks it; the view snaps back to From and Message is
	// surfaced (rate-limited by the notifier).
	DecisionDeny
	// DecisionAdvanceImage keeps the user on the item and advances its
	// image sub-cursor by one instead.
	DecisionAdvanceImage
	// DecisionRequireAck defers the advance behind the assignment
	// checkpoint for the From item.
	DecisionRequireAck
)

// Decision is the pure outcome of evaluating an Advance against session
// state. It carries everything the controller needs to act.
type Decision struct {
	Kind          DecisionKind
	Message       string // user-facing gate message for Deny
	SnapTo        int
	Cursor        int    // new sub-cursor for AdvanceImage
	AssignmentRef string // template ref for RequireAck
}

// Evaluate runs the gating state machine for one forward attempt past the
// From item. Check order is fixed: done shortcut, image sub-cursor, percent
// gate, assignment checkpoint. Backward moves and explicit jumps are never
// gated.
func Evaluate(s *Session, adv Advance, th progress.Thresholds) Decision {
	if adv.To <= adv.From || adv.Trigger == TriggerJump {
		return Decision{Kind: DecisionAllow}
	}
	it, ok := s.Item(adv.From)
	if !ok {
		return Decision{Kind: DecisionAllow}
	}

	pendingAck := it.HasAssignment && !s.Acked(it.ID)

	if s.Done(adv.From, th) && !pendingAck {
		return Decision{Kind: DecisionAllow}
	}

	rec := s.Record(it.ID)
	pct := rec.Percent
	if it.Type == content.TypeImage {
		cursor := s.Cursor(it.ID)
		if cursor < it.ImageCount()-1 {
			return Decision{Kind: DecisionAdvanceImage, Cursor: cursor + 1}
		}
		// the sub-cursor is the live measurement for carousels; an
		// exhausted cursor satisfies the gate even before a signal
		// round-trips through the store
		if p := progress.Percent(content.TypeImage, progress.Signal{
			Index: cursor, Count: it.ImageCount(),
		}); p > pct {
			pct = p
		}
	}

	required := th.Required(it.Type)
	if pct < required && !rec.Seen {
		return Decision{
			Kind:    DecisionDeny,
			Message: gateMessage(it.Type, required),
			SnapTo:  adv.From,
		}
	}

	if pendingAck {
		return Decision{Kind: DecisionRequireAck, AssignmentRef: it.AssignmentRef}
	}

	return Decision{Kind: DecisionAllow}
}

func gateMessage(t content.ItemType, required float64) string {
	switch t {
	case content.TypeVideo:
		return fmt.Sprintf("Watch at least %.0f%% of the video to continue", required)
	case content.TypeAudio:
		return fmt.Sprintf("Listen to at least %.0f%% of the audio to continue", required)
	case content.TypeImage:
		return "View every image to continue"
	case content.TypeText:
		return fmt.Sprintf("Read at least %.0f%% of the text to continue", required)
	case content.TypeQuiz:
		return "Submit the quiz to continue"
	}
	return "Finish this item to continue"
}
