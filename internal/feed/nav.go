package feed

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brightpath/brightpath-lms/internal/progress"
)

// Outcome is what one navigation intent produced. LeftItemID names the item
// whose final state should be committed after a completed forward move.
type Outcome struct {
	Moved          bool   `json:"moved"`
	Index          int    `json:"index"`
	Initial        bool   `json:"initial,omitempty"` // first resume: position without animation
	SnapBack       bool   `json:"snap_back,omitempty"`
	Message        string `json:"message,omitempty"`
	ShowAssignment bool   `json:"show_assignment,omitempty"`
	AssignmentRef  string `json:"assignment_ref,omitempty"`
	CursorAdvanced bool   `json:"cursor_advanced,omitempty"`
	Cursor         int    `json:"cursor,omitempty"`
	LeftItemID     string `json:"-"`
}

// Controller owns a Session and translates visibility, wheel and jump
// inputs into single-step index transitions, consulting the gate on every
// forward attempt.
type Controller struct {
	mu       sync.Mutex
	session  *Session
	th       progress.Thresholds
	notifier *Notifier
	log      *zap.Logger

	wheelThreshold float64
	cooldown       time.Duration
	accumulated    float64
	lastStep       time.Time
	now            func() time.Time
}

type ControllerConfig struct {
	Thresholds        progress.Thresholds
	GateMessageWindow time.Duration
	WheelThreshold    float64
	WheelCooldown     time.Duration
}

func NewController(session *Session, cfg ControllerConfig, log *zap.Logger) *Controller {
	if cfg.WheelThreshold <= 0 {
		cfg.WheelThreshold = 120
	}
	if cfg.WheelCooldown <= 0 {
		cfg.WheelCooldown = 400 * time.Millisecond
	}
	if cfg.GateMessageWindow <= 0 {
		cfg.GateMessageWindow = 1200 * time.Millisecond
	}
	return &Controller{
		session:        session,
		th:             cfg.Thresholds,
		notifier:       NewNotifier(cfg.GateMessageWindow),
		log:            log.With(zap.String("component", "nav")),
		wheelThreshold: cfg.WheelThreshold,
		cooldown:       cfg.WheelCooldown,
		now:            time.Now,
	}
}

// SetNow overrides the clock for the controller and its notifier, for tests.
func (c *Controller) SetNow(now func() time.Time) {
	c.now = now
	c.notifier.SetNow(now)
}

// Session exposes the owned session; callers must treat it as read-only
// outside the controller's methods.
func (c *Controller) Session() *Session { return c.session }

// Resume resolves the initial position once. Subsequent calls return the
// current index unchanged.
func (c *Controller) Resume() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx, first := c.session.ResolveResume(c.th)
	return Outcome{Moved: first, Index: idx, Initial: first}
}

// HandleVisibility processes a card crossing into view. Moves to a higher
// index consult the gate against the previous active item; on deny the view
// snaps back instead of drifting.
func (c *Controller) HandleVisibility(toIndex int) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt(Advance{From: c.session.ActiveIndex, To: toIndex, Trigger: TriggerVisibility})
}

// HandleWheel accumulates signed wheel delta and commits at most one index
// step per threshold crossing, then enforces a cooldown so a single
// physical gesture cannot skip multiple items.
func (c *Controller) HandleWheel(delta float64) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastStep.IsZero() && now.Sub(c.lastStep) < c.cooldown {
		// inside cooldown: swallow the delta entirely
		c.accumulated = 0
		return Outcome{Index: c.session.ActiveIndex}
	}

	c.accumulated += delta
	if math.Abs(c.accumulated) < c.wheelThreshold {
		return Outcome{Index: c.session.ActiveIndex}
	}

	dir := 1
	if c.accumulated < 0 {
		dir = -1
	}
	c.accumulated = 0
	c.lastStep = now

	from := c.session.ActiveIndex
	to := from + dir
	if to < 0 || to >= len(c.session.Items) {
		return Outcome{Index: from}
	}
	return c.attempt(Advance{From: from, To: to, Trigger: TriggerGesture})
}

// JumpTo is an explicit index request (sidebar, table of contents). Jumps
// bypass gating entirely.
func (c *Controller) JumpTo(index int) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.session.Items) {
		return Outcome{Index: c.session.ActiveIndex}
	}
	return c.attempt(Advance{From: c.session.ActiveIndex, To: index, Trigger: TriggerJump})
}

// Acknowledge dismisses the assignment checkpoint for an item and performs
// the deferred advance to the originally requested target, if one is
// pending, without requiring a second gesture.
func (c *Controller) Acknowledge(itemID string) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Ack(itemID)
	target := c.session.pendingTarget
	if target < 0 {
		return Outcome{Index: c.session.ActiveIndex}
	}
	c.session.pendingTarget = -1
	return c.attempt(Advance{From: c.session.ActiveIndex, To: target, Trigger: TriggerGesture})
}

// attempt runs the gate and applies the decision. Callers hold c.mu.
func (c *Controller) attempt(adv Advance) Outcome {
	if adv.To == adv.From {
		return Outcome{Index: adv.From}
	}
	dec := Evaluate(c.session, adv, c.th)
	switch dec.Kind {
	case DecisionAllow:
		var left string
		if adv.To > adv.From {
			if it, ok := c.session.Item(adv.From); ok {
				left = it.ID
			}
		}
		c.session.ActiveIndex = adv.To
		// any completed move invalidates a deferred checkpoint target
		c.session.pendingTarget = -1
		return Outcome{Moved: true, Index: adv.To, LeftItemID: left}

	case DecisionAdvanceImage:
		it, _ := c.session.Item(adv.From)
		c.session.SetCursor(it.ID, dec.Cursor)
		return Outcome{Index: adv.From, CursorAdvanced: true, Cursor: dec.Cursor}

	case DecisionRequireAck:
		c.session.pendingTarget = adv.To
		return Outcome{
			Index:          adv.From,
			SnapBack:       true,
			ShowAssignment: true,
			AssignmentRef:  dec.AssignmentRef,
		}

	default: // DecisionDeny
		out := Outcome{Index: dec.SnapTo, SnapBack: true}
		it, _ := c.session.Item(adv.From)
		if c.notifier.Allow(it.ID, dec.Message) {
			out.Message = dec.Message
		}
		return out
	}
}
