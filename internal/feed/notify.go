package feed

import (
	"time"
)

// Notifier rate-limits gate messages so rapid re-triggers of the same gate
// do not flood the client with toasts. Identical messages for the same item
// are suppressed within the window; at most one message is in flight per
// item.
type Notifier struct {
	window time.Duration
	now    func() time.Time

	last map[string]notice
}

type notice struct {
	message string
	at      time.Time
}

func NewNotifier(window time.Duration) *Notifier {
	return &Notifier{
		window: window,
		now:    time.Now,
		last:   map[string]notice{},
	}
}

// SetNow overrides the clock, for tests.
func (n *Notifier) SetNow(now func() time.Time) { n.now = now }

// Allow reports whether the message may be surfaced for the item and, when
// it may, records it.
func (n *Notifier) Allow(itemID, message string) bool {
	now := n.now()
	if prev, ok := n.last[itemID]; ok {
		if prev.message == message && now.Sub(prev.at) < n.window {
			return false
		}
	}
	n.last[itemID] = notice{message: message, at: now}
	return true
}
