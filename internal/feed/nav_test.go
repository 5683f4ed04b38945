package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/progress"
)

func testConfig() ControllerConfig {
	return ControllerConfig{
		Thresholds:        progress.DefaultThresholds(),
		GateMessageWindow: 1200 * time.Millisecond,
		WheelThreshold:    120,
		WheelCooldown:     400 * time.Millisecond,
	}
}

func doneRecord(itemID string) progress.Record {
	return progress.Record{EnrollmentID: "e1", ItemID: itemID, Percent: 100, Completed: true, Seen: true}
}

func newTestController(items []content.Item, records []progress.Record) *Controller {
	session := NewSession(testEnrollment, items, records)
	return NewController(session, testConfig(), zap.NewNop())
}

func videoItems(n int) []content.Item {
	items := make([]content.Item, n)
	for i := range items {
		items[i] = content.Item{ID: itemID(i), Ordinal: i, Type: content.TypeVideo}
	}
	return items
}

func itemID(i int) string {
	return string(rune('a' + i))
}

/* ---------------- resume ---------------- */

func TestResumePicksFirstUnfinished(t *testing.T) {
	records := []progress.Record{doneRecord("a"), doneRecord("b")}
	c := newTestController(videoItems(4), records)

	out := c.Resume()
	assert.True(t, out.Moved)
	assert.True(t, out.Initial)
	assert.Equal(t, 2, out.Index)
}

func TestResumeAllDonePicksLast(t *testing.T) {
	records := []progress.Record{doneRecord("a"), doneRecord("b"), doneRecord("c")}
	c := newTestController(videoItems(3), records)

	out := c.Resume()
	assert.Equal(t, 2, out.Index)
}

func TestResumeRunsOnce(t *testing.T) {
	records := []progress.Record{doneRecord("a")}
	c := newTestController(videoItems(3), records)

	first := c.Resume()
	require.Equal(t, 1, first.Index)

	// finishing another item must not re-trigger resume
	c.Session().SetRecord(doneRecord("b"))
	second := c.Resume()
	assert.False(t, second.Moved)
	assert.Equal(t, 1, second.Index)
}

/* ---------------- visibility ---------------- */

func TestVisibilityDenySnapsBack(t *testing.T) {
	c := newTestController(videoItems(3), nil)

	out := c.HandleVisibility(1)
	assert.False(t, out.Moved)
	assert.True(t, out.SnapBack)
	assert.Equal(t, 0, out.Index)
	assert.NotEmpty(t, out.Message)
}

func TestVisibilityAllowAdvancesAndNamesLeftItem(t *testing.T) {
	records := []progress.Record{doneRecord("a")}
	c := newTestController(videoItems(3), records)

	out := c.HandleVisibility(1)
	assert.True(t, out.Moved)
	assert.Equal(t, 1, out.Index)
	assert.Equal(t, "a", out.LeftItemID)
	assert.Equal(t, 1, c.Session().ActiveIndex)
}

func TestVisibilityMessageRateLimited(t *testing.T) {
	c := newTestController(videoItems(3), nil)
	base := time.Unix(1700000000, 0)
	now := base
	c.SetNow(func() time.Time { return now })

	first := c.HandleVisibility(1)
	require.NotEmpty(t, first.Message)

	now = base.Add(300 * time.Millisecond)
	second := c.HandleVisibility(1)
	assert.Empty(t, second.Message, "identical message within the window is suppressed")
	assert.True(t, second.SnapBack, "the snap-back itself still happens")

	now = base.Add(2 * time.Second)
	third := c.HandleVisibility(1)
	assert.NotEmpty(t, third.Message)
}

/* ---------------- wheel ---------------- */

func TestWheelSingleGestureSingleStep(t *testing.T) {
	records := []progress.Record{doneRecord("a"), doneRecord("b"), doneRecord("c")}
	c := newTestController(videoItems(4), records)
	base := time.Unix(1700000000, 0)
	now := base
	c.SetNow(func() time.Time { return now })

	// one physical gesture arrives as a burst of small deltas
	steps := 0
	for i, delta := range []float64{50, 50, 40, 80, 90, 60} {
		now = base.Add(time.Duration(i*30) * time.Millisecond)
		if out := c.HandleWheel(delta); out.Moved {
			steps++
		}
	}
	assert.Equal(t, 1, steps, "a single gesture commits exactly one transition")
	assert.Equal(t, 1, c.Session().ActiveIndex)

	// after the cooldown the next gesture is accepted
	now = base.Add(2 * time.Second)
	out := c.HandleWheel(130)
	assert.True(t, out.Moved)
	assert.Equal(t, 2, out.Index)
}

func TestWheelBelowThresholdDoesNothing(t *testing.T) {
	records := []progress.Record{doneRecord("a")}
	c := newTestController(videoItems(2), records)

	out := c.HandleWheel(60)
	assert.False(t, out.Moved)
	assert.Equal(t, 0, out.Index)
}

func TestWheelBackwardStep(t *testing.T) {
	records := []progress.Record{doneRecord("a")}
	c := newTestController(videoItems(3), records)
	c.Session().ActiveIndex = 1

	out := c.HandleWheel(-150)
	assert.True(t, out.Moved)
	assert.Equal(t, 0, out.Index)
}

func TestWheelClampedAtEnds(t *testing.T) {
	c := newTestController(videoItems(2), nil)

	out := c.HandleWheel(-150)
	assert.False(t, out.Moved)
	assert.Equal(t, 0, out.Index)
}

func TestWheelCooldownDefaultedFromZeroConfig(t *testing.T) {
	records := []progress.Record{doneRecord("a"), doneRecord("b")}
	session := NewSession(testEnrollment, videoItems(3), records)
	c := NewController(session, ControllerConfig{Thresholds: progress.DefaultThresholds()}, zap.NewNop())
	base := time.Unix(1700000000, 0)
	now := base
	c.SetNow(func() time.Time { return now })

	out := c.HandleWheel(150)
	require.True(t, out.Moved)

	// immediately after a step the debounce still applies
	now = base.Add(50 * time.Millisecond)
	out = c.HandleWheel(150)
	assert.False(t, out.Moved)
	assert.Equal(t, 1, c.Session().ActiveIndex)
}

/* ---------------- image carousel ---------------- */

func TestCarouselExhaustionAllowsForwardMove(t *testing.T) {
	items := []content.Item{
		{ID: "a", Ordinal: 0, Type: content.TypeImage,
			Payload: content.Payload{Images: []string{"1.png", "2.png", "3.png"}}},
		{ID: "b", Ordinal: 1, Type: content.TypeVideo},
	}
	c := newTestController(items, nil)

	// each forward intent steps the cursor instead of leaving the item
	for want := 1; want <= 2; want++ {
		out := c.HandleVisibility(1)
		assert.False(t, out.Moved)
		assert.True(t, out.CursorAdvanced)
		assert.Equal(t, want, out.Cursor)
	}

	// with the carousel exhausted the same intent goes through
	out := c.HandleVisibility(1)
	assert.True(t, out.Moved)
	assert.Equal(t, 1, out.Index)
	assert.Empty(t, out.Message)
}

/* ---------------- jump ---------------- */

func TestJumpBypassesGate(t *testing.T) {
	c := newTestController(videoItems(4), nil)

	out := c.JumpTo(3)
	assert.True(t, out.Moved)
	assert.Equal(t, 3, out.Index)
}

func TestJumpOutOfRangeIgnored(t *testing.T) {
	c := newTestController(videoItems(2), nil)

	out := c.JumpTo(9)
	assert.False(t, out.Moved)
	assert.Equal(t, 0, out.Index)
}

/* ---------------- assignment checkpoint ---------------- */

func TestAcknowledgePerformsDeferredAdvance(t *testing.T) {
	items := []content.Item{
		{ID: "a", Ordinal: 0, Type: content.TypeVideo, HasAssignment: true, AssignmentRef: "tpl-1"},
		{ID: "b", Ordinal: 1, Type: content.TypeVideo},
	}
	records := []progress.Record{
		{EnrollmentID: "e1", ItemID: "a", Percent: 90, Seen: true},
	}
	c := newTestController(items, records)

	out := c.HandleVisibility(1)
	require.False(t, out.Moved)
	assert.True(t, out.ShowAssignment)
	assert.Equal(t, "tpl-1", out.AssignmentRef)
	assert.Equal(t, 0, c.Session().ActiveIndex)

	// acknowledging reaches the original target without a second gesture
	out = c.Acknowledge("a")
	assert.True(t, out.Moved)
	assert.Equal(t, 1, out.Index)
	assert.Equal(t, 1, c.Session().ActiveIndex)
}

func TestMovingAwayDropsDeferredTarget(t *testing.T) {
	items := []content.Item{
		{ID: "a", Ordinal: 0, Type: content.TypeVideo, HasAssignment: true, AssignmentRef: "tpl-1"},
		{ID: "b", Ordinal: 1, Type: content.TypeVideo},
		{ID: "c", Ordinal: 2, Type: content.TypeVideo},
	}
	records := []progress.Record{
		{EnrollmentID: "e1", ItemID: "a", Percent: 90, Seen: true},
	}
	c := newTestController(items, records)

	out := c.HandleVisibility(1)
	require.True(t, out.ShowAssignment)

	// the user navigates elsewhere before acknowledging
	out = c.JumpTo(2)
	require.True(t, out.Moved)

	// a late acknowledge must not replay the old target
	out = c.Acknowledge("a")
	assert.False(t, out.Moved)
	assert.Equal(t, 2, c.Session().ActiveIndex)
}

func TestAcknowledgeWithoutPendingTargetStaysPut(t *testing.T) {
	items := []content.Item{
		{ID: "a", Ordinal: 0, Type: content.TypeVideo, HasAssignment: true},
		{ID: "b", Ordinal: 1, Type: content.TypeVideo},
	}
	c := newTestController(items, nil)

	out := c.Acknowledge("a")
	assert.False(t, out.Moved)
	assert.Equal(t, 0, out.Index)
}
