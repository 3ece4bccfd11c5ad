package scheduler

import (
	"time"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

type sessionKey struct {
	date time.Time
	slot models.Slot
}

// CapacityTracker keeps per-session running student totals against the
// configured ceiling.
type CapacityTracker struct {
	ceiling int
	used    map[sessionKey]int
}

// NewCapacityTracker builds a tracker. A non-positive ceiling disables the
// capacity constraint entirely.
func NewCapacityTracker(ceiling int) *CapacityTracker {
	return &CapacityTracker{ceiling: ceiling, used: make(map[sessionKey]int)}
}

// Fits reports whether the session can admit students more enrolled heads
// without breaching the ceiling.
func (t *CapacityTracker) Fits(date time.Time, slot models.Slot, students int) bool {
	if t.ceiling <= 0 {
		return true
	}
	return t.used[sessionKey{date: DateOnly(date), slot: slot}]+students <= t.ceiling
}

// Add records an allocation against the session.
func (t *CapacityTracker) Add(date time.Time, slot models.Slot, students int) {
	t.used[sessionKey{date: DateOnly(date), slot: slot}] += students
}

// Used returns the running total for the session.
func (t *CapacityTracker) Used(date time.Time, slot models.Slot) int {
	return t.used[sessionKey{date: DateOnly(date), slot: slot}]
}

// Ceiling exposes the configured per-session limit.
func (t *CapacityTracker) Ceiling() int {
	return t.ceiling
}
