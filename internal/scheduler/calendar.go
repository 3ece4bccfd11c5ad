package scheduler

import "time"

// Calendar is the validity predicate over exam days: a fixed weekly rest day
// and an arbitrary holiday set are excluded, everything else is fair game.
type Calendar struct {
	rest     time.Weekday
	holidays map[time.Time]struct{}
}

// NewCalendar builds a calendar excluding the given weekly rest day and the
// holiday dates (normalised to midnight UTC).
func NewCalendar(rest time.Weekday, holidays []time.Time) *Calendar {
	set := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		set[DateOnly(h)] = struct{}{}
	}
	return &Calendar{rest: rest, holidays: set}
}

// DateOnly strips the time-of-day component, anchoring the date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Valid reports whether exams may be held on the given day.
func (c *Calendar) Valid(day time.Time) bool {
	day = DateOnly(day)
	if day.Weekday() == c.rest {
		return false
	}
	_, holiday := c.holidays[day]
	return !holiday
}

// NextValidDay returns the first valid day in [from, until], or false when
// the window holds none.
func (c *Calendar) NextValidDay(from, until time.Time) (time.Time, bool) {
	day := DateOnly(from)
	until = DateOnly(until)
	for !day.After(until) {
		if c.Valid(day) {
			return day, true
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

// NextValidDayFrom returns the first valid day on or after from, with no
// upper bound. The holiday set is finite, so this always terminates.
func (c *Calendar) NextValidDayFrom(from time.Time) time.Time {
	day := DateOnly(from)
	for !c.Valid(day) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}
