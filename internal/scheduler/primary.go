package scheduler

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// CohortUsage records which cohorts already sit an exam on each day.
type CohortUsage map[time.Time]map[models.CohortKey]struct{}

// Used reports whether the cohort is booked on the given day.
func (u CohortUsage) Used(day time.Time, key models.CohortKey) bool {
	_, ok := u[DateOnly(day)][key]
	return ok
}

// Mark books the cohort on the given day.
func (u CohortUsage) Mark(day time.Time, key models.CohortKey) {
	day = DateOnly(day)
	if u[day] == nil {
		u[day] = make(map[models.CohortKey]struct{})
	}
	u[day][key] = struct{}{}
}

// Unmark releases the cohort's booking on the given day.
func (u CohortUsage) Unmark(day time.Time, key models.CohortKey) {
	delete(u[DateOnly(day)], key)
}

// PrimaryScheduler walks the campaign calendar day by day and assigns atomic
// units in priority order. The main phase runs for a bounded number of days
// with two passes per day; an extended phase then picks up leftovers under a
// relaxed marker.
type PrimaryScheduler struct {
	cal         *Calendar
	capacity    *CapacityTracker
	mainBudget  int
	totalBudget int
	logger      *zap.Logger
}

// PrimaryResult carries the scheduling state downstream passes need.
type PrimaryResult struct {
	Usage       CohortUsage
	DaysUsed    int
	Placed      int
	OutOfRange  []*Unit
	Diagnostics []string
}

// NewPrimaryScheduler wires the day-walk over the given calendar and capacity
// tracker. mainBudget bounds the two-pass phase, totalBudget the whole walk.
func NewPrimaryScheduler(cal *Calendar, capacity *CapacityTracker, mainBudget, totalBudget int, logger *zap.Logger) *PrimaryScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrimaryScheduler{
		cal:         cal,
		capacity:    capacity,
		mainBudget:  mainBudget,
		totalBudget: totalBudget,
		logger:      logger,
	}
}

// Run schedules the units between start and end. Units still unassigned when
// both phases are exhausted are marked out of range.
func (s *PrimaryScheduler) Run(units []*Unit, start, end time.Time) *PrimaryResult {
	res := &PrimaryResult{Usage: make(CohortUsage)}
	queue := SortQueue(units)
	cursor := DateOnly(start)

	day := 0
	for day < s.mainBudget && len(queue) > 0 {
		examDay, ok := s.cal.NextValidDay(cursor, end)
		if !ok {
			res.Diagnostics = append(res.Diagnostics,
				fmt.Sprintf("campaign window exhausted after %d days with %d units pending", day, len(queue)))
			break
		}
		s.directPass(queue, examDay, false, res)
		queue = pending(queue)
		s.gapFillPass(queue, examDay, res)
		queue = pending(queue)
		cursor = examDay.AddDate(0, 0, 1)
		day++
	}

	for day < s.totalBudget && len(queue) > 0 {
		examDay, ok := s.cal.NextValidDay(cursor, end)
		if !ok {
			res.Diagnostics = append(res.Diagnostics,
				fmt.Sprintf("extended phase ran out of calendar with %d units pending", len(queue)))
			break
		}
		s.directPass(queue, examDay, true, res)
		queue = pending(queue)
		cursor = examDay.AddDate(0, 0, 1)
		day++
	}

	res.DaysUsed = day
	for _, u := range queue {
		u.OutOfRange = true
		for _, o := range u.Offerings {
			o.OutOfRange = true
		}
		res.OutOfRange = append(res.OutOfRange, u)
		s.logger.Warn("unit out of range",
			zap.String("subject", u.Code),
			zap.Int("frequency", u.Frequency))
	}
	return res
}

// directPass walks the queue in priority order and places every unit whose
// cohorts are all free today and whose students fit one of the two sessions.
func (s *PrimaryScheduler) directPass(queue []*Unit, day time.Time, relaxed bool, res *PrimaryResult) {
	for _, u := range queue {
		if u.Assigned || s.conflicts(u, day, res.Usage) {
			continue
		}
		slot, ok := s.pickSlot(u, day)
		if !ok {
			continue
		}
		s.place(u, day, slot, relaxed, res)
	}
}

// gapFillPass packs frequency-one units into cohorts still idle today. It
// never touches common units, those must go through the direct pass whole.
func (s *PrimaryScheduler) gapFillPass(queue []*Unit, day time.Time, res *PrimaryResult) {
	for _, u := range queue {
		if u.Assigned || u.IsCommon() || u.Frequency != 1 {
			continue
		}
		if res.Usage.Used(day, u.Cohorts[0]) {
			continue
		}
		slot, ok := s.pickSlot(u, day)
		if !ok {
			continue
		}
		s.place(u, day, slot, false, res)
	}
}

func (s *PrimaryScheduler) conflicts(u *Unit, day time.Time, usage CohortUsage) bool {
	for _, k := range u.Cohorts {
		if usage.Used(day, k) {
			return true
		}
	}
	return false
}

// pickSlot tries the parity-preferred session first, then the alternate.
func (s *PrimaryScheduler) pickSlot(u *Unit, day time.Time) (models.Slot, bool) {
	slot := preferredSlot(u.MaxSemester())
	if s.capacity.Fits(day, slot, u.Students) {
		return slot, true
	}
	if s.capacity.Fits(day, slot.Other(), u.Students) {
		s.logger.Debug("session full, using alternate slot",
			zap.String("subject", u.Code),
			zap.Time("date", day),
			zap.String("preferred", string(slot)))
		return slot.Other(), true
	}
	return "", false
}

func (s *PrimaryScheduler) place(u *Unit, day time.Time, slot models.Slot, relaxed bool, res *PrimaryResult) {
	u.Assigned = true
	u.Date = day
	u.Slot = slot
	u.Relaxed = relaxed
	for _, o := range u.Offerings {
		d := day
		o.ExamDate = &d
		o.Slot = slot
		o.Relaxed = relaxed
	}
	for _, k := range u.Cohorts {
		res.Usage.Mark(day, k)
	}
	s.capacity.Add(day, slot, u.Students)
	res.Placed++

	if diag, ok := splitCheck(u); !ok {
		res.Diagnostics = append(res.Diagnostics, diag)
	}
}

// splitCheck asserts every offering of the unit shares one exam date. A
// failure here means the atomicity invariant was broken upstream.
func splitCheck(u *Unit) (string, bool) {
	for _, o := range u.Offerings {
		if o.ExamDate == nil || !o.ExamDate.Equal(u.Date) {
			return fmt.Sprintf("unit %s split across days", u.Code), false
		}
	}
	return "", true
}

func pending(queue []*Unit) []*Unit {
	out := queue[:0]
	for _, u := range queue {
		if !u.Assigned {
			out = append(out, u)
		}
	}
	return out
}
