package scheduler

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// ElectiveRelocationOptimizer tightens the overall span by pulling the two
// elective days into the earliest pair of consecutive valid days on which
// nothing at all is scheduled. At most one move happens per run, so a second
// run is a no-op.
type ElectiveRelocationOptimizer struct {
	cal    *Calendar
	logger *zap.Logger
}

// NewElectiveRelocationOptimizer builds the pass over the given calendar.
func NewElectiveRelocationOptimizer(cal *Calendar, logger *zap.Logger) *ElectiveRelocationOptimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ElectiveRelocationOptimizer{cal: cal, logger: logger}
}

// Optimize relocates the elective pair when an earlier fully idle day pair
// exists inside the occupied range.
func (o *ElectiveRelocationOptimizer) Optimize(offerings []*models.Offering) models.OptimizationReport {
	report := models.OptimizationReport{SpanBefore: Span(offerings)}
	report.SpanAfter = report.SpanBefore

	var dayOneGroup, dayTwoGroup []*models.Offering
	for _, off := range offerings {
		if !off.IsElective() || off.ExamDate == nil {
			continue
		}
		switch off.ElectiveTrack {
		case models.TrackA, models.TrackE:
			dayOneGroup = append(dayOneGroup, off)
		case models.TrackB:
			dayTwoGroup = append(dayTwoGroup, off)
		}
	}
	if len(dayOneGroup) == 0 {
		return report
	}
	dayOne := DateOnly(*dayOneGroup[0].ExamDate)

	busy := make(map[time.Time]struct{})
	var first, last time.Time
	for _, off := range offerings {
		if off.ExamDate == nil || off.OutOfRange {
			continue
		}
		d := DateOnly(*off.ExamDate)
		busy[d] = struct{}{}
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if last.IsZero() || d.After(last) {
			last = d
		}
	}

	idle := make(map[time.Time]struct{})
	var idleDays []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if !o.cal.Valid(d) {
			continue
		}
		if _, taken := busy[d]; taken {
			continue
		}
		idle[d] = struct{}{}
		idleDays = append(idleDays, d)
	}
	sort.Slice(idleDays, func(i, j int) bool { return idleDays[i].Before(idleDays[j]) })

	for _, candidate := range idleDays {
		if !candidate.Before(dayOne) {
			break
		}
		next := o.cal.NextValidDayFrom(candidate.AddDate(0, 0, 1))
		if _, ok := idle[next]; !ok {
			continue
		}
		for _, off := range dayOneGroup {
			d := candidate
			off.ExamDate = &d
			off.Slot = models.SlotMorning
		}
		for _, off := range dayTwoGroup {
			d := next
			off.ExamDate = &d
			off.Slot = models.SlotAfternoon
		}
		line := fmt.Sprintf("relocated electives from %s to %s/%s",
			dayOne.Format("2006-01-02"), candidate.Format("2006-01-02"), next.Format("2006-01-02"))
		report.Moves = 1
		report.Log = append(report.Log, line)
		report.SpanAfter = Span(offerings)
		o.logger.Info("elective relocation", zap.String("detail", line))
		break
	}
	return report
}
