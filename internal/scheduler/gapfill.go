package scheduler

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// GapFillOptimizer runs once after primary scheduling and pulls single-cohort
// units onto earlier days their cohort left idle. Common units never move;
// slots and capacity totals are left as placed.
type GapFillOptimizer struct {
	cal    *Calendar
	logger *zap.Logger
}

// NewGapFillOptimizer builds the pass over the given calendar.
func NewGapFillOptimizer(cal *Calendar, logger *zap.Logger) *GapFillOptimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GapFillOptimizer{cal: cal, logger: logger}
}

// Optimize moves eligible units to the earliest valid idle day before their
// current date and reports the moves. The usage map is updated in place so
// later passes see the new bookings.
func (o *GapFillOptimizer) Optimize(units []*Unit, usage CohortUsage, start time.Time, offerings []*models.Offering) models.OptimizationReport {
	report := models.OptimizationReport{SpanBefore: Span(offerings)}

	for _, u := range units {
		if !u.Assigned || u.IsCommon() || u.Frequency != 1 {
			continue
		}
		cohort := u.Cohorts[0]
		target, ok := o.earliestIdleDay(cohort, usage, start, u.Date)
		if !ok {
			continue
		}

		usage.Unmark(u.Date, cohort)
		usage.Mark(target, cohort)
		line := fmt.Sprintf("moved %s (%s) from %s to %s",
			u.Code, cohort, u.Date.Format("2006-01-02"), target.Format("2006-01-02"))
		u.Date = target
		for _, off := range u.Offerings {
			d := target
			off.ExamDate = &d
		}
		report.Moves++
		report.Log = append(report.Log, line)
		o.logger.Info("gap fill move", zap.String("detail", line))
	}

	report.SpanAfter = Span(offerings)
	return report
}

// earliestIdleDay scans valid days in [start, before) for the first one the
// cohort is not booked on.
func (o *GapFillOptimizer) earliestIdleDay(cohort models.CohortKey, usage CohortUsage, start, before time.Time) (time.Time, bool) {
	day, ok := o.cal.NextValidDay(start, before.AddDate(0, 0, -1))
	for ok {
		if !usage.Used(day, cohort) {
			return day, true
		}
		day, ok = o.cal.NextValidDay(day.AddDate(0, 0, 1), before.AddDate(0, 0, -1))
	}
	return time.Time{}, false
}
