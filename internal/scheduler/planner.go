package scheduler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/pkg/errors"
)

const (
	// DefaultMainDayBudget bounds the two-pass main phase.
	DefaultMainDayBudget = 15
	// DefaultTotalDayBudget bounds main plus extended phases together.
	DefaultTotalDayBudget = 25
	// DefaultSessionCeiling is the per-session seat limit.
	DefaultSessionCeiling = 2000
)

// Config parameterises one planning run.
type Config struct {
	Start          time.Time
	End            time.Time
	Holidays       []time.Time
	RestWeekday    time.Weekday
	SessionCeiling int
	MainDayBudget  int
	TotalDayBudget int
	Logger         *zap.Logger
}

// Outcome is the full result of a planning run: annotated offerings plus the
// per-pass reports a caller needs to judge the plan.
type Outcome struct {
	Offerings   []*models.Offering
	Units       []*Unit
	CapacityOK  bool
	Violations  []models.CapacityViolation
	Electives   models.ElectivePlacement
	GapFill     models.OptimizationReport
	Relocation  models.OptimizationReport
	DaysUsed    int
	OutOfRange  int
	Diagnostics []string
}

// Plan runs the full pipeline: unit build, primary scheduling, capacity
// validation, elective placement, gap fill and elective relocation. Offerings
// are annotated in place.
func Plan(offerings []*models.Offering, cfg Config) (*Outcome, error) {
	if cfg.End.Before(cfg.Start) {
		return nil, errors.New("INVALID_WINDOW", http.StatusBadRequest, "campaign end precedes start")
	}
	if cfg.MainDayBudget <= 0 {
		cfg.MainDayBudget = DefaultMainDayBudget
	}
	if cfg.TotalDayBudget < cfg.MainDayBudget {
		cfg.TotalDayBudget = DefaultTotalDayBudget
	}
	if cfg.SessionCeiling == 0 {
		cfg.SessionCeiling = DefaultSessionCeiling
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	units, err := BuildUnits(offerings)
	if err != nil {
		return nil, err
	}

	cal := NewCalendar(cfg.RestWeekday, cfg.Holidays)
	capacity := NewCapacityTracker(cfg.SessionCeiling)
	primary := NewPrimaryScheduler(cal, capacity, cfg.MainDayBudget, cfg.TotalDayBudget, logger)
	res := primary.Run(units, cfg.Start, cfg.End)

	out := &Outcome{
		Offerings:   offerings,
		Units:       units,
		DaysUsed:    res.DaysUsed,
		OutOfRange:  len(res.OutOfRange),
		Diagnostics: res.Diagnostics,
	}
	out.CapacityOK, out.Violations = ValidateCapacity(nonElective(offerings), cfg.SessionCeiling)

	electives := electiveOfferings(offerings)
	lastExam := lastAssignedDay(offerings, cfg.Start)
	out.Electives = NewElectiveScheduler(cal, logger).Schedule(electives, lastExam, cfg.End)

	out.GapFill = NewGapFillOptimizer(cal, logger).Optimize(units, res.Usage, DateOnly(cfg.Start), offerings)
	out.Relocation = NewElectiveRelocationOptimizer(cal, logger).Optimize(offerings)

	logger.Info("planning run complete",
		zap.Int("units", len(units)),
		zap.Int("daysUsed", out.DaysUsed),
		zap.Int("outOfRange", out.OutOfRange),
		zap.Bool("capacityOK", out.CapacityOK),
		zap.Int("gapFillMoves", out.GapFill.Moves),
		zap.Int("relocationMoves", out.Relocation.Moves))
	return out, nil
}

func nonElective(offerings []*models.Offering) []*models.Offering {
	var out []*models.Offering
	for _, o := range offerings {
		if o.Category == models.CategoryExcluded || o.IsElective() {
			continue
		}
		out = append(out, o)
	}
	return out
}

func electiveOfferings(offerings []*models.Offering) []*models.Offering {
	var out []*models.Offering
	for _, o := range offerings {
		if o.Category == models.CategoryExcluded || !o.IsElective() {
			continue
		}
		out = append(out, o)
	}
	return out
}

// lastAssignedDay returns the latest regular exam date, or the day before the
// campaign start when nothing was assigned so electives land on day one.
func lastAssignedDay(offerings []*models.Offering, start time.Time) time.Time {
	last := DateOnly(start).AddDate(0, 0, -1)
	for _, o := range offerings {
		if o.IsElective() || !o.Assigned() {
			continue
		}
		if d := DateOnly(*o.ExamDate); d.After(last) {
			last = d
		}
	}
	return last
}
