package scheduler

import (
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// ElectiveScheduler appends the two elective days after the last regular
// exam: tracks A and E share day one's morning session, track B takes the
// afternoon of the next valid day.
type ElectiveScheduler struct {
	cal    *Calendar
	logger *zap.Logger
}

// NewElectiveScheduler builds the pass over the given calendar.
func NewElectiveScheduler(cal *Calendar, logger *zap.Logger) *ElectiveScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ElectiveScheduler{cal: cal, logger: logger}
}

// Schedule stamps elective offerings with their two-day placement. lastExam
// is the latest regular assignment; the search starts the day after and never
// crosses horizon.
func (s *ElectiveScheduler) Schedule(electives []*models.Offering, lastExam, horizon time.Time) models.ElectivePlacement {
	if len(electives) == 0 {
		return models.ElectivePlacement{Scheduled: false, Reason: "no elective offerings"}
	}

	dayOne, ok := s.cal.NextValidDay(lastExam.AddDate(0, 0, 1), horizon)
	if !ok {
		return models.ElectivePlacement{Scheduled: false, Reason: "no valid day left for electives"}
	}
	dayTwo, ok := s.cal.NextValidDay(dayOne.AddDate(0, 0, 1), horizon)
	if !ok {
		return models.ElectivePlacement{Scheduled: false, Reason: "no valid second day left for electives"}
	}

	for _, o := range electives {
		switch o.ElectiveTrack {
		case models.TrackA, models.TrackE:
			d := dayOne
			o.ExamDate = &d
			o.Slot = models.SlotMorning
		case models.TrackB:
			d := dayTwo
			o.ExamDate = &d
			o.Slot = models.SlotAfternoon
		}
	}

	s.logger.Info("electives placed",
		zap.Time("dayOne", dayOne),
		zap.Time("dayTwo", dayTwo),
		zap.Int("offerings", len(electives)))
	return models.ElectivePlacement{Scheduled: true, DayOne: &dayOne, DayTwo: &dayTwo}
}
