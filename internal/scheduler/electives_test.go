package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

func electiveOffering(code, track string, students int) *models.Offering {
	return &models.Offering{
		SubjectCode:   code,
		SubjectName:   code + " name",
		Branch:        "A",
		Semester:      5,
		Category:      models.CategoryElective,
		ElectiveTrack: track,
		StudentCount:  students,
	}
}

func TestElectiveSchedulerTwoDayPlacement(t *testing.T) {
	cal := NewCalendar(time.Sunday, nil)
	s := NewElectiveScheduler(cal, nil)

	oe1 := electiveOffering("OE1", models.TrackA, 300)
	oe5 := electiveOffering("OE5", models.TrackE, 200)
	oe2 := electiveOffering("OE2", models.TrackB, 250)

	lastExam := date(2026, time.March, 12)
	placement := s.Schedule([]*models.Offering{oe1, oe5, oe2}, lastExam, lastExam.AddDate(0, 0, 14))

	require.True(t, placement.Scheduled)
	assert.Equal(t, date(2026, time.March, 13), *placement.DayOne)
	assert.Equal(t, date(2026, time.March, 14), *placement.DayTwo)

	assert.Equal(t, *placement.DayOne, *oe1.ExamDate)
	assert.Equal(t, models.SlotMorning, oe1.Slot)
	assert.Equal(t, *placement.DayOne, *oe5.ExamDate)
	assert.Equal(t, models.SlotMorning, oe5.Slot)
	assert.Equal(t, *placement.DayTwo, *oe2.ExamDate)
	assert.Equal(t, models.SlotAfternoon, oe2.Slot)
}

func TestElectiveSchedulerAdjacencySkipsRestDay(t *testing.T) {
	cal := NewCalendar(time.Sunday, nil)
	s := NewElectiveScheduler(cal, nil)

	oe1 := electiveOffering("OE1", models.TrackA, 300)
	oe2 := electiveOffering("OE2", models.TrackB, 250)

	// Last exam on a Friday: day one lands Saturday, day two must skip the
	// Sunday and land Monday.
	lastExam := date(2026, time.March, 6)
	placement := s.Schedule([]*models.Offering{oe1, oe2}, lastExam, lastExam.AddDate(0, 0, 14))

	require.True(t, placement.Scheduled)
	assert.Equal(t, date(2026, time.March, 7), *placement.DayOne)
	assert.Equal(t, date(2026, time.March, 9), *placement.DayTwo)
}

func TestElectiveSchedulerNoRoomBeforeHorizon(t *testing.T) {
	cal := NewCalendar(time.Sunday, nil)
	s := NewElectiveScheduler(cal, nil)

	oe1 := electiveOffering("OE1", models.TrackA, 300)
	lastExam := date(2026, time.March, 12)

	placement := s.Schedule([]*models.Offering{oe1}, lastExam, lastExam)
	assert.False(t, placement.Scheduled)
	assert.NotEmpty(t, placement.Reason)
	assert.Nil(t, oe1.ExamDate)
}

func TestElectiveSchedulerEmptyInput(t *testing.T) {
	cal := NewCalendar(time.Sunday, nil)
	placement := NewElectiveScheduler(cal, nil).Schedule(nil, date(2026, time.March, 12), date(2026, time.March, 30))
	assert.False(t, placement.Scheduled)
}
