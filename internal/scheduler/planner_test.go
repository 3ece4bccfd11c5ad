package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// campaign start is a Monday so the first candidate day is always valid.
var campaignStart = date(2026, time.March, 2)

func planConfig() Config {
	return Config{
		Start:          campaignStart,
		End:            campaignStart.AddDate(0, 0, 45),
		RestWeekday:    time.Sunday,
		SessionCeiling: 2000,
	}
}

func TestPlanCommonUnitLandsOnOneDate(t *testing.T) {
	offerings := []*models.Offering{
		regularOffering("CS101", "A", 3, 500),
		regularOffering("CS101", "B", 3, 500),
	}

	out, err := Plan(offerings, planConfig())
	require.NoError(t, err)

	require.NotNil(t, offerings[0].ExamDate)
	require.NotNil(t, offerings[1].ExamDate)
	assert.True(t, offerings[0].ExamDate.Equal(*offerings[1].ExamDate), "common unit split across dates")
	assert.Equal(t, offerings[0].Slot, offerings[1].Slot)
	assert.True(t, out.CapacityOK)
	assert.Empty(t, out.Diagnostics)
}

func TestPlanOverflowMovesToAlternateSlot(t *testing.T) {
	big := regularOffering("MA101", "A", 1, 1800)
	small := regularOffering("PH101", "B", 1, 500)

	out, err := Plan([]*models.Offering{big, small}, planConfig())
	require.NoError(t, err)
	require.True(t, out.CapacityOK)

	require.NotNil(t, big.ExamDate)
	require.NotNil(t, small.ExamDate)
	assert.True(t, big.ExamDate.Equal(*small.ExamDate), "different cohorts should share the first day")
	assert.Equal(t, models.SlotMorning, big.Slot)
	assert.Equal(t, models.SlotAfternoon, small.Slot, "second unit must spill into the afternoon")
}

func TestPlanSkipsRestDayBetweenExams(t *testing.T) {
	// Same cohort forces consecutive valid days. Starting Saturday, the
	// second exam must skip Sunday and land on Monday.
	first := regularOffering("CS101", "A", 1, 100)
	second := regularOffering("CS102", "A", 1, 100)

	cfg := planConfig()
	cfg.Start = date(2026, time.March, 7)

	_, err := Plan([]*models.Offering{first, second}, cfg)
	require.NoError(t, err)

	require.NotNil(t, first.ExamDate)
	require.NotNil(t, second.ExamDate)
	assert.Equal(t, date(2026, time.March, 7), *first.ExamDate)
	assert.Equal(t, date(2026, time.March, 9), *second.ExamDate)
}

func TestPlanMarksExtendedPhaseRelaxed(t *testing.T) {
	// Thirty single-cohort units serialize to one exam per day, exceeding
	// both day budgets.
	var offerings []*models.Offering
	for i := 1; i <= 30; i++ {
		offerings = append(offerings, regularOffering(fmt.Sprintf("U%02d", i), "A", 1, 100))
	}

	out, err := Plan(offerings, planConfig())
	require.NoError(t, err)

	assert.Equal(t, DefaultTotalDayBudget, out.DaysUsed)
	assert.Equal(t, 5, out.OutOfRange)

	var relaxed, assigned, outOfRange int
	for _, o := range offerings {
		switch {
		case o.OutOfRange:
			outOfRange++
			assert.Nil(t, o.ExamDate)
		case o.Relaxed:
			relaxed++
		default:
			assigned++
		}
	}
	assert.Equal(t, DefaultMainDayBudget, assigned)
	assert.Equal(t, DefaultTotalDayBudget-DefaultMainDayBudget, relaxed)
	assert.Equal(t, 5, outOfRange)
}

func TestPlanTerminatesWhenWindowTooSmall(t *testing.T) {
	var offerings []*models.Offering
	for i := 1; i <= 10; i++ {
		offerings = append(offerings, regularOffering(fmt.Sprintf("U%02d", i), "A", 1, 100))
	}

	cfg := planConfig()
	cfg.End = campaignStart.AddDate(0, 0, 3)

	out, err := Plan(offerings, cfg)
	require.NoError(t, err)
	assert.Greater(t, out.OutOfRange, 0)
	assert.NotEmpty(t, out.Diagnostics)
}

func TestPlanRejectsInvertedWindow(t *testing.T) {
	cfg := planConfig()
	cfg.End = cfg.Start.AddDate(0, 0, -1)

	_, err := Plan(nil, cfg)
	require.Error(t, err)
}

func TestPlanNoCohortDoubleBooking(t *testing.T) {
	offerings := []*models.Offering{
		regularOffering("CS101", "A", 3, 400),
		regularOffering("CS101", "B", 3, 400),
		regularOffering("MA201", "A", 3, 300),
		regularOffering("MA201", "B", 3, 300),
		regularOffering("PH301", "A", 3, 200),
		regularOffering("EE110", "B", 3, 200),
		regularOffering("HS120", "A", 5, 150),
	}

	out, err := Plan(offerings, planConfig())
	require.NoError(t, err)
	require.Zero(t, out.OutOfRange)

	booked := make(map[string]string)
	for _, o := range offerings {
		require.NotNil(t, o.ExamDate, o.SubjectCode)
		key := o.ExamDate.Format("2006-01-02") + "|" + o.Cohort().String()
		if prev, ok := booked[key]; ok {
			assert.Equal(t, prev, o.SubjectCode, "cohort double-booked on %s", key)
		}
		booked[key] = o.SubjectCode
	}
}

func TestPlanCapacityRespectedOutsideRelaxedPhase(t *testing.T) {
	var offerings []*models.Offering
	for i := 0; i < 12; i++ {
		branch := string(rune('A' + i%4))
		offerings = append(offerings,
			regularOffering(fmt.Sprintf("C%02d", i), branch, 1+i%6, 700))
	}

	cfg := planConfig()
	cfg.SessionCeiling = 1500

	out, err := Plan(offerings, cfg)
	require.NoError(t, err)

	// CapacityOK reflects the validator sweep taken right after primary
	// scheduling, before any optimizer moves.
	assert.True(t, out.CapacityOK)
	assert.Empty(t, out.Violations)
	assert.LessOrEqual(t, out.GapFill.SpanAfter, out.GapFill.SpanBefore)
}
