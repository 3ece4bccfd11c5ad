package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

func regularOffering(code, branch string, semester, students int) *models.Offering {
	return &models.Offering{
		SubjectCode:  code,
		SubjectName:  code + " name",
		Branch:       branch,
		Semester:     semester,
		Category:     models.CategoryRegular,
		StudentCount: students,
	}
}

func TestBuildUnitsGroupsBySubjectCode(t *testing.T) {
	units, err := BuildUnits([]*models.Offering{
		regularOffering("CS101", "A", 3, 500),
		regularOffering("CS101", "B", 3, 500),
		regularOffering("MA201", "A", 3, 120),
	})
	require.NoError(t, err)
	require.Len(t, units, 2)

	cs := units[0]
	assert.Equal(t, "CS101", cs.Code)
	assert.Equal(t, 2, cs.Frequency)
	assert.Equal(t, 1000, cs.Students)
	assert.True(t, cs.IsCommon())
	assert.Equal(t, []models.CohortKey{{Branch: "A", Semester: 3}, {Branch: "B", Semester: 3}}, cs.Cohorts)

	ma := units[1]
	assert.Equal(t, 1, ma.Frequency)
	assert.False(t, ma.IsCommon())
}

func TestBuildUnitsSkipsElectiveAndExcluded(t *testing.T) {
	elective := regularOffering("OE1", "A", 5, 300)
	elective.Category = models.CategoryElective
	elective.ElectiveTrack = models.TrackA
	excluded := regularOffering("XX1", "A", 5, 10)
	excluded.Category = models.CategoryExcluded

	units, err := BuildUnits([]*models.Offering{elective, excluded, regularOffering("CS101", "A", 5, 60)})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "CS101", units[0].Code)
}

func TestBuildUnitsRejectsMissingFields(t *testing.T) {
	broken := regularOffering("", "A", 3, 50)
	_, err := BuildUnits([]*models.Offering{broken})
	require.Error(t, err)

	badSem := regularOffering("CS101", "A", 0, 50)
	_, err = BuildUnits([]*models.Offering{badSem})
	require.Error(t, err)
}

func TestPriorityScoreWeights(t *testing.T) {
	tests := []struct {
		name      string
		offerings []*models.Offering
		across    bool
		within    bool
		want      int
	}{
		{
			name:      "single cohort",
			offerings: []*models.Offering{regularOffering("S1", "A", 3, 10)},
			want:      10,
		},
		{
			name: "two cohorts same semester",
			offerings: []*models.Offering{
				regularOffering("S2", "A", 3, 10),
				regularOffering("S2", "B", 3, 10),
			},
			want: 2*10 + 15 + 10,
		},
		{
			name: "common across semesters",
			offerings: []*models.Offering{
				regularOffering("S3", "A", 3, 10),
				regularOffering("S3", "A", 5, 10),
			},
			across: true,
			want:   2*10 + 50 + 15,
		},
		{
			name: "common within semester",
			offerings: []*models.Offering{
				regularOffering("S4", "A", 3, 10),
				regularOffering("S4", "B", 3, 10),
			},
			within: true,
			want:   2*10 + 25 + 10,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, o := range tc.offerings {
				o.CommonAcrossSems = tc.across
				o.CommonWithinSem = tc.within
			}
			units, err := BuildUnits(tc.offerings)
			require.NoError(t, err)
			require.Len(t, units, 1)
			assert.Equal(t, tc.want, units[0].Score)
		})
	}
}

func TestSortQueueBandOrderAndTieBreak(t *testing.T) {
	mkUnit := func(code string, freq int, across, within bool, score int) *Unit {
		return &Unit{Code: code, Frequency: freq, CommonAcross: across, CommonWithin: within, Score: score}
	}
	low := mkUnit("ZZ1", 1, false, false, 10)
	lowTie := mkUnit("AA1", 1, false, false, 10)
	medium := mkUnit("MM1", 3, false, false, 55)
	high := mkUnit("HH1", 2, false, true, 55)
	veryHighFlag := mkUnit("VV1", 2, true, false, 95)
	veryHighFreq := mkUnit("VV2", 8, false, false, 120)

	queue := SortQueue([]*Unit{low, medium, lowTie, high, veryHighFlag, veryHighFreq})

	codes := make([]string, 0, len(queue))
	for _, u := range queue {
		codes = append(codes, u.Code)
	}
	assert.Equal(t, []string{"VV2", "VV1", "HH1", "MM1", "AA1", "ZZ1"}, codes)
}

func TestPreferredSlotParity(t *testing.T) {
	wantMorning := []int{1, 2, 5, 6}
	wantAfternoon := []int{3, 4, 7, 8}
	for _, s := range wantMorning {
		assert.Equal(t, models.SlotMorning, preferredSlot(s), "semester %d", s)
	}
	for _, s := range wantAfternoon {
		assert.Equal(t, models.SlotAfternoon, preferredSlot(s), "semester %d", s)
	}
}
