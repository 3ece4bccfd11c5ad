package scheduler

import (
	"net/http"
	"sort"
	"time"

	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/pkg/errors"
)

// Unit is the atomic scheduling element: every offering of one subject code,
// scheduled together or not at all.
type Unit struct {
	Code      string
	Name      string
	Offerings []*models.Offering
	Cohorts   []models.CohortKey
	Semesters []int
	Branches  []string

	Frequency    int
	CommonAcross bool
	CommonWithin bool
	Students     int
	Score        int

	Assigned   bool
	Date       time.Time
	Slot       models.Slot
	Relaxed    bool
	OutOfRange bool
}

// IsCommon reports whether splitting the unit across days would break a
// shared-paper constraint.
func (u *Unit) IsCommon() bool {
	return u.CommonAcross || u.CommonWithin || u.Frequency > 1
}

// MaxSemester returns the dominant semester used for slot preference.
func (u *Unit) MaxSemester() int {
	max := 0
	for _, s := range u.Semesters {
		if s > max {
			max = s
		}
	}
	return max
}

// BuildUnits groups non-elective offerings by subject code into atomic units
// and computes their priority scores. Elective and excluded offerings are
// skipped; they are handled by dedicated passes.
func BuildUnits(offerings []*models.Offering) ([]*Unit, error) {
	byCode := make(map[string]*Unit)
	var order []string

	for _, o := range offerings {
		if o.Category == models.CategoryExcluded || o.IsElective() {
			continue
		}
		if o.SubjectCode == "" || o.SubjectName == "" || o.Branch == "" {
			return nil, errors.New("MISSING_OFFERING_FIELDS", http.StatusBadRequest,
				"offering rows must carry subject code, name and branch")
		}
		if o.Semester < 1 {
			return nil, errors.New("INVALID_SEMESTER", http.StatusBadRequest,
				"offering semester must be positive")
		}
		u, ok := byCode[o.SubjectCode]
		if !ok {
			u = &Unit{Code: o.SubjectCode, Name: o.SubjectName}
			byCode[o.SubjectCode] = u
			order = append(order, o.SubjectCode)
		}
		u.Offerings = append(u.Offerings, o)
		u.Students += o.StudentCount
		u.CommonAcross = u.CommonAcross || o.CommonAcrossSems
		u.CommonWithin = u.CommonWithin || o.CommonWithinSem
	}

	units := make([]*Unit, 0, len(order))
	for _, code := range order {
		u := byCode[code]
		u.Cohorts = distinctCohorts(u.Offerings)
		u.Semesters = distinctSemesters(u.Offerings)
		u.Branches = distinctBranches(u.Offerings)
		u.Frequency = len(u.Cohorts)
		u.Score = priorityScore(u)
		units = append(units, u)
	}
	return units, nil
}

// priorityScore implements the weighted urgency formula: frequency dominates,
// shared-paper flags and cross-semester or cross-branch spread add fixed
// bonuses.
func priorityScore(u *Unit) int {
	score := u.Frequency * 10
	switch {
	case u.CommonAcross:
		score += 50
	case u.CommonWithin:
		score += 25
	case u.Frequency > 1:
		score += 15
	}
	if len(u.Semesters) > 1 {
		score += 15
	}
	if len(u.Branches) > 1 {
		score += 10
	}
	return score
}

const (
	bandVeryHigh = iota
	bandHigh
	bandMedium
	bandLow
)

func band(u *Unit) int {
	switch {
	case u.CommonAcross || u.Frequency >= 8:
		return bandVeryHigh
	case u.CommonWithin:
		return bandHigh
	case u.Frequency >= 2:
		return bandMedium
	default:
		return bandLow
	}
}

// SortQueue orders units into the scheduling queue: band first, then score
// descending, then subject code ascending so equal scores stay deterministic.
func SortQueue(units []*Unit) []*Unit {
	queue := make([]*Unit, len(units))
	copy(queue, units)
	sort.SliceStable(queue, func(i, j int) bool {
		bi, bj := band(queue[i]), band(queue[j])
		if bi != bj {
			return bi < bj
		}
		if queue[i].Score != queue[j].Score {
			return queue[i].Score > queue[j].Score
		}
		return queue[i].Code < queue[j].Code
	})
	return queue
}

// preferredSlot derives the session from the semester's position within its
// academic year: odd positions sit in the morning, even in the afternoon.
// Semesters 1 and 2 share position 1, semesters 3 and 4 position 2, and so on.
func preferredSlot(semester int) models.Slot {
	pos := semester / 2
	if semester%2 != 0 {
		pos = (semester + 1) / 2
	}
	if pos%2 == 1 {
		return models.SlotMorning
	}
	return models.SlotAfternoon
}

func distinctCohorts(offerings []*models.Offering) []models.CohortKey {
	seen := make(map[models.CohortKey]struct{}, len(offerings))
	var keys []models.CohortKey
	for _, o := range offerings {
		k := o.Cohort()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Branch != keys[j].Branch {
			return keys[i].Branch < keys[j].Branch
		}
		return keys[i].Semester < keys[j].Semester
	})
	return keys
}

func distinctSemesters(offerings []*models.Offering) []int {
	seen := make(map[int]struct{}, len(offerings))
	var sems []int
	for _, o := range offerings {
		if _, ok := seen[o.Semester]; ok {
			continue
		}
		seen[o.Semester] = struct{}{}
		sems = append(sems, o.Semester)
	}
	sort.Ints(sems)
	return sems
}

func distinctBranches(offerings []*models.Offering) []string {
	seen := make(map[string]struct{}, len(offerings))
	var branches []string
	for _, o := range offerings {
		if _, ok := seen[o.Branch]; ok {
			continue
		}
		seen[o.Branch] = struct{}{}
		branches = append(branches, o.Branch)
	}
	sort.Strings(branches)
	return branches
}
