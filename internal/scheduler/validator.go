package scheduler

import (
	"sort"
	"time"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

type sessionLoad struct {
	students int
	subjects int
}

// ValidateCapacity re-derives per-session totals from the annotated offerings
// and reports every session exceeding the ceiling. It reads only; assignments
// are never rolled back here.
func ValidateCapacity(offerings []*models.Offering, ceiling int) (bool, []models.CapacityViolation) {
	if ceiling <= 0 {
		return true, nil
	}
	loads := make(map[sessionKey]*sessionLoad)
	for _, o := range offerings {
		if !o.Assigned() {
			continue
		}
		k := sessionKey{date: DateOnly(*o.ExamDate), slot: o.Slot}
		l := loads[k]
		if l == nil {
			l = &sessionLoad{}
			loads[k] = l
		}
		l.students += o.StudentCount
		l.subjects++
	}

	var violations []models.CapacityViolation
	for k, l := range loads {
		if l.students <= ceiling {
			continue
		}
		violations = append(violations, models.CapacityViolation{
			Date:     k.date,
			Slot:     k.slot,
			Students: l.students,
			Excess:   l.students - ceiling,
			Subjects: l.subjects,
		})
	}
	sort.Slice(violations, func(i, j int) bool {
		if !violations[i].Date.Equal(violations[j].Date) {
			return violations[i].Date.Before(violations[j].Date)
		}
		return violations[i].Slot < violations[j].Slot
	})
	return len(violations) == 0, violations
}

// Span counts distinct days in use between the first and last assigned exam,
// inclusive. Zero when nothing is assigned.
func Span(offerings []*models.Offering) int {
	var first, last time.Time
	for _, o := range offerings {
		if !o.Assigned() {
			continue
		}
		d := DateOnly(*o.ExamDate)
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if last.IsZero() || d.After(last) {
			last = d
		}
	}
	if first.IsZero() {
		return 0
	}
	return int(last.Sub(first).Hours()/24) + 1
}
