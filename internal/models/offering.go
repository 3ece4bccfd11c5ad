package models

import (
	"fmt"
	"time"
)

// Category classifies an offering for scheduling purposes.
type Category string

const (
	CategoryRegular  Category = "REGULAR"
	CategoryElective Category = "ELECTIVE"
	CategoryExcluded Category = "EXCLUDED"
)

// Slot identifies one of the two daily exam sessions.
type Slot string

const (
	SlotMorning   Slot = "MORNING"
	SlotAfternoon Slot = "AFTERNOON"
)

// Other returns the alternate session for the receiver.
func (s Slot) Other() Slot {
	if s == SlotMorning {
		return SlotAfternoon
	}
	return SlotMorning
}

// Elective track labels. Tracks A and E sit together on elective day one,
// track B on the following valid day.
const (
	TrackA = "A"
	TrackB = "B"
	TrackE = "E"
)

// CohortKey is the conflict unit: a branch-semester pairing that can attend
// at most one exam per day.
type CohortKey struct {
	Branch   string
	Semester int
}

// String renders the key for logs and diagnostics.
func (k CohortKey) String() string {
	return fmt.Sprintf("%s/S%d", k.Branch, k.Semester)
}

// Offering is one normalized subject-offering row as delivered by the
// ingestion layer. The planner annotates ExamDate, Slot, Relaxed and
// OutOfRange; everything else is immutable after ingestion.
type Offering struct {
	SubjectCode      string     `json:"subjectCode" validate:"required"`
	SubjectName      string     `json:"subjectName" validate:"required"`
	Branch           string     `json:"branch" validate:"required"`
	SubBranch        string     `json:"subBranch"`
	Semester         int        `json:"semester" validate:"required,min=1"`
	Category         Category   `json:"category" validate:"required,oneof=REGULAR ELECTIVE EXCLUDED"`
	ElectiveTrack    string     `json:"electiveTrack,omitempty" validate:"omitempty,oneof=A B E"`
	StudentCount     int        `json:"studentCount" validate:"min=0"`
	CommonAcrossSems bool       `json:"commonAcrossSems"`
	CommonWithinSem  bool       `json:"commonWithinSem"`
	ExamDate         *time.Time `json:"examDate,omitempty"`
	Slot             Slot       `json:"slot,omitempty"`
	Relaxed          bool       `json:"relaxed,omitempty"`
	OutOfRange       bool       `json:"outOfRange,omitempty"`
}

// Cohort returns the offering's conflict key.
func (o *Offering) Cohort() CohortKey {
	return CohortKey{Branch: o.Branch, Semester: o.Semester}
}

// IsElective reports whether the offering belongs to an elective track.
func (o *Offering) IsElective() bool {
	return o.Category == CategoryElective || o.ElectiveTrack != ""
}

// Assigned reports whether the offering carries a final exam date.
func (o *Offering) Assigned() bool {
	return o.ExamDate != nil && !o.OutOfRange
}
