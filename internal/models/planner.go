package models

import "time"

// CapacityViolation describes one session whose enrolled total exceeds the
// configured ceiling.
type CapacityViolation struct {
	Date     time.Time `json:"date"`
	Slot     Slot      `json:"slot"`
	Students int       `json:"students"`
	Excess   int       `json:"excess"`
	Subjects int       `json:"subjects"`
}

// OptimizationReport summarises one post-scheduling optimization pass.
type OptimizationReport struct {
	Moves      int      `json:"moves"`
	Log        []string `json:"log,omitempty"`
	SpanBefore int      `json:"spanBefore"`
	SpanAfter  int      `json:"spanAfter"`
}

// ElectivePlacement records where the two elective days landed, or why they
// did not.
type ElectivePlacement struct {
	Scheduled bool       `json:"scheduled"`
	DayOne    *time.Time `json:"dayOne,omitempty"`
	DayTwo    *time.Time `json:"dayTwo,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}
