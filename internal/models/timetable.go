package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimetableStatus represents lifecycle phases for persisted timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
	TimetableStatusArchived  TimetableStatus = "ARCHIVED"
)

// ExamTimetable captures a versioned planning outcome for a campaign.
type ExamTimetable struct {
	ID         string          `db:"id" json:"id"`
	CampaignID string          `db:"campaign_id" json:"campaign_id"`
	Version    int             `db:"version" json:"version"`
	Status     TimetableStatus `db:"status" json:"status"`
	Meta       types.JSONText  `db:"meta" json:"meta"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// ExamTimetableEntry is one annotated offering row inside a persisted
// timetable. Entries for out-of-range units carry a NULL exam date.
type ExamTimetableEntry struct {
	ID            string     `db:"id" json:"id"`
	TimetableID   string     `db:"timetable_id" json:"timetable_id"`
	SubjectCode   string     `db:"subject_code" json:"subject_code"`
	SubjectName   string     `db:"subject_name" json:"subject_name"`
	Branch        string     `db:"branch" json:"branch"`
	SubBranch     string     `db:"sub_branch" json:"sub_branch"`
	Semester      int        `db:"semester" json:"semester"`
	Category      Category   `db:"category" json:"category"`
	ElectiveTrack string     `db:"elective_track" json:"elective_track,omitempty"`
	StudentCount  int        `db:"student_count" json:"student_count"`
	ExamDate      *time.Time `db:"exam_date" json:"exam_date,omitempty"`
	Slot          string     `db:"slot" json:"slot,omitempty"`
	Relaxed       bool       `db:"relaxed" json:"relaxed"`
	OutOfRange    bool       `db:"out_of_range" json:"out_of_range"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
