package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CampaignStatus tracks a campaign's lifecycle.
type CampaignStatus string

const (
	CampaignStatusOpen   CampaignStatus = "OPEN"
	CampaignStatusClosed CampaignStatus = "CLOSED"
)

// CampaignOffering is one subject-offering row stored against a campaign so
// planning runs can be re-triggered without resubmitting the payload.
type CampaignOffering struct {
	ID               string    `db:"id" json:"id"`
	CampaignID       string    `db:"campaign_id" json:"campaign_id"`
	SubjectCode      string    `db:"subject_code" json:"subject_code"`
	SubjectName      string    `db:"subject_name" json:"subject_name"`
	Branch           string    `db:"branch" json:"branch"`
	SubBranch        string    `db:"sub_branch" json:"sub_branch,omitempty"`
	Semester         int       `db:"semester" json:"semester"`
	Category         Category  `db:"category" json:"category"`
	ElectiveTrack    string    `db:"elective_track" json:"elective_track,omitempty"`
	StudentCount     int       `db:"student_count" json:"student_count"`
	CommonAcrossSems bool      `db:"common_across_sems" json:"common_across_sems"`
	CommonWithinSem  bool      `db:"common_within_sem" json:"common_within_sem"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// ExamCampaign bounds one planning run: the date window, the per-session
// ceiling and the holiday set.
type ExamCampaign struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	StartDate      time.Time      `db:"start_date" json:"start_date"`
	EndDate        time.Time      `db:"end_date" json:"end_date"`
	SessionCeiling int            `db:"session_ceiling" json:"session_ceiling"`
	Holidays       types.JSONText `db:"holidays" json:"holidays"`
	Status         CampaignStatus `db:"status" json:"status"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
