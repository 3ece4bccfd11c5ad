package dto

import (
	"time"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// OfferingRequest is one normalized subject-offering row submitted for
// planning.
type OfferingRequest struct {
	SubjectCode      string `json:"subjectCode" validate:"required"`
	SubjectName      string `json:"subjectName" validate:"required"`
	Branch           string `json:"branch" validate:"required"`
	SubBranch        string `json:"subBranch"`
	Semester         int    `json:"semester" validate:"required,min=1,max=12"`
	Category         string `json:"category" validate:"omitempty,oneof=REGULAR ELECTIVE EXCLUDED"`
	ElectiveTrack    string `json:"electiveTrack" validate:"omitempty,oneof=A B E"`
	StudentCount     int    `json:"studentCount" validate:"min=0"`
	CommonAcrossSems bool   `json:"commonAcrossSems"`
	CommonWithinSem  bool   `json:"commonWithinSem"`
}

// PlanRequest instructs the planner to build a timetable proposal. Offerings
// may be submitted inline or omitted to plan over the rows stored against the
// campaign.
type PlanRequest struct {
	CampaignID     string            `json:"campaignId" validate:"omitempty,uuid4"`
	StartDate      string            `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string            `json:"endDate" validate:"required,datetime=2006-01-02"`
	Holidays       []string          `json:"holidays" validate:"omitempty,dive,datetime=2006-01-02"`
	SessionCeiling int               `json:"sessionCeiling" validate:"omitempty,min=1"`
	Offerings      []OfferingRequest `json:"offerings" validate:"omitempty,min=1,dive"`
}

// PlannedEntry is one annotated offering in a proposal.
type PlannedEntry struct {
	SubjectCode   string     `json:"subjectCode"`
	SubjectName   string     `json:"subjectName"`
	Branch        string     `json:"branch"`
	SubBranch     string     `json:"subBranch,omitempty"`
	Semester      int        `json:"semester"`
	Category      string     `json:"category"`
	ElectiveTrack string     `json:"electiveTrack,omitempty"`
	StudentCount  int        `json:"studentCount"`
	ExamDate      *time.Time `json:"examDate,omitempty"`
	Slot          string     `json:"slot,omitempty"`
	Relaxed       bool       `json:"relaxed,omitempty"`
	OutOfRange    bool       `json:"outOfRange,omitempty"`
}

// PlanStats summarises a planning run.
type PlanStats struct {
	Units      int `json:"units"`
	DaysUsed   int `json:"daysUsed"`
	OutOfRange int `json:"outOfRange"`
	Span       int `json:"span"`
}

// PlanResponse returns the built proposal with per-pass reports.
type PlanResponse struct {
	ProposalID  string                     `json:"proposalId"`
	CampaignID  string                     `json:"campaignId,omitempty"`
	Entries     []PlannedEntry             `json:"entries"`
	Stats       PlanStats                  `json:"stats"`
	CapacityOK  bool                       `json:"capacityOk"`
	Violations  []models.CapacityViolation `json:"violations,omitempty"`
	Electives   models.ElectivePlacement   `json:"electives"`
	GapFill     models.OptimizationReport  `json:"gapFill"`
	Relocation  models.OptimizationReport  `json:"relocation"`
	Diagnostics []string                   `json:"diagnostics,omitempty"`
}

// SaveTimetableRequest persists a held proposal as a new timetable version.
type SaveTimetableRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	CampaignID string `json:"campaignId" validate:"required,uuid4"`
	Publish    bool   `json:"publish"`
}

// TimetableQuery filters persisted timetables.
type TimetableQuery struct {
	CampaignID string `form:"campaignId" json:"campaignId"`
	Status     string `form:"status" json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// TimetableSummary is one persisted timetable in list responses.
type TimetableSummary struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaignId"`
	Version    int       `json:"version"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}
