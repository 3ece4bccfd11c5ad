package models

import "time"

// ExportFormat enumerates supported timetable render formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus tracks asynchronous render progress.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "PENDING"
	ExportStatusRunning   ExportStatus = "RUNNING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ExportJob describes one queued timetable render.
type ExportJob struct {
	ID          string       `json:"id"`
	TimetableID string       `json:"timetable_id"`
	Format      ExportFormat `json:"format"`
	Status      ExportStatus `json:"status"`
	FilePath    string       `json:"file_path,omitempty"`
	DownloadURL string       `json:"download_url,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
