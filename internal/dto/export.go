package dto

// ExportRequest asks for a rendered timetable document.
type ExportRequest struct {
	Format string `form:"format" json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse reports the state of a queued render.
type ExportJobResponse struct {
	JobID       string `json:"jobId"`
	TimetableID string `json:"timetableId"`
	Format      string `json:"format"`
	Status      string `json:"status"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}
