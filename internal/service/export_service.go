package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/export"
	"github.com/noah-isme/exam-planner-api/pkg/jobs"
	"github.com/noah-isme/exam-planner-api/pkg/storage"
)

type timetableReader interface {
	Timetable(ctx context.Context, timetableID string) (*models.ExamTimetable, error)
	Entries(ctx context.Context, timetableID string) ([]models.ExamTimetableEntry, error)
}

// ExportConfig governs export rendering behaviour.
type ExportConfig struct {
	Workers   int
	Retention time.Duration
}

// ExportService renders persisted timetables to CSV or PDF asynchronously and
// hands out signed download tokens.
type ExportService struct {
	planner timetableReader
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger

	retention time.Duration

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

type exportPayload struct {
	JobID       string
	TimetableID string
	Format      models.ExportFormat
}

// NewExportService wires the render pipeline.
func NewExportService(
	planner timetableReader,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ExportConfig,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	s := &ExportService{
		planner:   planner,
		store:     store,
		signer:    signer,
		metrics:   metrics,
		logger:    logger,
		retention: cfg.Retention,
		jobs:      make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the render workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	if s.store != nil {
		if deleted, err := s.store.CleanupOlderThan(s.retention); err != nil {
			s.logger.Warn("export cleanup failed", zap.Error(err))
		} else if len(deleted) > 0 {
			s.logger.Info("stale exports removed", zap.Int("count", len(deleted)))
		}
	}
}

// Stop drains the render workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules a timetable render and returns the pending job.
func (s *ExportService) Enqueue(ctx context.Context, timetableID string, format models.ExportFormat) (*dto.ExportJobResponse, error) {
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if _, err := s.planner.Timetable(ctx, timetableID); err != nil {
		return nil, err
	}

	job := &models.ExportJob{
		ID:          uuid.NewString(),
		TimetableID: timetableID,
		Format:      format,
		Status:      models.ExportStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{
		ID:      job.ID,
		Type:    "timetable-export",
		Payload: exportPayload{JobID: job.ID, TimetableID: timetableID, Format: format},
	}); err != nil {
		s.fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.toResponse(job), nil
}

// Job returns the current state of one export job.
func (s *ExportService) Job(jobID string) (*dto.ExportJobResponse, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return s.toResponse(job), nil
}

// Download resolves a signed token into the rendered file.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, filepath.Base(relPath), nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		return fmt.Errorf("unexpected export payload type %T", job.Payload)
	}
	s.setStatus(payload.JobID, models.ExportStatusRunning)

	entries, err := s.planner.Entries(ctx, payload.TimetableID)
	if err != nil {
		s.fail(payload.JobID, err)
		s.metrics.RecordExportJob(string(payload.Format), "failed")
		return err
	}

	var data []byte
	switch payload.Format {
	case models.ExportFormatCSV:
		data, err = export.NewCSVExporter().Render(entriesToDataset(entries))
	case models.ExportFormatPDF:
		data, err = export.NewTimetablePDFExporter().Render(entriesToDocument(payload.TimetableID, entries))
	default:
		err = fmt.Errorf("unsupported export format %q", payload.Format)
	}
	if err != nil {
		s.fail(payload.JobID, err)
		s.metrics.RecordExportJob(string(payload.Format), "failed")
		return err
	}

	filename := fmt.Sprintf("%s/%s.%s", payload.TimetableID, payload.JobID, payload.Format)
	relPath, err := s.store.Save(filename, data)
	if err != nil {
		s.fail(payload.JobID, err)
		s.metrics.RecordExportJob(string(payload.Format), "failed")
		return err
	}

	token, _, err := s.signer.Generate(payload.JobID, relPath)
	if err != nil {
		s.fail(payload.JobID, err)
		s.metrics.RecordExportJob(string(payload.Format), "failed")
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if job, ok := s.jobs[payload.JobID]; ok {
		job.Status = models.ExportStatusCompleted
		job.FilePath = relPath
		job.DownloadURL = "/api/v1/exports/download?token=" + token
		job.CompletedAt = &now
	}
	s.mu.Unlock()
	s.metrics.RecordExportJob(string(payload.Format), "completed")

	s.logger.Info("export rendered",
		zap.String("jobId", payload.JobID),
		zap.String("timetableId", payload.TimetableID),
		zap.String("format", string(payload.Format)),
		zap.Int("bytes", len(data)))
	return nil
}

func (s *ExportService) setStatus(jobID string, status models.ExportStatus) {
	s.mu.Lock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = status
	}
	s.mu.Unlock()
}

func (s *ExportService) fail(jobID string, err error) {
	s.mu.Lock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = models.ExportStatusFailed
		job.Error = err.Error()
	}
	s.mu.Unlock()
}

func (s *ExportService) toResponse(job *models.ExportJob) *dto.ExportJobResponse {
	return &dto.ExportJobResponse{
		JobID:       job.ID,
		TimetableID: job.TimetableID,
		Format:      string(job.Format),
		Status:      string(job.Status),
		DownloadURL: job.DownloadURL,
		Error:       job.Error,
	}
}

var exportHeaders = []string{"Date", "Slot", "Code", "Subject", "Branch", "Semester", "Students", "Flags"}

func entriesToDataset(entries []models.ExamTimetableEntry) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]string{
			"Date":     entryDate(e),
			"Slot":     e.Slot,
			"Code":     e.SubjectCode,
			"Subject":  e.SubjectName,
			"Branch":   e.Branch,
			"Semester": strconv.Itoa(e.Semester),
			"Students": strconv.Itoa(e.StudentCount),
			"Flags":    entryFlags(e),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func entriesToDocument(timetableID string, entries []models.ExamTimetableEntry) export.TimetableDocument {
	grouped := make(map[string][]models.ExamTimetableEntry)
	var order []string
	for _, e := range entries {
		key := entryDate(e)
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], e)
	}
	sort.Strings(order)

	doc := export.TimetableDocument{
		Title:    "Exam Timetable",
		Subtitle: "Timetable " + timetableID,
		Headers:  []string{"Slot", "Code", "Subject", "Branch", "Semester", "Students", "Flags"},
	}
	for _, key := range order {
		section := export.TimetableSection{Heading: key}
		for _, e := range grouped[key] {
			section.Rows = append(section.Rows, []string{
				e.Slot,
				e.SubjectCode,
				e.SubjectName,
				e.Branch,
				strconv.Itoa(e.Semester),
				strconv.Itoa(e.StudentCount),
				entryFlags(e),
			})
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}

func entryDate(e models.ExamTimetableEntry) string {
	if e.OutOfRange || e.ExamDate == nil {
		return "Unscheduled"
	}
	return e.ExamDate.Format("2006-01-02")
}

func entryFlags(e models.ExamTimetableEntry) string {
	switch {
	case e.OutOfRange:
		return "out-of-range"
	case e.Relaxed:
		return "relaxed"
	default:
		return ""
	}
}
