package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/service"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type planner interface {
	Plan(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error)
	Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error)
	List(ctx context.Context, query dto.TimetableQuery) ([]dto.TimetableSummary, error)
	Entries(ctx context.Context, timetableID string) ([]models.ExamTimetableEntry, error)
	Delete(ctx context.Context, timetableID string) error
}

// PlannerHandler exposes timetable planning endpoints.
type PlannerHandler struct {
	service planner
	exports *service.ExportService
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.PlannerService, exports *service.ExportService) *PlannerHandler {
	return &PlannerHandler{service: svc, exports: exports}
}

// Plan godoc
// @Summary Build an exam timetable proposal
// @Description Runs the scheduling pipeline over the submitted offerings and holds the proposal until saved.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.PlanRequest true "Plan payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/plan [post]
func (h *PlannerHandler) Plan(c *gin.Context) {
	var req dto.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid plan payload"))
		return
	}
	resp, err := h.service.Plan(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Save godoc
// @Summary Persist a proposal as a new timetable version
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.SaveTimetableRequest true "Save payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/save [post]
func (h *PlannerHandler) Save(c *gin.Context) {
	var req dto.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid save payload"))
		return
	}
	id, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"timetableId": id})
}

// List godoc
// @Summary List persisted timetable versions
// @Tags Planner
// @Produce json
// @Param campaignId query string false "Campaign filter"
// @Param status query string false "Status filter" Enums(DRAFT, PUBLISHED, ARCHIVED)
// @Success 200 {object} response.Envelope
// @Router /planner/timetables [get]
func (h *PlannerHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid timetable query"))
		return
	}
	summaries, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries)
}

// Entries godoc
// @Summary Fetch the annotated rows of one timetable
// @Tags Planner
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /planner/timetables/{id}/entries [get]
func (h *PlannerHandler) Entries(c *gin.Context) {
	entries, err := h.service.Entries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// Delete godoc
// @Summary Delete one timetable version
// @Tags Planner
// @Param id path string true "Timetable ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /planner/timetables/{id} [delete]
func (h *PlannerHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Queue a timetable export render
// @Tags Planner
// @Produce json
// @Param id path string true "Timetable ID"
// @Param format query string true "Render format" Enums(csv, pdf)
// @Success 202 {object} response.Envelope
// @Router /planner/timetables/{id}/export [post]
func (h *PlannerHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	job, err := h.exports.Enqueue(c.Request.Context(), c.Param("id"), models.ExportFormat(req.Format))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// ExportJob godoc
// @Summary Inspect a queued export render
// @Tags Planner
// @Produce json
// @Param jobId path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{jobId} [get]
func (h *PlannerHandler) ExportJob(c *gin.Context) {
	job, err := h.exports.Job(c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// ExportDownload godoc
// @Summary Download a rendered export via signed token
// @Tags Planner
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Failure 401 {object} response.Envelope
// @Router /exports/download [get]
func (h *PlannerHandler) ExportDownload(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, name, err := h.exports.Download(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/octet-stream")
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
