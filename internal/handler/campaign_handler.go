package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/service"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type campaignManager interface {
	Create(ctx context.Context, req dto.CreateCampaignRequest) (*dto.CampaignResponse, error)
	Get(ctx context.Context, id string) (*dto.CampaignResponse, error)
	List(ctx context.Context, query dto.CampaignQuery) ([]dto.CampaignResponse, error)
	Close(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	UploadOfferings(ctx context.Context, campaignID string, req dto.UploadOfferingsRequest) (int, error)
	Offerings(ctx context.Context, campaignID string) ([]models.CampaignOffering, error)
}

// CampaignHandler exposes exam campaign endpoints.
type CampaignHandler struct {
	service campaignManager
}

// NewCampaignHandler constructs the handler.
func NewCampaignHandler(svc *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{service: svc}
}

// Create godoc
// @Summary Open a new exam campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param payload body dto.CreateCampaignRequest true "Campaign payload"
// @Success 201 {object} response.Envelope
// @Router /campaigns [post]
func (h *CampaignHandler) Create(c *gin.Context) {
	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid campaign payload"))
		return
	}
	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Get godoc
// @Summary Fetch one campaign
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// List godoc
// @Summary List campaigns
// @Tags Campaigns
// @Produce json
// @Param status query string false "Status filter" Enums(OPEN, CLOSED)
// @Success 200 {object} response.Envelope
// @Router /campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	var query dto.CampaignQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid campaign query"))
		return
	}
	resp, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// Close godoc
// @Summary Close a campaign
// @Tags Campaigns
// @Param id path string true "Campaign ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/close [post]
func (h *CampaignHandler) Close(c *gin.Context) {
	if err := h.service.Close(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadOfferings godoc
// @Summary Replace the offering rows stored against a campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path string true "Campaign ID"
// @Param payload body dto.UploadOfferingsRequest true "Offering rows"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/offerings [put]
func (h *CampaignHandler) UploadOfferings(c *gin.Context) {
	var req dto.UploadOfferingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid offerings payload"))
		return
	}
	count, err := h.service.UploadOfferings(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"stored": count})
}

// Offerings godoc
// @Summary List the offering rows stored against a campaign
// @Tags Campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id}/offerings [get]
func (h *CampaignHandler) Offerings(c *gin.Context) {
	offerings, err := h.service.Offerings(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings)
}

// Delete godoc
// @Summary Delete a campaign
// @Tags Campaigns
// @Param id path string true "Campaign ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /campaigns/{id} [delete]
func (h *CampaignHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
