package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type campaignManagerMock struct {
	captured dto.CreateCampaignRequest
	getErr   error
	closeErr error
}

func (m *campaignManagerMock) Create(ctx context.Context, req dto.CreateCampaignRequest) (*dto.CampaignResponse, error) {
	m.captured = req
	return &dto.CampaignResponse{ID: "campaign-1", Name: req.Name, Status: "OPEN"}, nil
}

func (m *campaignManagerMock) Get(ctx context.Context, id string) (*dto.CampaignResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dto.CampaignResponse{ID: id, Status: "OPEN"}, nil
}

func (m *campaignManagerMock) List(ctx context.Context, query dto.CampaignQuery) ([]dto.CampaignResponse, error) {
	return []dto.CampaignResponse{{ID: "campaign-1"}}, nil
}

func (m *campaignManagerMock) Close(ctx context.Context, id string) error {
	return m.closeErr
}

func (m *campaignManagerMock) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *campaignManagerMock) UploadOfferings(ctx context.Context, campaignID string, req dto.UploadOfferingsRequest) (int, error) {
	return len(req.Offerings), nil
}

func (m *campaignManagerMock) Offerings(ctx context.Context, campaignID string) ([]models.CampaignOffering, error) {
	return []models.CampaignOffering{{CampaignID: campaignID, SubjectCode: "MA101"}}, nil
}

func TestCampaignHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &campaignManagerMock{}
	h := &CampaignHandler{service: mockSvc}

	payload := []byte(`{"name":"March 2026 finals","startDate":"2026-03-02","endDate":"2026-03-31"}`)
	req, _ := http.NewRequest(http.MethodPost, "/campaigns", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "March 2026 finals", mockSvc.captured.Name)
	require.Contains(t, w.Body.String(), "campaign-1")
}

func TestCampaignHandlerCreateMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &CampaignHandler{service: &campaignManagerMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/campaigns", bytes.NewReader([]byte(`{"name":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCampaignHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &CampaignHandler{service: &campaignManagerMock{
		getErr: appErrors.Clone(appErrors.ErrNotFound, "campaign not found"),
	}}
	router := gin.New()
	router.GET("/campaigns/:id", h.Get)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/campaigns/missing", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCampaignHandlerUploadOfferings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &CampaignHandler{service: &campaignManagerMock{}}
	router := gin.New()
	router.PUT("/campaigns/:id/offerings", h.UploadOfferings)

	payload := []byte(`{"offerings":[{"subjectCode":"MA101","subjectName":"Calculus","branch":"CSE","semester":2}]}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/campaigns/campaign-1/offerings", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"stored":1`)
}

func TestCampaignHandlerCloseSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &CampaignHandler{service: &campaignManagerMock{}}
	router := gin.New()
	router.POST("/campaigns/:id/close", h.Close)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/campaigns/campaign-1/close", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
}
