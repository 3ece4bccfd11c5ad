package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type campaignRepository interface {
	Create(ctx context.Context, campaign *models.ExamCampaign) error
	FindByID(ctx context.Context, id string) (*models.ExamCampaign, error)
	List(ctx context.Context, status models.CampaignStatus) ([]models.ExamCampaign, error)
	UpdateStatus(ctx context.Context, id string, status models.CampaignStatus) error
	Delete(ctx context.Context, id string) error
}

type offeringRepository interface {
	DeleteByCampaign(ctx context.Context, exec sqlx.ExtContext, campaignID string) error
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, campaignID string, offerings []models.CampaignOffering) error
	ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignOffering, error)
}

// CampaignService manages exam campaign lifecycles and their stored offering
// rows.
type CampaignService struct {
	repo      campaignRepository
	offerings offeringRepository
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCampaignService constructs a CampaignService instance.
func NewCampaignService(repo campaignRepository, offerings offeringRepository, tx txProvider, validate *validator.Validate, logger *zap.Logger) *CampaignService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{repo: repo, offerings: offerings, tx: tx, validator: validate, logger: logger}
}

// Create opens a new campaign.
func (s *CampaignService) Create(ctx context.Context, req dto.CreateCampaignRequest) (*dto.CampaignResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign payload")
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate precedes startDate")
	}

	holidays, err := json.Marshal(req.Holidays)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode holidays")
	}

	campaign := &models.ExamCampaign{
		Name:           req.Name,
		StartDate:      start,
		EndDate:        end,
		SessionCeiling: req.SessionCeiling,
		Holidays:       types.JSONText(holidays),
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create campaign")
	}

	s.logger.Info("campaign created", zap.String("campaignId", campaign.ID), zap.String("name", campaign.Name))
	return campaignToResponse(campaign)
}

// Get loads one campaign.
func (s *CampaignService) Get(ctx context.Context, id string) (*dto.CampaignResponse, error) {
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	return campaignToResponse(campaign)
}

// List returns campaigns filtered by status.
func (s *CampaignService) List(ctx context.Context, query dto.CampaignQuery) ([]dto.CampaignResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign query")
	}
	campaigns, err := s.repo.List(ctx, models.CampaignStatus(query.Status))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaigns")
	}
	responses := make([]dto.CampaignResponse, 0, len(campaigns))
	for i := range campaigns {
		resp, err := campaignToResponse(&campaigns[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// Close transitions a campaign to the closed state.
func (s *CampaignService) Close(ctx context.Context, id string) error {
	if err := s.repo.UpdateStatus(ctx, id, models.CampaignStatusClosed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close campaign")
	}
	return nil
}

// Delete removes a campaign.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete campaign")
	}
	return nil
}

// UploadOfferings replaces the offering rows stored against an open campaign.
func (s *CampaignService) UploadOfferings(ctx context.Context, campaignID string, req dto.UploadOfferingsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offerings payload")
	}
	campaign, err := s.repo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	if campaign.Status != models.CampaignStatusOpen {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "campaign is closed")
	}
	if s.tx == nil {
		return 0, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	rows := offeringRowsFromRequest(req.Offerings)
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.offerings.DeleteByCampaign(ctx, tx, campaignID); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear campaign offerings")
	}
	if err = s.offerings.BulkInsert(ctx, tx, campaignID, rows); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store campaign offerings")
	}
	if err = tx.Commit(); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit campaign offerings")
	}

	s.logger.Info("campaign offerings replaced",
		zap.String("campaignId", campaignID), zap.Int("rows", len(rows)))
	return len(rows), nil
}

// Offerings returns the offering rows stored against a campaign.
func (s *CampaignService) Offerings(ctx context.Context, campaignID string) ([]models.CampaignOffering, error) {
	if _, err := s.repo.FindByID(ctx, campaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	offerings, err := s.offerings.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaign offerings")
	}
	return offerings, nil
}

func offeringRowsFromRequest(reqs []dto.OfferingRequest) []models.CampaignOffering {
	rows := make([]models.CampaignOffering, 0, len(reqs))
	for _, r := range reqs {
		category := models.Category(r.Category)
		if category == "" {
			category = models.CategoryRegular
		}
		if r.ElectiveTrack != "" {
			category = models.CategoryElective
		}
		rows = append(rows, models.CampaignOffering{
			SubjectCode:      r.SubjectCode,
			SubjectName:      r.SubjectName,
			Branch:           r.Branch,
			SubBranch:        r.SubBranch,
			Semester:         r.Semester,
			Category:         category,
			ElectiveTrack:    r.ElectiveTrack,
			StudentCount:     r.StudentCount,
			CommonAcrossSems: r.CommonAcrossSems,
			CommonWithinSem:  r.CommonWithinSem,
		})
	}
	return rows
}

func campaignToResponse(campaign *models.ExamCampaign) (*dto.CampaignResponse, error) {
	var holidays []string
	if len(campaign.Holidays) > 0 {
		if err := json.Unmarshal(campaign.Holidays, &holidays); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt campaign holiday set")
		}
	}
	return &dto.CampaignResponse{
		ID:             campaign.ID,
		Name:           campaign.Name,
		StartDate:      campaign.StartDate,
		EndDate:        campaign.EndDate,
		SessionCeiling: campaign.SessionCeiling,
		Holidays:       holidays,
		Status:         string(campaign.Status),
		CreatedAt:      campaign.CreatedAt,
	}, nil
}
