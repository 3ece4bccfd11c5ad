package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type campaignRepoStub struct {
	mu       sync.Mutex
	created  []*models.ExamCampaign
	existing map[string]*models.ExamCampaign
}

func (s *campaignRepoStub) Create(_ context.Context, campaign *models.ExamCampaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	campaign.ID = "campaign-1"
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusOpen
	}
	s.created = append(s.created, campaign)
	return nil
}

func (s *campaignRepoStub) FindByID(_ context.Context, id string) (*models.ExamCampaign, error) {
	if c, ok := s.existing[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (s *campaignRepoStub) List(_ context.Context, _ models.CampaignStatus) ([]models.ExamCampaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ExamCampaign
	for _, c := range s.created {
		out = append(out, *c)
	}
	return out, nil
}

func (s *campaignRepoStub) UpdateStatus(_ context.Context, id string, status models.CampaignStatus) error {
	if c, ok := s.existing[id]; ok {
		c.Status = status
		return nil
	}
	return sql.ErrNoRows
}

func (s *campaignRepoStub) Delete(_ context.Context, id string) error {
	if _, ok := s.existing[id]; ok {
		delete(s.existing, id)
		return nil
	}
	return sql.ErrNoRows
}

type offeringRepoStub struct {
	mu     sync.Mutex
	stored []models.CampaignOffering
}

func (s *offeringRepoStub) DeleteByCampaign(_ context.Context, _ sqlx.ExtContext, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored = nil
	return nil
}

func (s *offeringRepoStub) BulkInsert(_ context.Context, _ sqlx.ExtContext, campaignID string, offerings []models.CampaignOffering) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range offerings {
		offerings[i].CampaignID = campaignID
	}
	s.stored = append(s.stored, offerings...)
	return nil
}

func (s *offeringRepoStub) ListByCampaign(_ context.Context, _ string) ([]models.CampaignOffering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stored, nil
}

func newCampaignFixture(t *testing.T, tx txProvider) (*CampaignService, *campaignRepoStub, *offeringRepoStub) {
	t.Helper()
	repo := &campaignRepoStub{existing: map[string]*models.ExamCampaign{}}
	offerings := &offeringRepoStub{}
	svc := NewCampaignService(repo, offerings, tx, nil, nil)
	return svc, repo, offerings
}

func TestCampaignServiceCreate(t *testing.T) {
	svc, _, _ := newCampaignFixture(t, nil)

	resp, err := svc.Create(context.Background(), dto.CreateCampaignRequest{
		Name:      "March 2026 finals",
		StartDate: "2026-03-02",
		EndDate:   "2026-03-31",
		Holidays:  []string{"2026-03-25"},
	})
	require.NoError(t, err)
	assert.Equal(t, "campaign-1", resp.ID)
	assert.Equal(t, "OPEN", resp.Status)
	assert.Equal(t, []string{"2026-03-25"}, resp.Holidays)
}

func TestCampaignServiceCreateRejectsInvertedWindow(t *testing.T) {
	svc, _, _ := newCampaignFixture(t, nil)

	_, err := svc.Create(context.Background(), dto.CreateCampaignRequest{
		Name:      "Backwards window",
		StartDate: "2026-03-31",
		EndDate:   "2026-03-02",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCampaignServiceCloseUnknown(t *testing.T) {
	svc, _, _ := newCampaignFixture(t, nil)

	err := svc.Close(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCampaignServiceUploadOfferings(t *testing.T) {
	db, mock := newTxProviderMock(t)
	svc, repo, offerings := newCampaignFixture(t, db)
	repo.existing["campaign-1"] = &models.ExamCampaign{ID: "campaign-1", Status: models.CampaignStatusOpen}

	mock.ExpectBegin()
	mock.ExpectCommit()

	count, err := svc.UploadOfferings(context.Background(), "campaign-1", dto.UploadOfferingsRequest{
		Offerings: []dto.OfferingRequest{
			{SubjectCode: "CS101", SubjectName: "Programming", Branch: "CSE", Semester: 3, StudentCount: 500},
			{SubjectCode: "OE1", SubjectName: "Open Elective 1", Branch: "CSE", Semester: 5, ElectiveTrack: "A"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, offerings.stored, 2)
	assert.Equal(t, models.CategoryRegular, offerings.stored[0].Category)
	assert.Equal(t, models.CategoryElective, offerings.stored[1].Category)
}

func TestCampaignServiceUploadOfferingsClosedCampaign(t *testing.T) {
	db, _ := newTxProviderMock(t)
	svc, repo, _ := newCampaignFixture(t, db)
	repo.existing["campaign-1"] = &models.ExamCampaign{ID: "campaign-1", Status: models.CampaignStatusClosed}

	_, err := svc.UploadOfferings(context.Background(), "campaign-1", dto.UploadOfferingsRequest{
		Offerings: []dto.OfferingRequest{
			{SubjectCode: "CS101", SubjectName: "Programming", Branch: "CSE", Semester: 3},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestCampaignServiceOfferingsUnknownCampaign(t *testing.T) {
	svc, _, _ := newCampaignFixture(t, nil)

	_, err := svc.Offerings(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
