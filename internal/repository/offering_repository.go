package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// OfferingRepository persists the subject-offering rows stored against a
// campaign.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository constructs repository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

func (r *OfferingRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteByCampaign removes all offering rows of one campaign.
func (r *OfferingRepository) DeleteByCampaign(ctx context.Context, exec sqlx.ExtContext, campaignID string) error {
	target := r.exec(exec)
	const query = `DELETE FROM campaign_offerings WHERE campaign_id = $1`
	if _, err := target.ExecContext(ctx, query, campaignID); err != nil {
		return fmt.Errorf("delete campaign offerings: %w", err)
	}
	return nil
}

// BulkInsert writes all offering rows of one campaign in a single statement batch.
func (r *OfferingRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, campaignID string, offerings []models.CampaignOffering) error {
	if len(offerings) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO campaign_offerings
  (id, campaign_id, subject_code, subject_name, branch, sub_branch, semester,
   category, elective_track, student_count, common_across_sems, common_within_sem, created_at)
VALUES
  (:id, :campaign_id, :subject_code, :subject_name, :branch, :sub_branch, :semester,
   :category, :elective_track, :student_count, :common_across_sems, :common_within_sem, :created_at)`

	for i := range offerings {
		offerings[i].CampaignID = campaignID
		if offerings[i].ID == "" {
			offerings[i].ID = uuid.NewString()
		}
		offerings[i].CreatedAt = now
	}
	if _, err := sqlx.NamedExecContext(ctx, target, query, offerings); err != nil {
		return fmt.Errorf("insert campaign offerings: %w", err)
	}
	return nil
}

// ListByCampaign returns the stored offering rows ordered by subject and cohort.
func (r *OfferingRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignOffering, error) {
	const query = `SELECT id, campaign_id, subject_code, subject_name, branch, sub_branch, semester,
category, elective_track, student_count, common_across_sems, common_within_sem, created_at
FROM campaign_offerings WHERE campaign_id = $1
ORDER BY subject_code, branch, semester`
	var offerings []models.CampaignOffering
	if err := r.db.SelectContext(ctx, &offerings, query, campaignID); err != nil {
		return nil, fmt.Errorf("list campaign offerings: %w", err)
	}
	return offerings, nil
}
