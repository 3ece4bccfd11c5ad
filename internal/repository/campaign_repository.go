package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// CampaignRepository provides database access for exam campaigns.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository constructs repository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.ExamCampaign) error {
	if campaign == nil {
		return fmt.Errorf("campaign payload is nil")
	}
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusOpen
	}
	if len(campaign.Holidays) == 0 {
		campaign.Holidays = types.JSONText(`[]`)
	}
	now := time.Now().UTC()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	const query = `
INSERT INTO exam_campaigns (id, name, start_date, end_date, session_ceiling, holidays, status, created_at, updated_at)
VALUES (:id, :name, :start_date, :end_date, :session_ceiling, :holidays, :status, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, campaign); err != nil {
		return fmt.Errorf("insert exam campaign: %w", err)
	}
	return nil
}

// FindByID loads a campaign by its identifier.
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*models.ExamCampaign, error) {
	const query = `SELECT id, name, start_date, end_date, session_ceiling, holidays, status, created_at, updated_at
FROM exam_campaigns WHERE id = $1`
	var campaign models.ExamCampaign
	if err := r.db.GetContext(ctx, &campaign, query, id); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// List returns campaigns, newest first, optionally filtered by status.
func (r *CampaignRepository) List(ctx context.Context, status models.CampaignStatus) ([]models.ExamCampaign, error) {
	query := `SELECT id, name, start_date, end_date, session_ceiling, holidays, status, created_at, updated_at
FROM exam_campaigns`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var campaigns []models.ExamCampaign
	if err := r.db.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, fmt.Errorf("list exam campaigns: %w", err)
	}
	return campaigns, nil
}

// UpdateStatus transitions a campaign between open and closed.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id string, status models.CampaignStatus) error {
	const query = `UPDATE exam_campaigns SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("campaign status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM exam_campaigns WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete exam campaign: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("exam campaign rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
