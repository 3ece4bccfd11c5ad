package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

func TestCampaignRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_campaigns")).
		WithArgs(sqlmock.AnyArg(), "March 2026 exams", sqlmock.AnyArg(), sqlmock.AnyArg(), 2000,
			sqlmock.AnyArg(), string(models.CampaignStatusOpen), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	campaign := &models.ExamCampaign{
		Name:           "March 2026 exams",
		StartDate:      time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC),
		SessionCeiling: 2000,
	}
	require.NoError(t, repo.Create(context.Background(), campaign))
	assert.NotEmpty(t, campaign.ID)
	assert.Equal(t, models.CampaignStatusOpen, campaign.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "start_date", "end_date", "session_ceiling", "holidays", "status", "created_at", "updated_at"}).
		AddRow("camp-1", "March 2026 exams", time.Now(), time.Now(), 2000, types.JSONText(`["2026-03-10"]`), string(models.CampaignStatusOpen), time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, start_date, end_date, session_ceiling, holidays, status").
		WithArgs("camp-1").
		WillReturnRows(rows)

	campaign, err := repo.FindByID(context.Background(), "camp-1")
	require.NoError(t, err)
	assert.Equal(t, "March 2026 exams", campaign.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_campaigns WHERE id = $1")).
		WithArgs("camp-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "camp-404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryListFiltersStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCampaignRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "start_date", "end_date", "session_ceiling", "holidays", "status", "created_at", "updated_at"}).
		AddRow("camp-1", "Open exams", time.Now(), time.Now(), 2000, types.JSONText(`[]`), string(models.CampaignStatusOpen), time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, name, start_date, end_date, session_ceiling, holidays, status").
		WithArgs(string(models.CampaignStatusOpen)).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.CampaignStatusOpen)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
