package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

func TestOfferingRepositoryBulkInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOfferingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO campaign_offerings")).
		WillReturnResult(sqlmock.NewResult(2, 2))

	offerings := []models.CampaignOffering{
		{SubjectCode: "CS101", SubjectName: "Programming", Branch: "CSE", Semester: 3, Category: models.CategoryRegular},
		{SubjectCode: "MA201", SubjectName: "Calculus", Branch: "CSE", Semester: 3, Category: models.CategoryRegular},
	}
	err := repo.BulkInsert(context.Background(), nil, "camp-1", offerings)
	require.NoError(t, err)
	assert.Equal(t, "camp-1", offerings[0].CampaignID)
	assert.NotEmpty(t, offerings[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepositoryBulkInsertEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOfferingRepository(db)

	require.NoError(t, repo.BulkInsert(context.Background(), nil, "camp-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepositoryListByCampaign(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOfferingRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "campaign_id", "subject_code", "subject_name", "branch", "sub_branch", "semester",
		"category", "elective_track", "student_count", "common_across_sems", "common_within_sem", "created_at",
	}).
		AddRow("o-1", "camp-1", "CS101", "Programming", "CSE", "", 3,
			string(models.CategoryRegular), "", 500, false, false, time.Now()).
		AddRow("o-2", "camp-1", "OE1", "Open Elective 1", "CSE", "", 5,
			string(models.CategoryElective), "A", 200, false, false, time.Now())
	mock.ExpectQuery("SELECT id, campaign_id, subject_code").
		WithArgs("camp-1").
		WillReturnRows(rows)

	list, err := repo.ListByCampaign(context.Background(), "camp-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[1].ElectiveTrack)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfferingRepositoryDeleteByCampaign(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOfferingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM campaign_offerings WHERE campaign_id = $1")).
		WithArgs("camp-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.DeleteByCampaign(context.Background(), nil, "camp-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
