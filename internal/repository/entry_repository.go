package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// EntryRepository persists the annotated offering rows of a timetable.
type EntryRepository struct {
	db *sqlx.DB
}

// NewEntryRepository constructs repository.
func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkInsert writes all entries of one timetable in a single statement batch.
func (r *EntryRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, timetableID string, entries []models.ExamTimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO exam_timetable_entries
  (id, timetable_id, subject_code, subject_name, branch, sub_branch, semester,
   category, elective_track, student_count, exam_date, slot, relaxed, out_of_range, created_at)
VALUES
  (:id, :timetable_id, :subject_code, :subject_name, :branch, :sub_branch, :semester,
   :category, :elective_track, :student_count, :exam_date, :slot, :relaxed, :out_of_range, :created_at)`

	for i := range entries {
		entries[i].TimetableID = timetableID
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].CreatedAt = now
	}
	if _, err := sqlx.NamedExecContext(ctx, target, query, entries); err != nil {
		return fmt.Errorf("insert timetable entries: %w", err)
	}
	return nil
}

// ListByTimetable returns all entries ordered by exam date, slot and subject.
func (r *EntryRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.ExamTimetableEntry, error) {
	const query = `SELECT id, timetable_id, subject_code, subject_name, branch, sub_branch, semester,
category, elective_track, student_count, exam_date, slot, relaxed, out_of_range, created_at
FROM exam_timetable_entries WHERE timetable_id = $1
ORDER BY exam_date NULLS LAST, slot, subject_code`
	var entries []models.ExamTimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// DeleteByTimetable removes all entries belonging to a timetable.
func (r *EntryRepository) DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID string) error {
	target := r.exec(exec)
	const query = `DELETE FROM exam_timetable_entries WHERE timetable_id = $1`
	if _, err := target.ExecContext(ctx, query, timetableID); err != nil {
		return fmt.Errorf("delete timetable entries: %w", err)
	}
	return nil
}
