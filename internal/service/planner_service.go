package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type timetableRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.ExamTimetable) error
	ListByCampaign(ctx context.Context, campaignID string, status models.TimetableStatus) ([]models.ExamTimetable, error)
	FindByID(ctx context.Context, id string) (*models.ExamTimetable, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error
	Delete(ctx context.Context, id string) error
}

type entryRepository interface {
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, timetableID string, entries []models.ExamTimetableEntry) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.ExamTimetableEntry, error)
	DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID string) error
}

type campaignReader interface {
	FindByID(ctx context.Context, id string) (*models.ExamCampaign, error)
}

type offeringReader interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]models.CampaignOffering, error)
}

type planCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// PlannerService runs the timetable engine, holds proposals until saved and
// manages persisted timetable versions.
type PlannerService struct {
	timetables timetableRepository
	entries    entryRepository
	campaigns  campaignReader
	offerings  offeringReader
	cache      planCache
	tx         txProvider
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	store      *proposalStore
	config     PlannerConfig
}

// PlannerConfig governs planner behaviour.
type PlannerConfig struct {
	RestWeekday     time.Weekday
	SessionCeiling  int
	MainDayBudget   int
	TotalDayBudget  int
	ProposalTTL     time.Duration
	CacheTTL        time.Duration
	MaxOfferingRows int
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(
	timetables timetableRepository,
	entries entryRepository,
	campaigns campaignReader,
	offerings offeringReader,
	cache planCache,
	tx txProvider,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlannerConfig,
) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.MaxOfferingRows <= 0 {
		cfg.MaxOfferingRows = 5000
	}
	return &PlannerService{
		timetables: timetables,
		entries:    entries,
		campaigns:  campaigns,
		offerings:  offerings,
		cache:      cache,
		tx:         tx,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		store:      newProposalStore(cfg.ProposalTTL),
		config:     cfg,
	}
}

// Plan runs the scheduling pipeline over the submitted offerings and holds
// the outcome as a proposal until saved or expired.
func (s *PlannerService) Plan(ctx context.Context, req dto.PlanRequest) (*dto.PlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan payload")
	}
	if len(req.Offerings) == 0 && req.CampaignID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either offerings or campaignId is required")
	}
	if len(req.Offerings) > s.config.MaxOfferingRows {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("offering set exceeds the %d row limit", s.config.MaxOfferingRows))
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

	holidays, err := parseDates(req.Holidays)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "holidays must be YYYY-MM-DD")
	}

	ceiling := req.SessionCeiling
	if req.CampaignID != "" && s.campaigns != nil {
		campaign, err := s.campaigns.FindByID(ctx, req.CampaignID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
		}
		if campaign.Status != models.CampaignStatusOpen {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "campaign is closed")
		}
		if ceiling == 0 {
			ceiling = campaign.SessionCeiling
		}
		campaignHolidays, err := decodeHolidays(campaign.Holidays)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt campaign holiday set")
		}
		holidays = append(holidays, campaignHolidays...)
	}
	if ceiling == 0 {
		ceiling = s.config.SessionCeiling
	}

	offerings := offeringsFromRequest(req.Offerings)
	if len(offerings) == 0 {
		if s.offerings == nil {
			return nil, appErrors.Clone(appErrors.ErrInternal, "offering store missing")
		}
		stored, err := s.offerings.ListByCampaign(ctx, req.CampaignID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign offerings")
		}
		if len(stored) == 0 {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "campaign has no stored offerings")
		}
		if len(stored) > s.config.MaxOfferingRows {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("offering set exceeds the %d row limit", s.config.MaxOfferingRows))
		}
		offerings = offeringsFromStored(stored)
	}
	outcome, err := scheduler.Plan(offerings, scheduler.Config{
		Start:          start,
		End:            end,
		Holidays:       holidays,
		RestWeekday:    s.config.RestWeekday,
		SessionCeiling: ceiling,
		MainDayBudget:  s.config.MainDayBudget,
		TotalDayBudget: s.config.TotalDayBudget,
		Logger:         s.logger,
	})
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	resp := &dto.PlanResponse{
		ProposalID: uuid.NewString(),
		CampaignID: req.CampaignID,
		Entries:    entriesFromOfferings(offerings),
		Stats: dto.PlanStats{
			Units:      len(outcome.Units),
			DaysUsed:   outcome.DaysUsed,
			OutOfRange: outcome.OutOfRange,
			Span:       scheduler.Span(offerings),
		},
		CapacityOK:  outcome.CapacityOK,
		Violations:  outcome.Violations,
		Electives:   outcome.Electives,
		GapFill:     outcome.GapFill,
		Relocation:  outcome.Relocation,
		Diagnostics: outcome.Diagnostics,
	}
	s.store.Save(plannerProposal{
		ProposalID:  resp.ProposalID,
		CampaignID:  req.CampaignID,
		Response:    *resp,
		Offerings:   offerings,
		RequestedAt: time.Now().UTC(),
	})
	s.metrics.RecordPlanRun(outcome.OutOfRange, !outcome.CapacityOK)

	s.logger.Info("plan proposal built",
		zap.String("proposalId", resp.ProposalID),
		zap.Int("offerings", len(offerings)),
		zap.Int("daysUsed", outcome.DaysUsed),
		zap.Int("outOfRange", outcome.OutOfRange))
	return resp, nil
}

// Save persists a held proposal as the next timetable version of a campaign.
func (s *PlannerService) Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	meta, marshalErr := json.Marshal(map[string]any{
		"stats":       proposal.Response.Stats,
		"capacityOk":  proposal.Response.CapacityOK,
		"violations":  proposal.Response.Violations,
		"electives":   proposal.Response.Electives,
		"gapFill":     proposal.Response.GapFill,
		"relocation":  proposal.Response.Relocation,
		"diagnostics": proposal.Response.Diagnostics,
		"generatedAt": proposal.RequestedAt,
	})
	if marshalErr != nil {
		err = marshalErr
		return "", appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable meta")
	}

	timetable := &models.ExamTimetable{
		CampaignID: req.CampaignID,
		Meta:       types.JSONText(meta),
	}
	if req.Publish {
		timetable.Status = models.TimetableStatusPublished
	}
	if err = s.timetables.CreateVersioned(ctx, tx, timetable); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}
	if err = s.entries.BulkInsert(ctx, tx, timetable.ID, entryRowsFromOfferings(timetable.ID, proposal.Offerings)); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable entries")
	}
	if err = tx.Commit(); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable")
	}

	s.store.Delete(req.ProposalID)
	s.invalidate(ctx, req.CampaignID)
	s.logger.Info("timetable saved",
		zap.String("timetableId", timetable.ID),
		zap.String("campaignId", req.CampaignID),
		zap.Int("version", timetable.Version))
	return timetable.ID, nil
}

// List returns persisted timetable versions for a campaign.
func (s *PlannerService) List(ctx context.Context, query dto.TimetableQuery) ([]dto.TimetableSummary, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable query")
	}
	timetables, err := s.timetables.ListByCampaign(ctx, query.CampaignID, models.TimetableStatus(query.Status))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	summaries := make([]dto.TimetableSummary, 0, len(timetables))
	for _, t := range timetables {
		summaries = append(summaries, dto.TimetableSummary{
			ID:         t.ID,
			CampaignID: t.CampaignID,
			Version:    t.Version,
			Status:     string(t.Status),
			CreatedAt:  t.CreatedAt,
		})
	}
	return summaries, nil
}

// Entries returns the annotated rows of one timetable, cached briefly since
// published timetables are read far more often than written.
func (s *PlannerService) Entries(ctx context.Context, timetableID string) ([]models.ExamTimetableEntry, error) {
	cacheKey := "planner:entries:" + timetableID
	if s.cache != nil {
		var cached []models.ExamTimetableEntry
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true, 0)
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false, 0)
	}

	if _, err := s.timetables.FindByID(ctx, timetableID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	entries, err := s.entries.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable entries")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, entries, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache timetable entries", zap.Error(err))
		}
	}
	return entries, nil
}

// Delete removes one timetable version and its entries. Published versions
// are refused.
func (s *PlannerService) Delete(ctx context.Context, timetableID string) error {
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if timetable.Status == models.TimetableStatusPublished {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "published timetables cannot be deleted")
	}
	if err := s.entries.DeleteByTimetable(ctx, nil, timetableID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable entries")
	}
	if err := s.timetables.Delete(ctx, timetableID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.invalidate(ctx, timetable.CampaignID)
	return nil
}

// Timetable loads one persisted timetable header.
func (s *PlannerService) Timetable(ctx context.Context, timetableID string) (*models.ExamTimetable, error) {
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return timetable, nil
}

func (s *PlannerService) invalidate(ctx context.Context, campaignID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "planner:*"); err != nil {
		s.logger.Warn("failed to invalidate planner cache",
			zap.String("campaignId", campaignID), zap.Error(err))
	}
}

func parseDates(values []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(values))
	for _, v := range values {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func decodeHolidays(raw types.JSONText) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return parseDates(values)
}

func offeringsFromRequest(rows []dto.OfferingRequest) []*models.Offering {
	offerings := make([]*models.Offering, 0, len(rows))
	for _, row := range rows {
		category := models.Category(row.Category)
		if category == "" {
			category = models.CategoryRegular
		}
		if row.ElectiveTrack != "" && category == models.CategoryRegular {
			category = models.CategoryElective
		}
		offerings = append(offerings, &models.Offering{
			SubjectCode:      row.SubjectCode,
			SubjectName:      row.SubjectName,
			Branch:           row.Branch,
			SubBranch:        row.SubBranch,
			Semester:         row.Semester,
			Category:         category,
			ElectiveTrack:    row.ElectiveTrack,
			StudentCount:     row.StudentCount,
			CommonAcrossSems: row.CommonAcrossSems,
			CommonWithinSem:  row.CommonWithinSem,
		})
	}
	return offerings
}

func offeringsFromStored(rows []models.CampaignOffering) []*models.Offering {
	offerings := make([]*models.Offering, 0, len(rows))
	for _, row := range rows {
		offerings = append(offerings, &models.Offering{
			SubjectCode:      row.SubjectCode,
			SubjectName:      row.SubjectName,
			Branch:           row.Branch,
			SubBranch:        row.SubBranch,
			Semester:         row.Semester,
			Category:         row.Category,
			ElectiveTrack:    row.ElectiveTrack,
			StudentCount:     row.StudentCount,
			CommonAcrossSems: row.CommonAcrossSems,
			CommonWithinSem:  row.CommonWithinSem,
		})
	}
	return offerings
}

func entriesFromOfferings(offerings []*models.Offering) []dto.PlannedEntry {
	entries := make([]dto.PlannedEntry, 0, len(offerings))
	for _, o := range offerings {
		entries = append(entries, dto.PlannedEntry{
			SubjectCode:   o.SubjectCode,
			SubjectName:   o.SubjectName,
			Branch:        o.Branch,
			SubBranch:     o.SubBranch,
			Semester:      o.Semester,
			Category:      string(o.Category),
			ElectiveTrack: o.ElectiveTrack,
			StudentCount:  o.StudentCount,
			ExamDate:      o.ExamDate,
			Slot:          string(o.Slot),
			Relaxed:       o.Relaxed,
			OutOfRange:    o.OutOfRange,
		})
	}
	return entries
}

func entryRowsFromOfferings(timetableID string, offerings []*models.Offering) []models.ExamTimetableEntry {
	rows := make([]models.ExamTimetableEntry, 0, len(offerings))
	for _, o := range offerings {
		rows = append(rows, models.ExamTimetableEntry{
			TimetableID:   timetableID,
			SubjectCode:   o.SubjectCode,
			SubjectName:   o.SubjectName,
			Branch:        o.Branch,
			SubBranch:     o.SubBranch,
			Semester:      o.Semester,
			Category:      o.Category,
			ElectiveTrack: o.ElectiveTrack,
			StudentCount:  o.StudentCount,
			ExamDate:      o.ExamDate,
			Slot:          string(o.Slot),
			Relaxed:       o.Relaxed,
			OutOfRange:    o.OutOfRange,
		})
	}
	return rows
}

type plannerProposal struct {
	ProposalID  string
	CampaignID  string
	Response    dto.PlanResponse
	Offerings   []*models.Offering
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]plannerProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]plannerProposal),
	}
}

func (s *proposalStore) Save(proposal plannerProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (plannerProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return plannerProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return plannerProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}
