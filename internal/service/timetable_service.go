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
	"go.uber.org/zap"

	"github.com/aria7-op/sms-sub008/internal/dto"
	"github.com/aria7-op/sms-sub008/internal/models"
	"github.com/aria7-op/sms-sub008/pkg/config"
	appErrors "github.com/aria7-op/sms-sub008/pkg/errors"
	"github.com/aria7-op/sms-sub008/pkg/export"
)

type assignmentSource interface {
	ListActiveByClass(ctx context.Context, schoolID, classID string) ([]models.TeacherAssignment, error)
}

type patternLister interface {
	List(ctx context.Context, filter models.PatternFilter) ([]models.LearnedPattern, error)
}

type timetableStore interface {
	AppendVersion(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error
	InsertVersionSlots(ctx context.Context, exec sqlx.ExtContext, slots []models.ScheduledSession) error
	ReplaceClassSlots(ctx context.Context, exec sqlx.ExtContext, schoolID, classID string, slots []models.ScheduledSession) error
	ListVersions(ctx context.Context, schoolID, classID string) ([]models.TimetableVersion, error)
	FindVersionByID(ctx context.Context, id string) (*models.TimetableVersion, error)
	ListSlotsByVersion(ctx context.Context, versionID string) ([]models.ScheduledSession, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// classLocks serializes generation per (school, class). A second concurrent
// request for the same key is rejected rather than queued.
type classLocks struct {
	mu   sync.Mutex
	busy map[string]bool
}

func newClassLocks() *classLocks {
	return &classLocks{busy: make(map[string]bool)}
}

func (l *classLocks) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy[key] {
		return false
	}
	l.busy[key] = true
	return true
}

func (l *classLocks) Release(key string) {
	l.mu.Lock()
	delete(l.busy, key)
	l.mu.Unlock()
}

// TimetableService orchestrates the generation pipeline: expand, assign,
// score, persist a new version and replace the class's current slots.
type TimetableService struct {
	assignments assignmentSource
	patterns    patternLister
	store       timetableStore
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	cfg         config.TimetableConfig
	locks       *classLocks

	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewTimetableService wires the generation pipeline.
func NewTimetableService(
	assignments assignmentSource,
	patterns patternLister,
	store timetableStore,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg config.TimetableConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		assignments: assignments,
		patterns:    patterns,
		store:       store,
		tx:          tx,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		cfg:         cfg,
		locks:       newClassLocks(),
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
	}
}

// resolvedGrid is the validated per-run grid configuration.
type resolvedGrid struct {
	grid                 models.SlotGrid
	maxPeriodsPerDay     int
	maxPeriodsPerSubject int
}

// resolveGrid merges request constraints over the configured defaults and
// validates the result once, before any placement work.
func (s *TimetableService) resolveGrid(constraints dto.TimetableConstraints) (resolvedGrid, error) {
	merged := s.cfg
	if len(constraints.Days) > 0 {
		merged.Days = constraints.Days
	}
	if constraints.PeriodsPerDay > 0 {
		merged.PeriodsPerDay = constraints.PeriodsPerDay
	}
	if constraints.MaxPeriodsPerDay > 0 {
		merged.MaxPeriodsPerDay = constraints.MaxPeriodsPerDay
	}
	if constraints.MaxPeriodsPerSubject > 0 {
		merged.MaxPeriodsPerSubject = constraints.MaxPeriodsPerSubject
	}
	if merged.MaxPeriodsPerDay > merged.PeriodsPerDay {
		merged.MaxPeriodsPerDay = merged.PeriodsPerDay
	}
	if err := merged.Validate(); err != nil {
		return resolvedGrid{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable constraints")
	}

	days := make([]models.Weekday, 0, len(merged.Days))
	for _, name := range merged.Days {
		day, err := models.ParseWeekday(name)
		if err != nil {
			return resolvedGrid{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable constraints")
		}
		days = append(days, day)
	}

	return resolvedGrid{
		grid:                 models.SlotGrid{Days: days, PeriodsPerDay: merged.PeriodsPerDay},
		maxPeriodsPerDay:     merged.MaxPeriodsPerDay,
		maxPeriodsPerSubject: merged.MaxPeriodsPerSubject,
	}, nil
}

// Generate runs the full pipeline for one class and persists the outcome
// atomically. Unplaced sessions are reported, not fatal.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	resolved, err := s.resolveGrid(req.Constraints)
	if err != nil {
		return nil, err
	}
	for subjectID, count := range req.SubjectSessions {
		if count < 1 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s requires a positive session count, got %d", subjectID, count))
		}
		if count > resolved.maxPeriodsPerSubject {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s requests %d sessions, cap is %d per week", subjectID, count, resolved.maxPeriodsPerSubject))
		}
	}

	lockKey := req.SchoolID + "/" + req.ClassID
	if !s.locks.TryAcquire(lockKey) {
		return nil, appErrors.Clone(appErrors.ErrGenerationInProgress, "")
	}
	defer s.locks.Release(lockKey)

	started := time.Now()
	resp, err := s.generateLocked(ctx, req, resolved)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		unassigned := 0
		quality := 0.0
		if resp != nil {
			unassigned = len(resp.Unassigned)
			quality = resp.Version.QualityScore
		}
		s.metrics.ObserveGeneration(outcome, time.Since(started), quality, unassigned)
	}
	return resp, err
}

func (s *TimetableService) generateLocked(ctx context.Context, req dto.GenerateTimetableRequest, resolved resolvedGrid) (*dto.GenerateTimetableResponse, error) {
	assignments, err := s.assignments.ListActiveByClass(ctx, req.SchoolID, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher assignments")
	}
	if len(assignments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no active teacher assignments for this class")
	}

	patterns, err := s.patterns.List(ctx, models.PatternFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learned patterns")
	}

	scorer := NewQualityScorer(resolved.grid, patterns, req.Preferences, s.cfg.CoreSubjects)
	units := ExpandSessions(assignments, req.SubjectSessions)
	result := AssignSessions(units, resolved.grid, scorer)
	quality := scorer.ScoreTimetable(result.Scheduled, resolved.maxPeriodsPerDay)

	generatedBy := req.GeneratedBy
	if generatedBy == "" {
		generatedBy = "system"
	}

	meta, err := json.Marshal(map[string]any{
		"algorithm":     "greedy_rotation_v1",
		"days":          s.dayNames(resolved.grid.Days),
		"periodsPerDay": resolved.grid.PeriodsPerDay,
		"sessionUnits":  len(units),
		"unassigned":    len(result.Unassigned),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode version metadata")
	}

	version := &models.TimetableVersion{
		ID:           uuid.NewString(),
		SchoolID:     req.SchoolID,
		ClassID:      req.ClassID,
		QualityScore: quality,
		GeneratedBy:  generatedBy,
		Meta:         meta,
	}
	for i := range result.Scheduled {
		result.Scheduled[i].TimetableVersionID = version.ID
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.store.AppendVersion(ctx, tx, version); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to append timetable version")
		return nil, err
	}
	if err = s.store.InsertVersionSlots(ctx, tx, result.Scheduled); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist version slots")
		return nil, err
	}
	if err = s.store.ReplaceClassSlots(ctx, tx, req.SchoolID, req.ClassID, result.Scheduled); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to replace class slots")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit timetable transaction")
		return nil, err
	}

	s.logger.Info("timetable generated",
		zap.String("school_id", req.SchoolID),
		zap.String("class_id", req.ClassID),
		zap.Int("version", version.Version),
		zap.Float64("quality_score", quality),
		zap.Int("scheduled", len(result.Scheduled)),
		zap.Int("unassigned", len(result.Unassigned)))

	return &dto.GenerateTimetableResponse{
		Version:    *version,
		Slots:      result.Scheduled,
		Unassigned: toUnassignedDTO(result.Unassigned),
	}, nil
}

// ListVersions returns the ledger for a class.
func (s *TimetableService) ListVersions(ctx context.Context, query dto.TimetableVersionQuery) ([]models.TimetableVersion, error) {
	if query.SchoolID == "" || query.ClassID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schoolId and classId are required")
	}
	versions, err := s.store.ListVersions(ctx, query.SchoolID, query.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable versions")
	}
	return versions, nil
}

// GetVersionSlots returns slot detail recorded under a version.
func (s *TimetableService) GetVersionSlots(ctx context.Context, versionID string) ([]models.ScheduledSession, error) {
	if versionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "version id is required")
	}
	if _, err := s.store.FindVersionByID(ctx, versionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
	}
	slots, err := s.store.ListSlotsByVersion(ctx, versionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list version slots")
	}
	return slots, nil
}

// ExportVersion renders a version's weekly grid as CSV or PDF. Wall-clock
// period labels are applied here, at the presentation boundary.
func (s *TimetableService) ExportVersion(ctx context.Context, versionID, format string) ([]byte, string, error) {
	version, err := s.store.FindVersionByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
	}
	slots, err := s.store.ListSlotsByVersion(ctx, versionID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list version slots")
	}

	table := s.buildVersionTable(version, slots)
	switch format {
	case "csv", "":
		payload, renderErr := s.csv.Render(table)
		if renderErr != nil {
			return nil, "", appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, renderErr := s.pdf.Render(table)
		if renderErr != nil {
			return nil, "", appErrors.Wrap(renderErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *TimetableService) buildVersionTable(version *models.TimetableVersion, slots []models.ScheduledSession) export.Table {
	days := make([]models.Weekday, 0, len(s.cfg.Days))
	for _, name := range s.cfg.Days {
		if day, err := models.ParseWeekday(name); err == nil {
			days = append(days, day)
		}
	}

	maxPeriod := s.cfg.PeriodsPerDay
	cells := make(map[models.Slot]string, len(slots))
	for _, slot := range slots {
		label := slot.SubjectName
		if label == "" {
			label = slot.SubjectID
		}
		if slot.TeacherName != "" {
			label += " (" + slot.TeacherName + ")"
		}
		cells[slot.Slot()] = label
		if slot.Period > maxPeriod {
			maxPeriod = slot.Period
		}
	}

	headers := make([]string, 0, len(days)+1)
	headers = append(headers, "Period")
	for _, day := range days {
		headers = append(headers, day.String())
	}

	rows := make([][]string, 0, maxPeriod)
	for period := 1; period <= maxPeriod; period++ {
		row := make([]string, 0, len(headers))
		row = append(row, s.periodLabel(period))
		for _, day := range days {
			row = append(row, cells[models.Slot{Day: day, Period: period}])
		}
		rows = append(rows, row)
	}

	return export.Table{
		Title:   fmt.Sprintf("Timetable %s v%d", version.ClassID, version.Version),
		Headers: headers,
		Rows:    rows,
	}
}

func (s *TimetableService) periodLabel(period int) string {
	if period >= 1 && period <= len(s.cfg.PeriodTimes) {
		return fmt.Sprintf("%d (%s)", period, s.cfg.PeriodTimes[period-1])
	}
	return fmt.Sprintf("%d", period)
}

func (s *TimetableService) dayNames(days []models.Weekday) []string {
	names := make([]string, 0, len(days))
	for _, day := range days {
		names = append(names, day.String())
	}
	return names
}

func toUnassignedDTO(units []models.SessionUnit) []dto.UnassignedUnit {
	result := make([]dto.UnassignedUnit, 0, len(units))
	for _, unit := range units {
		result = append(result, dto.UnassignedUnit{
			SubjectID:     unit.Assignment.SubjectID,
			TeacherID:     unit.Assignment.TeacherID,
			SubjectName:   unit.Assignment.SubjectName,
			SessionNumber: unit.SessionNumber,
			TotalSessions: unit.TotalSessions,
		})
	}
	return result
}
