package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/aria7-op/sms-sub008/internal/dto"
	"github.com/aria7-op/sms-sub008/internal/models"
	appErrors "github.com/aria7-op/sms-sub008/pkg/errors"
)

// Confidence assigned to each pattern kind when derived from a correction.
const (
	teacherChangeConfidence = 0.9
	periodChangeConfidence  = 0.8
	dayChangeConfidence     = 0.7
)

type patternUpserter interface {
	Upsert(ctx context.Context, pattern *models.LearnedPattern) error
}

type feedbackStore interface {
	CreateSession(ctx context.Context, session *models.FeedbackSession) error
	FindSessionByID(ctx context.Context, id string) (*models.FeedbackSession, error)
	AddCorrection(ctx context.Context, correction *models.Correction) error
	ListCorrections(ctx context.Context, feedbackID string) ([]models.Correction, error)
	IncrementLearningPoints(ctx context.Context, feedbackID string, delta int) error
}

type versionReader interface {
	FindVersionByID(ctx context.Context, id string) (*models.TimetableVersion, error)
}

// LearningService records human corrections and derives learned patterns
// from them. Corrections are the source of truth; pattern upserts are a
// best-effort derived index and never fail the correction write.
type LearningService struct {
	patterns  patternUpserter
	feedback  feedbackStore
	versions  versionReader
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewLearningService wires the learning pipeline.
func NewLearningService(patterns patternUpserter, feedback feedbackStore, versions versionReader, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *LearningService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LearningService{
		patterns:  patterns,
		feedback:  feedback,
		versions:  versions,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
	}
}

// CreateFeedbackSession opens a review session against an existing version.
func (s *LearningService) CreateFeedbackSession(ctx context.Context, req dto.CreateFeedbackSessionRequest) (*models.FeedbackSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback session payload")
	}
	if s.versions != nil {
		if _, err := s.versions.FindVersionByID(ctx, req.TimetableVersionID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
		}
	}

	session := &models.FeedbackSession{
		TimetableVersionID: req.TimetableVersionID,
		CreatedBy:          req.CreatedBy,
	}
	if err := s.feedback.CreateSession(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create feedback session")
	}
	return session, nil
}

// RecordCorrection appends one correction and derives patterns from it.
// Pattern derivation failures are logged, not propagated.
func (s *LearningService) RecordCorrection(ctx context.Context, feedbackID string, req dto.CorrectionRequest) (*models.Correction, []models.LearnedPattern, error) {
	correction, err := s.buildCorrection(ctx, feedbackID, req)
	if err != nil {
		return nil, nil, err
	}
	if err := s.feedback.AddCorrection(ctx, correction); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record correction")
	}

	patterns := s.applyPatterns(ctx, feedbackID, DerivePatterns(*correction))
	return correction, patterns, nil
}

// RecordCorrectionBatch appends all corrections of one review pass, then
// derives a single aggregated upsert per affected entity so the batch is not
// last-write-wins within itself.
func (s *LearningService) RecordCorrectionBatch(ctx context.Context, feedbackID string, req dto.CorrectionBatchRequest) ([]models.Correction, []models.LearnedPattern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid correction batch payload")
	}

	corrections := make([]models.Correction, 0, len(req.Corrections))
	for _, item := range req.Corrections {
		correction, err := s.buildCorrection(ctx, feedbackID, item)
		if err != nil {
			return nil, nil, err
		}
		if err := s.feedback.AddCorrection(ctx, correction); err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record correction")
		}
		corrections = append(corrections, *correction)
	}

	patterns := s.applyPatterns(ctx, feedbackID, DerivePatternsBatch(corrections))
	return corrections, patterns, nil
}

func (s *LearningService) buildCorrection(ctx context.Context, feedbackID string, req dto.CorrectionRequest) (*models.Correction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid correction payload")
	}
	if _, err := s.feedback.FindSessionByID(ctx, feedbackID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "feedback session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback session")
	}

	before, err := payloadToAssignment(req.Before)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid before assignment")
	}
	after, err := payloadToAssignment(req.After)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid after assignment")
	}

	return &models.Correction{
		FeedbackID:  feedbackID,
		Before:      before,
		After:       after,
		Reason:      req.Reason,
		CorrectedBy: req.CorrectedBy,
	}, nil
}

// applyPatterns upserts derived patterns best-effort and bumps the session's
// learning counter for the ones that stuck.
func (s *LearningService) applyPatterns(ctx context.Context, feedbackID string, derived []models.LearnedPattern) []models.LearnedPattern {
	applied := make([]models.LearnedPattern, 0, len(derived))
	for i := range derived {
		pattern := derived[i]
		if err := s.patterns.Upsert(ctx, &pattern); err != nil {
			s.logger.Warn("learned pattern upsert failed",
				zap.String("feedback_id", feedbackID),
				zap.String("pattern_type", string(pattern.Type)),
				zap.String("entity_id", pattern.EntityID),
				zap.Error(err))
			continue
		}
		if s.metrics != nil {
			s.metrics.ObservePatternUpsert(string(pattern.Type))
		}
		applied = append(applied, pattern)
	}

	if len(applied) > 0 {
		if err := s.feedback.IncrementLearningPoints(ctx, feedbackID, len(applied)); err != nil {
			s.logger.Warn("failed to increment learning points", zap.String("feedback_id", feedbackID), zap.Error(err))
		}
	}
	return applied
}

func payloadToAssignment(payload dto.SlotAssignmentPayload) (models.SlotAssignment, error) {
	day, err := models.ParseWeekday(payload.Day)
	if err != nil {
		return models.SlotAssignment{}, err
	}
	return models.SlotAssignment{
		TeacherID: payload.TeacherID,
		SubjectID: payload.SubjectID,
		Day:       day,
		Period:    payload.Period,
	}, nil
}

// patternDelta accumulates slot keys for one (type, entity) before it is
// turned into a whole-record upsert.
type patternDelta struct {
	patternType models.PatternType
	entityID    string
	preferred   map[string]bool
	avoided     map[string]bool
	confidence  float64
}

// DerivePatterns compares a correction's before and after states and returns
// the pattern upserts it implies. Pure; no side effects.
func DerivePatterns(correction models.Correction) []models.LearnedPattern {
	return deltasToPatterns(correctionDeltas(correction))
}

// DerivePatternsBatch aggregates the deltas of several corrections, unioning
// slot sets per (type, entity) so one upsert reflects the whole batch.
func DerivePatternsBatch(corrections []models.Correction) []models.LearnedPattern {
	type deltaKey struct {
		patternType models.PatternType
		entityID    string
	}
	merged := make(map[deltaKey]*patternDelta)
	var order []deltaKey

	for _, correction := range corrections {
		for _, delta := range correctionDeltas(correction) {
			key := deltaKey{patternType: delta.patternType, entityID: delta.entityID}
			existing, ok := merged[key]
			if !ok {
				copied := delta
				merged[key] = &copied
				order = append(order, key)
				continue
			}
			for slot := range delta.preferred {
				existing.preferred[slot] = true
			}
			for slot := range delta.avoided {
				existing.avoided[slot] = true
			}
			if delta.confidence > existing.confidence {
				existing.confidence = delta.confidence
			}
		}
	}

	deltas := make([]patternDelta, 0, len(order))
	for _, key := range order {
		deltas = append(deltas, *merged[key])
	}
	return deltasToPatterns(deltas)
}

func correctionDeltas(correction models.Correction) []patternDelta {
	var deltas []patternDelta
	beforeKey := correction.Before.Slot().Key()
	afterKey := correction.After.Slot().Key()

	if correction.Before.TeacherID != correction.After.TeacherID {
		deltas = append(deltas, patternDelta{
			patternType: models.PatternTeacherPreference,
			entityID:    correction.After.TeacherID,
			preferred:   map[string]bool{afterKey: true},
			avoided:     map[string]bool{beforeKey: true},
			confidence:  teacherChangeConfidence,
		})
	}

	if correction.Before.Period != correction.After.Period && correction.Before.SubjectID == correction.After.SubjectID {
		deltas = append(deltas, patternDelta{
			patternType: models.PatternTimeSlotPreference,
			entityID:    correction.After.SubjectID,
			preferred:   map[string]bool{afterKey: true},
			avoided:     map[string]bool{beforeKey: true},
			confidence:  periodChangeConfidence,
		})
	}

	if correction.Before.Day != correction.After.Day {
		deltas = append(deltas, patternDelta{
			patternType: models.PatternDayPreference,
			entityID:    correction.After.TeacherID,
			preferred:   map[string]bool{correction.After.Day.String(): true},
			avoided:     map[string]bool{correction.Before.Day.String(): true},
			confidence:  dayChangeConfidence,
		})
	}

	return deltas
}

func deltasToPatterns(deltas []patternDelta) []models.LearnedPattern {
	patterns := make([]models.LearnedPattern, 0, len(deltas))
	for _, delta := range deltas {
		patterns = append(patterns, models.LearnedPattern{
			Type:           delta.patternType,
			EntityID:       delta.entityID,
			PreferredSlots: marshalSlotKeys(delta.preferred),
			AvoidedSlots:   marshalSlotKeys(delta.avoided),
			Confidence:     delta.confidence,
		})
	}
	return patterns
}

func marshalSlotKeys(set map[string]bool) types.JSONText {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	payload, err := json.Marshal(keys)
	if err != nil {
		return types.JSONText("[]")
	}
	return types.JSONText(payload)
}
