package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria7-op/sms-sub008/internal/dto"
	"github.com/aria7-op/sms-sub008/internal/models"
	appErrors "github.com/aria7-op/sms-sub008/pkg/errors"
)

func decodeSlotKeys(t *testing.T, payload []byte) []string {
	t.Helper()
	var keys []string
	require.NoError(t, json.Unmarshal(payload, &keys))
	return keys
}

func correctionFixture(before, after models.SlotAssignment) models.Correction {
	return models.Correction{
		FeedbackID:  "feedback-1",
		Before:      before,
		After:       after,
		CorrectedBy: "reviewer-1",
	}
}

func TestDerivePatternsTeacherChange(t *testing.T) {
	correction := correctionFixture(
		models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "math", Day: models.Monday, Period: 1},
		models.SlotAssignment{TeacherID: "teacher-2", SubjectID: "math", Day: models.Monday, Period: 1},
	)

	patterns := DerivePatterns(correction)

	require.Len(t, patterns, 1)
	pattern := patterns[0]
	assert.Equal(t, models.PatternTeacherPreference, pattern.Type)
	assert.Equal(t, "teacher-2", pattern.EntityID)
	assert.InDelta(t, 0.9, pattern.Confidence, 1e-9)
	assert.Contains(t, decodeSlotKeys(t, pattern.PreferredSlots), "Monday_Period1")
}

func TestDerivePatternsPeriodChangeSameSubject(t *testing.T) {
	correction := correctionFixture(
		models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "math", Day: models.Monday, Period: 1},
		models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "math", Day: models.Monday, Period: 3},
	)

	patterns := DerivePatterns(correction)

	require.Len(t, patterns, 1)
	pattern := patterns[0]
	assert.Equal(t, models.PatternTimeSlotPreference, pattern.Type)
	assert.Equal(t, "math", pattern.EntityID)
	assert.InDelta(t, 0.8, pattern.Confidence, 1e-9)
	assert.Equal(t, []string{"Monday_Period3"}, decodeSlotKeys(t, pattern.PreferredSlots))
	assert.Equal(t, []string{"Monday_Period1"}, decodeSlotKeys(t, pattern.AvoidedSlots))
}

func TestDerivePatternsDayChangeStoresDayNames(t *testing.T) {
	correction := correctionFixture(
		models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "math", Day: models.Monday, Period: 2},
		models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "math", Day: models.Wednesday, Period: 2},
	)

	patterns := DerivePatterns(correction)

	require.Len(t, patterns, 1)
	pattern := patterns[0]
	assert.Equal(t, models.PatternDayPreference, pattern.Type)
	assert.Equal(t, "teacher-1", pattern.EntityID)
	assert.InDelta(t, 0.7, pattern.Confidence, 1e-9)
	assert.Equal(t, []string{"Wednesday"}, decodeSlotKeys(t, pattern.PreferredSlots))
	assert.Equal(t, []string{"Monday"}, decodeSlotKeys(t, pattern.AvoidedSlots))
}

func TestDerivePatternsCompoundChange(t *testing.T) {
	correction := correctionFixture(
		models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "math", Day: models.Monday, Period: 1},
		models.SlotAssignment{TeacherID: "teacher-2", SubjectID: "math", Day: models.Tuesday, Period: 4},
	)

	patterns := DerivePatterns(correction)

	require.Len(t, patterns, 3)
	types := make(map[models.PatternType]bool)
	for _, pattern := range patterns {
		types[pattern.Type] = true
	}
	assert.True(t, types[models.PatternTeacherPreference])
	assert.True(t, types[models.PatternTimeSlotPreference])
	assert.True(t, types[models.PatternDayPreference])
}

func TestDerivePatternsNoChange(t *testing.T) {
	assignment := models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "math", Day: models.Monday, Period: 1}
	assert.Empty(t, DerivePatterns(correctionFixture(assignment, assignment)))
}

func TestDerivePatternsBatchUnionsSlotSets(t *testing.T) {
	corrections := []models.Correction{
		correctionFixture(
			models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "math", Day: models.Monday, Period: 2},
			models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "math", Day: models.Wednesday, Period: 2},
		),
		correctionFixture(
			models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "science", Day: models.Friday, Period: 3},
			models.SlotAssignment{TeacherID: "teacher-1", SubjectID: "science", Day: models.Thursday, Period: 3},
		),
	}

	patterns := DerivePatternsBatch(corrections)

	require.Len(t, patterns, 1)
	pattern := patterns[0]
	assert.Equal(t, models.PatternDayPreference, pattern.Type)
	assert.Equal(t, "teacher-1", pattern.EntityID)
	assert.ElementsMatch(t, []string{"Wednesday", "Thursday"}, decodeSlotKeys(t, pattern.PreferredSlots))
	assert.ElementsMatch(t, []string{"Monday", "Friday"}, decodeSlotKeys(t, pattern.AvoidedSlots))
}

func TestRecordCorrectionPersistsAndLearns(t *testing.T) {
	feedback := newFeedbackStoreStub("feedback-1")
	upserter := &patternUpserterStub{}
	service := NewLearningService(upserter, feedback, versionReaderStub{}, nil, nil, nil)

	correction, patterns, err := service.RecordCorrection(context.Background(), "feedback-1", dto.CorrectionRequest{
		Before:      dto.SlotAssignmentPayload{TeacherID: "teacher-1", SubjectID: "math", Day: "Monday", Period: 1},
		After:       dto.SlotAssignmentPayload{TeacherID: "teacher-2", SubjectID: "math", Day: "Monday", Period: 1},
		CorrectedBy: "reviewer-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "feedback-1", correction.FeedbackID)
	require.Len(t, patterns, 1)
	assert.Equal(t, models.PatternTeacherPreference, patterns[0].Type)
	assert.Len(t, feedback.corrections, 1)
	assert.Equal(t, 1, feedback.learningPoints)
	assert.Len(t, upserter.upserts, 1)
}

func TestRecordCorrectionUpsertFailureDoesNotPropagate(t *testing.T) {
	feedback := newFeedbackStoreStub("feedback-1")
	upserter := &patternUpserterStub{err: assert.AnError}
	service := NewLearningService(upserter, feedback, versionReaderStub{}, nil, nil, nil)

	correction, patterns, err := service.RecordCorrection(context.Background(), "feedback-1", dto.CorrectionRequest{
		Before:      dto.SlotAssignmentPayload{TeacherID: "teacher-1", SubjectID: "math", Day: "Monday", Period: 1},
		After:       dto.SlotAssignmentPayload{TeacherID: "teacher-2", SubjectID: "math", Day: "Monday", Period: 1},
		CorrectedBy: "reviewer-1",
	})
	require.NoError(t, err)
	assert.NotNil(t, correction)
	assert.Empty(t, patterns)
	// the correction is stored even though no pattern stuck
	assert.Len(t, feedback.corrections, 1)
	assert.Zero(t, feedback.learningPoints)
}

func TestRecordCorrectionUnknownSession(t *testing.T) {
	service := NewLearningService(&patternUpserterStub{}, newFeedbackStoreStub(), versionReaderStub{}, nil, nil, nil)

	_, _, err := service.RecordCorrection(context.Background(), "missing", dto.CorrectionRequest{
		Before:      dto.SlotAssignmentPayload{TeacherID: "teacher-1", SubjectID: "math", Day: "Monday", Period: 1},
		After:       dto.SlotAssignmentPayload{TeacherID: "teacher-2", SubjectID: "math", Day: "Monday", Period: 1},
		CorrectedBy: "reviewer-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecordCorrectionInvalidDay(t *testing.T) {
	service := NewLearningService(&patternUpserterStub{}, newFeedbackStoreStub("feedback-1"), versionReaderStub{}, nil, nil, nil)

	_, _, err := service.RecordCorrection(context.Background(), "feedback-1", dto.CorrectionRequest{
		Before:      dto.SlotAssignmentPayload{TeacherID: "teacher-1", SubjectID: "math", Day: "Funday", Period: 1},
		After:       dto.SlotAssignmentPayload{TeacherID: "teacher-2", SubjectID: "math", Day: "Monday", Period: 1},
		CorrectedBy: "reviewer-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordCorrectionBatchAggregates(t *testing.T) {
	feedback := newFeedbackStoreStub("feedback-1")
	upserter := &patternUpserterStub{}
	service := NewLearningService(upserter, feedback, versionReaderStub{}, nil, nil, nil)

	corrections, patterns, err := service.RecordCorrectionBatch(context.Background(), "feedback-1", dto.CorrectionBatchRequest{
		Corrections: []dto.CorrectionRequest{
			{
				Before:      dto.SlotAssignmentPayload{TeacherID: "teacher-1", SubjectID: "math", Day: "Monday", Period: 2},
				After:       dto.SlotAssignmentPayload{TeacherID: "teacher-1", SubjectID: "math", Day: "Wednesday", Period: 2},
				CorrectedBy: "reviewer-1",
			},
			{
				Before:      dto.SlotAssignmentPayload{TeacherID: "teacher-1", SubjectID: "science", Day: "Friday", Period: 3},
				After:       dto.SlotAssignmentPayload{TeacherID: "teacher-1", SubjectID: "science", Day: "Thursday", Period: 3},
				CorrectedBy: "reviewer-1",
			},
		},
	})
	require.NoError(t, err)
	assert.Len(t, corrections, 2)
	// both corrections collapse into one aggregated day pattern upsert
	require.Len(t, patterns, 1)
	assert.Len(t, upserter.upserts, 1)
	assert.Equal(t, 1, feedback.learningPoints)
}

func TestCreateFeedbackSessionUnknownVersion(t *testing.T) {
	service := NewLearningService(&patternUpserterStub{}, newFeedbackStoreStub(), versionReaderStub{missing: true}, nil, nil, nil)

	_, err := service.CreateFeedbackSession(context.Background(), dto.CreateFeedbackSessionRequest{
		TimetableVersionID: "missing",
		CreatedBy:          "reviewer-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateFeedbackSessionSuccess(t *testing.T) {
	feedback := newFeedbackStoreStub()
	service := NewLearningService(&patternUpserterStub{}, feedback, versionReaderStub{}, nil, nil, nil)

	session, err := service.CreateFeedbackSession(context.Background(), dto.CreateFeedbackSessionRequest{
		TimetableVersionID: "version-1",
		CreatedBy:          "reviewer-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "version-1", session.TimetableVersionID)
	assert.Len(t, feedback.sessions, 1)
}

// --- Fixtures ---

type patternUpserterStub struct {
	upserts []models.LearnedPattern
	err     error
}

func (s *patternUpserterStub) Upsert(ctx context.Context, pattern *models.LearnedPattern) error {
	if s.err != nil {
		return s.err
	}
	s.upserts = append(s.upserts, *pattern)
	return nil
}

type feedbackStoreStub struct {
	sessions       map[string]*models.FeedbackSession
	corrections    []models.Correction
	learningPoints int
}

func newFeedbackStoreStub(sessionIDs ...string) *feedbackStoreStub {
	stub := &feedbackStoreStub{sessions: make(map[string]*models.FeedbackSession)}
	for _, id := range sessionIDs {
		stub.sessions[id] = &models.FeedbackSession{ID: id, TimetableVersionID: "version-1"}
	}
	return stub
}

func (s *feedbackStoreStub) CreateSession(ctx context.Context, session *models.FeedbackSession) error {
	if session.ID == "" {
		session.ID = "feedback-generated"
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *feedbackStoreStub) FindSessionByID(ctx context.Context, id string) (*models.FeedbackSession, error) {
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	return nil, sql.ErrNoRows
}

func (s *feedbackStoreStub) AddCorrection(ctx context.Context, correction *models.Correction) error {
	s.corrections = append(s.corrections, *correction)
	return nil
}

func (s *feedbackStoreStub) ListCorrections(ctx context.Context, feedbackID string) ([]models.Correction, error) {
	return s.corrections, nil
}

func (s *feedbackStoreStub) IncrementLearningPoints(ctx context.Context, feedbackID string, delta int) error {
	s.learningPoints += delta
	return nil
}

type versionReaderStub struct {
	missing bool
}

func (s versionReaderStub) FindVersionByID(ctx context.Context, id string) (*models.TimetableVersion, error) {
	if s.missing {
		return nil, sql.ErrNoRows
	}
	return &models.TimetableVersion{ID: id, Version: 1}, nil
}
