package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aria7-op/sms-sub008/internal/models"
)

// FeedbackRepository persists feedback sessions and their corrections.
// Corrections are append-only.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// correctionRow flattens the nested before/after payload for sqlx.
type correctionRow struct {
	ID              string         `db:"id"`
	FeedbackID      string         `db:"feedback_id"`
	BeforeTeacherID string         `db:"before_teacher_id"`
	BeforeSubjectID string         `db:"before_subject_id"`
	BeforeDay       models.Weekday `db:"before_day"`
	BeforePeriod    int            `db:"before_period"`
	AfterTeacherID  string         `db:"after_teacher_id"`
	AfterSubjectID  string         `db:"after_subject_id"`
	AfterDay        models.Weekday `db:"after_day"`
	AfterPeriod     int            `db:"after_period"`
	Reason          string         `db:"reason"`
	CorrectedBy     string         `db:"corrected_by"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (row correctionRow) toModel() models.Correction {
	return models.Correction{
		ID:         row.ID,
		FeedbackID: row.FeedbackID,
		Before: models.SlotAssignment{
			TeacherID: row.BeforeTeacherID,
			SubjectID: row.BeforeSubjectID,
			Day:       row.BeforeDay,
			Period:    row.BeforePeriod,
		},
		After: models.SlotAssignment{
			TeacherID: row.AfterTeacherID,
			SubjectID: row.AfterSubjectID,
			Day:       row.AfterDay,
			Period:    row.AfterPeriod,
		},
		Reason:      row.Reason,
		CorrectedBy: row.CorrectedBy,
		CreatedAt:   row.CreatedAt,
	}
}

// CreateSession opens a feedback session for a timetable version.
func (r *FeedbackRepository) CreateSession(ctx context.Context, session *models.FeedbackSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO feedback_sessions (id, timetable_version_id, learning_points, created_by, created_at, updated_at)
VALUES (:id, :timetable_version_id, :learning_points, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create feedback session: %w", err)
	}
	return nil
}

// FindSessionByID loads a feedback session.
func (r *FeedbackRepository) FindSessionByID(ctx context.Context, id string) (*models.FeedbackSession, error) {
	const query = `SELECT id, timetable_version_id, learning_points, created_by, created_at, updated_at FROM feedback_sessions WHERE id = $1`
	var session models.FeedbackSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// AddCorrection appends a correction to a feedback session.
func (r *FeedbackRepository) AddCorrection(ctx context.Context, correction *models.Correction) error {
	if correction.ID == "" {
		correction.ID = uuid.NewString()
	}
	if correction.CreatedAt.IsZero() {
		correction.CreatedAt = time.Now().UTC()
	}

	row := correctionRow{
		ID:              correction.ID,
		FeedbackID:      correction.FeedbackID,
		BeforeTeacherID: correction.Before.TeacherID,
		BeforeSubjectID: correction.Before.SubjectID,
		BeforeDay:       correction.Before.Day,
		BeforePeriod:    correction.Before.Period,
		AfterTeacherID:  correction.After.TeacherID,
		AfterSubjectID:  correction.After.SubjectID,
		AfterDay:        correction.After.Day,
		AfterPeriod:     correction.After.Period,
		Reason:          correction.Reason,
		CorrectedBy:     correction.CorrectedBy,
		CreatedAt:       correction.CreatedAt,
	}

	const query = `INSERT INTO corrections (id, feedback_id, before_teacher_id, before_subject_id, before_day, before_period, after_teacher_id, after_subject_id, after_day, after_period, reason, corrected_by, created_at)
VALUES (:id, :feedback_id, :before_teacher_id, :before_subject_id, :before_day, :before_period, :after_teacher_id, :after_subject_id, :after_day, :after_period, :reason, :corrected_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("add correction: %w", err)
	}
	return nil
}

// ListCorrections returns the corrections of a session in insertion order.
func (r *FeedbackRepository) ListCorrections(ctx context.Context, feedbackID string) ([]models.Correction, error) {
	const query = `SELECT id, feedback_id, before_teacher_id, before_subject_id, before_day, before_period, after_teacher_id, after_subject_id, after_day, after_period, reason, corrected_by, created_at
FROM corrections WHERE feedback_id = $1 ORDER BY created_at ASC, id ASC`
	var rows []correctionRow
	if err := r.db.SelectContext(ctx, &rows, query, feedbackID); err != nil {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	corrections := make([]models.Correction, 0, len(rows))
	for _, row := range rows {
		corrections = append(corrections, row.toModel())
	}
	return corrections, nil
}

// IncrementLearningPoints bumps the learning counter after patterns were
// derived from a correction.
func (r *FeedbackRepository) IncrementLearningPoints(ctx context.Context, feedbackID string, delta int) error {
	const query = `UPDATE feedback_sessions SET learning_points = learning_points + $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, feedbackID, delta, time.Now().UTC()); err != nil {
		return fmt.Errorf("increment learning points: %w", err)
	}
	return nil
}
