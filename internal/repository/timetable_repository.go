package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aria7-op/sms-sub008/internal/models"
)

// TimetableRepository owns the append-only version ledger and the "current"
// class slot set.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// AppendVersion inserts an immutable version row, assigning the next version
// number for the class.
func (r *TimetableRepository) AppendVersion(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	target := r.exec(exec)
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}
	if len(version.Meta) == 0 {
		version.Meta = []byte("{}")
	}

	const query = `INSERT INTO timetable_versions (id, school_id, class_id, version, quality_score, generated_by, meta, created_at)
VALUES ($1, $2, $3, (SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_versions WHERE school_id = $2 AND class_id = $3), $4, $5, $6, $7)
RETURNING version`
	row := target.QueryRowxContext(ctx, query,
		version.ID,
		version.SchoolID,
		version.ClassID,
		version.QualityScore,
		version.GeneratedBy,
		version.Meta,
		version.CreatedAt,
	)
	if err := row.Scan(&version.Version); err != nil {
		return fmt.Errorf("append timetable version: %w", err)
	}
	return nil
}

// InsertVersionSlots records a version's sessions in the append-only ledger.
// Ledger rows are never updated or deleted.
func (r *TimetableRepository) InsertVersionSlots(ctx context.Context, exec sqlx.ExtContext, slots []models.ScheduledSession) error {
	target := r.exec(exec)

	const insert = `INSERT INTO timetable_version_slots (id, timetable_version_id, school_id, class_id, subject_id, teacher_id, subject_name, teacher_name, day_of_week, period, session_number, total_sessions, score, created_at)
VALUES (:id, :timetable_version_id, :school_id, :class_id, :subject_id, :teacher_id, :subject_name, :teacher_name, :day_of_week, :period, :session_number, :total_sessions, :score, :created_at)`
	now := time.Now().UTC()
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, insert, slot); err != nil {
			return fmt.Errorf("insert timetable version slot: %w", err)
		}
	}
	return nil
}

// ReplaceClassSlots swaps the current slot set for a class. Delete and insert
// run on the same executor so the caller's transaction makes the swap
// all-or-nothing.
func (r *TimetableRepository) ReplaceClassSlots(ctx context.Context, exec sqlx.ExtContext, schoolID, classID string, slots []models.ScheduledSession) error {
	target := r.exec(exec)

	if _, err := target.ExecContext(ctx, `DELETE FROM class_slots WHERE school_id = $1 AND class_id = $2`, schoolID, classID); err != nil {
		return fmt.Errorf("delete class slots: %w", err)
	}

	const insert = `INSERT INTO class_slots (id, timetable_version_id, school_id, class_id, subject_id, teacher_id, subject_name, teacher_name, day_of_week, period, session_number, total_sessions, score, created_at)
VALUES (:id, :timetable_version_id, :school_id, :class_id, :subject_id, :teacher_id, :subject_name, :teacher_name, :day_of_week, :period, :session_number, :total_sessions, :score, :created_at)`
	now := time.Now().UTC()
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, insert, slot); err != nil {
			return fmt.Errorf("insert class slot: %w", err)
		}
	}
	return nil
}

// ListVersions returns the ledger for a class, newest first.
func (r *TimetableRepository) ListVersions(ctx context.Context, schoolID, classID string) ([]models.TimetableVersion, error) {
	const query = `SELECT id, school_id, class_id, version, quality_score, generated_by, meta, created_at
FROM timetable_versions WHERE school_id = $1 AND class_id = $2 ORDER BY version DESC`
	var versions []models.TimetableVersion
	if err := r.db.SelectContext(ctx, &versions, query, schoolID, classID); err != nil {
		return nil, fmt.Errorf("list timetable versions: %w", err)
	}
	return versions, nil
}

// FindVersionByID loads one ledger entry.
func (r *TimetableRepository) FindVersionByID(ctx context.Context, id string) (*models.TimetableVersion, error) {
	const query = `SELECT id, school_id, class_id, version, quality_score, generated_by, meta, created_at
FROM timetable_versions WHERE id = $1`
	var version models.TimetableVersion
	if err := r.db.GetContext(ctx, &version, query, id); err != nil {
		return nil, err
	}
	return &version, nil
}

// ListSlotsByVersion returns the sessions recorded under a version, ordered
// by day and period.
func (r *TimetableRepository) ListSlotsByVersion(ctx context.Context, versionID string) ([]models.ScheduledSession, error) {
	const query = `SELECT id, timetable_version_id, school_id, class_id, subject_id, teacher_id, subject_name, teacher_name, day_of_week, period, session_number, total_sessions, score, created_at
FROM timetable_version_slots WHERE timetable_version_id = $1 ORDER BY day_of_week ASC, period ASC`
	var slots []models.ScheduledSession
	if err := r.db.SelectContext(ctx, &slots, query, versionID); err != nil {
		return nil, fmt.Errorf("list version slots: %w", err)
	}
	return slots, nil
}
