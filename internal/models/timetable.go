package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduledSession is a placed session inside a generated timetable. The
// "current" schedule for a class is the set of its scheduled sessions, and is
// replaced atomically by each generation run.
type ScheduledSession struct {
	ID                 string    `db:"id" json:"id"`
	TimetableVersionID string    `db:"timetable_version_id" json:"timetable_version_id"`
	SchoolID           string    `db:"school_id" json:"school_id"`
	ClassID            string    `db:"class_id" json:"class_id"`
	SubjectID          string    `db:"subject_id" json:"subject_id"`
	TeacherID          string    `db:"teacher_id" json:"teacher_id"`
	SubjectName        string    `db:"subject_name" json:"subject_name"`
	TeacherName        string    `db:"teacher_name" json:"teacher_name"`
	Day                Weekday   `db:"day_of_week" json:"day_of_week"`
	Period             int       `db:"period" json:"period"`
	SessionNumber      int       `db:"session_number" json:"session_number"`
	TotalSessions      int       `db:"total_sessions" json:"total_sessions"`
	Score              float64   `db:"score" json:"score"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// Slot returns the grid cell the session occupies.
func (s ScheduledSession) Slot() Slot {
	return Slot{Day: s.Day, Period: s.Period}
}

// TimetableVersion is an immutable snapshot of one generation run. Versions
// are append-only; superseded versions remain for history.
type TimetableVersion struct {
	ID           string         `db:"id" json:"id"`
	SchoolID     string         `db:"school_id" json:"school_id"`
	ClassID      string         `db:"class_id" json:"class_id"`
	Version      int            `db:"version" json:"version"`
	QualityScore float64        `db:"quality_score" json:"quality_score"`
	GeneratedBy  string         `db:"generated_by" json:"generated_by"`
	Meta         types.JSONText `db:"meta" json:"meta,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
