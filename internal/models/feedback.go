package models

import "time"

// FeedbackSession groups the human corrections made while reviewing one
// generated timetable version.
type FeedbackSession struct {
	ID                 string    `db:"id" json:"id"`
	TimetableVersionID string    `db:"timetable_version_id" json:"timetable_version_id"`
	LearningPoints     int       `db:"learning_points" json:"learning_points"`
	CreatedBy          string    `db:"created_by" json:"created_by"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// SlotAssignment is the before/after payload of a correction: who teaches
// what at which cell.
type SlotAssignment struct {
	TeacherID string  `json:"teacher_id"`
	SubjectID string  `json:"subject_id"`
	Day       Weekday `json:"day_of_week"`
	Period    int     `json:"period"`
}

// Slot returns the grid cell of the assignment.
func (a SlotAssignment) Slot() Slot {
	return Slot{Day: a.Day, Period: a.Period}
}

// Correction records one human edit moving a session from a before state to
// an after state. Corrections are append-only and are the source of truth
// the learning pipeline derives patterns from.
type Correction struct {
	ID          string         `json:"id"`
	FeedbackID  string         `json:"feedback_id"`
	Before      SlotAssignment `json:"before"`
	After       SlotAssignment `json:"after"`
	Reason      string         `json:"reason"`
	CorrectedBy string         `json:"corrected_by"`
	CreatedAt   time.Time      `json:"created_at"`
}
