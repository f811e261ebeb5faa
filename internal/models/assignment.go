package models

import "time"

// TeacherAssignment links a teacher to a class/subject pair within a school.
// Assignments are owned by the roster system; the generator only reads them.
type TeacherAssignment struct {
	ID          string    `db:"id" json:"id"`
	SchoolID    string    `db:"school_id" json:"school_id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	TeacherName string    `db:"teacher_name" json:"teacher_name"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	ClassName   string    `db:"class_name" json:"class_name"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SessionUnit is one required occurrence of an assignment that must occupy
// exactly one grid slot. Units live only for the duration of a generation run.
type SessionUnit struct {
	Assignment    TeacherAssignment `json:"assignment"`
	SessionNumber int               `json:"session_number"`
	TotalSessions int               `json:"total_sessions"`
}
