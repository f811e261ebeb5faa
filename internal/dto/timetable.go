package dto

import (
	"github.com/aria7-op/sms-sub008/internal/models"
)

// TimetableConstraints override the configured grid bounds for one run.
// Zero values fall back to the server configuration.
type TimetableConstraints struct {
	Days                 []string `json:"days" validate:"omitempty,min=1,dive,required"`
	PeriodsPerDay        int      `json:"periodsPerDay" validate:"omitempty,min=1,max=16"`
	MaxPeriodsPerDay     int      `json:"maxPeriodsPerDay" validate:"omitempty,min=1,max=16"`
	MaxPeriodsPerSubject int      `json:"maxPeriodsPerSubject" validate:"omitempty,min=1"`
}

// SchedulingPreferences carry caller-supplied manual preferences consumed by
// the quality scorer alongside learned patterns.
type SchedulingPreferences struct {
	// TeacherPreferredDays maps a teacher id to day names they prefer.
	TeacherPreferredDays map[string][]string `json:"teacherPreferredDays"`
	// TeacherUnavailableSlots maps a teacher id to slot keys
	// ("Monday_Period1") outside their declared availability. Placements
	// inside these windows count as constraint violations.
	TeacherUnavailableSlots map[string][]string `json:"teacherUnavailableSlots"`
	// CoreSubjects lists subject ids that should land in the first two
	// periods; merged with the configured core subject list.
	CoreSubjects []string `json:"coreSubjects"`
}

// GenerateTimetableRequest instructs the generator to build and persist a new
// timetable version for a class.
type GenerateTimetableRequest struct {
	SchoolID string `json:"schoolId" validate:"required"`
	ClassID  string `json:"classId" validate:"required"`
	// SubjectSessions maps subject id to its required weekly session count.
	// Subjects absent from the map default to one session.
	SubjectSessions map[string]int        `json:"subjectSessions" validate:"omitempty,dive,min=1"`
	Constraints     TimetableConstraints  `json:"constraints"`
	Preferences     SchedulingPreferences `json:"preferences"`
	GeneratedBy     string                `json:"generatedBy"`
}

// UnassignedUnit reports a session the engine could not place.
type UnassignedUnit struct {
	SubjectID     string `json:"subjectId"`
	TeacherID     string `json:"teacherId"`
	SubjectName   string `json:"subjectName,omitempty"`
	SessionNumber int    `json:"sessionNumber"`
	TotalSessions int    `json:"totalSessions"`
}

// GenerateTimetableResponse returns the persisted version, its slots and any
// sessions left unplaced.
type GenerateTimetableResponse struct {
	Version    models.TimetableVersion   `json:"version"`
	Slots      []models.ScheduledSession `json:"slots"`
	Unassigned []UnassignedUnit          `json:"unassigned"`
}

// TimetableVersionQuery filters version listings by school and class.
type TimetableVersionQuery struct {
	SchoolID string `form:"schoolId" json:"schoolId"`
	ClassID  string `form:"classId" json:"classId"`
}
