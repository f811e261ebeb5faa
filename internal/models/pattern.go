package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PatternType classifies what entity a learned pattern describes.
type PatternType string

const (
	PatternTeacherPreference  PatternType = "TEACHER_PREFERENCE"
	PatternSubjectPreference  PatternType = "SUBJECT_PREFERENCE"
	PatternTimeSlotPreference PatternType = "TIME_SLOT_PREFERENCE"
	PatternDayPreference      PatternType = "DAY_PREFERENCE"
)

// Valid reports whether the type is one of the known pattern kinds.
func (t PatternType) Valid() bool {
	switch t {
	case PatternTeacherPreference, PatternSubjectPreference, PatternTimeSlotPreference, PatternDayPreference:
		return true
	}
	return false
}

// LearnedPattern is a persisted preference/avoidance record derived from
// human corrections, uniquely keyed by (pattern_type, entity_id). Slot sets
// are stored as JSON arrays of slot keys such as "Monday_Period1".
type LearnedPattern struct {
	ID             string         `db:"id" json:"id"`
	Type           PatternType    `db:"pattern_type" json:"pattern_type"`
	EntityID       string         `db:"entity_id" json:"entity_id"`
	PreferredSlots types.JSONText `db:"preferred_slots" json:"preferred_slots"`
	AvoidedSlots   types.JSONText `db:"avoided_slots" json:"avoided_slots"`
	Confidence     float64        `db:"confidence" json:"confidence"`
	LastUpdated    time.Time      `db:"last_updated" json:"last_updated"`
}

// PatternFilter narrows pattern store reads.
type PatternFilter struct {
	Type     PatternType
	EntityID string
}
