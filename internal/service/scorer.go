package service

import (
	"encoding/json"

	"github.com/aria7-op/sms-sub008/internal/dto"
	"github.com/aria7-op/sms-sub008/internal/models"
)

// Per-slot scoring magnitudes. These values gate scoring parity with the
// learning pipeline tests; change them together with the assertions.
const (
	baseSlotScore = 10.0

	teacherPreferredBonus  = 8.0
	teacherAvoidedPenalty  = 10.0
	subjectPreferredBonus  = 6.0
	subjectAvoidedPenalty  = 8.0
	timeSlotPreferredBonus = 4.0
	timeSlotAvoidedPenalty = 6.0
	dayPreferredBonus      = 3.0
	dayAvoidedPenalty      = 5.0

	manualPreferredDayBonus = 2.0
	coreSubjectEarlyBonus   = 3.0

	firstPeriodBonus  = 2.0
	lastPeriodPenalty = 1.0
	earlyWeekBonus    = 1.0
	fridayPenalty     = 1.0

	violationPenalty = 0.10
)

// slotSets holds one pattern's decoded preferred/avoided key sets.
type slotSets struct {
	preferred map[string]bool
	avoided   map[string]bool
}

func decodeSlotSets(pattern models.LearnedPattern) slotSets {
	sets := slotSets{
		preferred: make(map[string]bool),
		avoided:   make(map[string]bool),
	}
	var keys []string
	_ = json.Unmarshal(pattern.PreferredSlots, &keys) // best effort, empty on error
	for _, key := range keys {
		sets.preferred[key] = true
	}
	keys = nil
	_ = json.Unmarshal(pattern.AvoidedSlots, &keys)
	for _, key := range keys {
		sets.avoided[key] = true
	}
	return sets
}

// QualityScorer combines learned patterns, manual preferences and static
// heuristics into per-slot and aggregate timetable scores.
type QualityScorer struct {
	grid models.SlotGrid

	teacherPatterns  map[string]slotSets
	subjectPatterns  map[string]slotSets
	timeSlotPatterns map[string]slotSets
	dayPatterns      map[string]slotSets

	preferredDays map[string]map[models.Weekday]bool
	unavailable   map[string]map[string]bool
	coreSubjects  map[string]bool
}

// NewQualityScorer indexes the supplied patterns and preferences for the
// duration of one generation run.
func NewQualityScorer(grid models.SlotGrid, patterns []models.LearnedPattern, prefs dto.SchedulingPreferences, coreSubjects []string) *QualityScorer {
	s := &QualityScorer{
		grid:             grid,
		teacherPatterns:  make(map[string]slotSets),
		subjectPatterns:  make(map[string]slotSets),
		timeSlotPatterns: make(map[string]slotSets),
		dayPatterns:      make(map[string]slotSets),
		preferredDays:    make(map[string]map[models.Weekday]bool),
		unavailable:      make(map[string]map[string]bool),
		coreSubjects:     make(map[string]bool),
	}

	for _, pattern := range patterns {
		sets := decodeSlotSets(pattern)
		switch pattern.Type {
		case models.PatternTeacherPreference:
			s.teacherPatterns[pattern.EntityID] = sets
		case models.PatternSubjectPreference:
			s.subjectPatterns[pattern.EntityID] = sets
		case models.PatternTimeSlotPreference:
			s.timeSlotPatterns[pattern.EntityID] = sets
		case models.PatternDayPreference:
			s.dayPatterns[pattern.EntityID] = sets
		}
	}

	for teacherID, days := range prefs.TeacherPreferredDays {
		set := make(map[models.Weekday]bool, len(days))
		for _, name := range days {
			if day, err := models.ParseWeekday(name); err == nil {
				set[day] = true
			}
		}
		s.preferredDays[teacherID] = set
	}

	for teacherID, keys := range prefs.TeacherUnavailableSlots {
		set := make(map[string]bool, len(keys))
		for _, key := range keys {
			set[key] = true
		}
		s.unavailable[teacherID] = set
	}

	for _, subjectID := range coreSubjects {
		s.coreSubjects[subjectID] = true
	}
	for _, subjectID := range prefs.CoreSubjects {
		s.coreSubjects[subjectID] = true
	}

	return s
}

// ScoreSlot rates placing the unit into the slot. All adjustments are
// additive and order-insensitive.
func (s *QualityScorer) ScoreSlot(slot models.Slot, unit models.SessionUnit) float64 {
	key := slot.Key()
	dayName := slot.Day.String()
	teacherID := unit.Assignment.TeacherID
	subjectID := unit.Assignment.SubjectID

	score := baseSlotScore

	if sets, ok := s.teacherPatterns[teacherID]; ok {
		if sets.preferred[key] {
			score += teacherPreferredBonus
		}
		if sets.avoided[key] {
			score -= teacherAvoidedPenalty
		}
	}
	if sets, ok := s.subjectPatterns[subjectID]; ok {
		if sets.preferred[key] {
			score += subjectPreferredBonus
		}
		if sets.avoided[key] {
			score -= subjectAvoidedPenalty
		}
	}
	if sets, ok := s.timeSlotPatterns[subjectID]; ok {
		if sets.preferred[key] {
			score += timeSlotPreferredBonus
		}
		if sets.avoided[key] {
			score -= timeSlotAvoidedPenalty
		}
	}
	// Day preference sets hold day names, not full slot keys.
	if sets, ok := s.dayPatterns[teacherID]; ok {
		if sets.preferred[dayName] {
			score += dayPreferredBonus
		}
		if sets.avoided[dayName] {
			score -= dayAvoidedPenalty
		}
	}

	if s.preferredDays[teacherID][slot.Day] {
		score += manualPreferredDayBonus
	}
	if s.coreSubjects[subjectID] && slot.Period <= 2 {
		score += coreSubjectEarlyBonus
	}

	if slot.Period == 1 {
		score += firstPeriodBonus
	}
	if slot.Period == s.grid.LastPeriod() {
		score -= lastPeriodPenalty
	}
	switch slot.Day {
	case models.Monday, models.Tuesday:
		score += earlyWeekBonus
	case models.Friday:
		score -= fridayPenalty
	}

	return score
}

// normalizeSessionScore maps a raw per-slot score into [0,1]. A neutral slot
// (raw equals the base, or no score recorded) maps to 0.5.
func normalizeSessionScore(raw float64) float64 {
	if raw == 0 {
		return 0.5
	}
	normalized := 0.5 + (raw-baseSlotScore)/60.0
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// ScoreTimetable aggregates per-session scores into a 0..1 quality score and
// subtracts a fixed penalty per detected constraint violation. An empty
// timetable scores 0.
func (s *QualityScorer) ScoreTimetable(sessions []models.ScheduledSession, maxPeriodsPerDay int) float64 {
	if len(sessions) == 0 {
		return 0
	}

	var sum float64
	for _, session := range sessions {
		sum += normalizeSessionScore(session.Score)
	}
	score := sum / float64(len(sessions))

	score -= violationPenalty * float64(s.countViolations(sessions, maxPeriodsPerDay))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func (s *QualityScorer) countViolations(sessions []models.ScheduledSession, maxPeriodsPerDay int) int {
	violations := 0

	type classDay struct {
		classID string
		day     models.Weekday
	}
	perDay := make(map[classDay]int)
	for _, session := range sessions {
		perDay[classDay{classID: session.ClassID, day: session.Day}]++
	}
	if maxPeriodsPerDay > 0 {
		for _, count := range perDay {
			if count > maxPeriodsPerDay {
				violations++
			}
		}
	}

	for _, session := range sessions {
		if s.unavailable[session.TeacherID][session.Slot().Key()] {
			violations++
		}
	}

	return violations
}
