package service

import (
	"github.com/aria7-op/sms-sub008/internal/models"
)

// AssignmentResult is the outcome of one engine run over a session unit list.
type AssignmentResult struct {
	Scheduled  []models.ScheduledSession
	Unassigned []models.SessionUnit
}

// AssignSessions greedily places session units into the grid. The scan is
// deterministic: units are processed in input order, each starting from an
// offset rotated by the running unit counter, scanning days outer and periods
// inner and wrapping modulo grid size. A cell is taken only when it is free
// for both the unit's class and its teacher, so no class and no teacher is
// ever double-booked within one run. Units that find no free cell come back
// in Unassigned, in expansion order.
func AssignSessions(units []models.SessionUnit, grid models.SlotGrid, scorer *QualityScorer) AssignmentResult {
	result := AssignmentResult{
		Scheduled:  make([]models.ScheduledSession, 0, len(units)),
		Unassigned: make([]models.SessionUnit, 0),
	}

	size := grid.Size()
	if size == 0 {
		result.Unassigned = append(result.Unassigned, units...)
		return result
	}

	classOccupancy := make(map[string][]bool)
	teacherOccupancy := make(map[string][]bool)
	for _, unit := range units {
		if classOccupancy[unit.Assignment.ClassID] == nil {
			classOccupancy[unit.Assignment.ClassID] = make([]bool, size)
		}
		if teacherOccupancy[unit.Assignment.TeacherID] == nil {
			teacherOccupancy[unit.Assignment.TeacherID] = make([]bool, size)
		}
	}

	for slotIndex, unit := range units {
		classCells := classOccupancy[unit.Assignment.ClassID]
		teacherCells := teacherOccupancy[unit.Assignment.TeacherID]

		offset := slotIndex % size
		placed := false
		for i := 0; i < size; i++ {
			cell := (offset + i) % size
			if classCells[cell] || teacherCells[cell] {
				continue
			}

			classCells[cell] = true
			teacherCells[cell] = true
			slot := grid.SlotAt(cell)

			session := models.ScheduledSession{
				SchoolID:      unit.Assignment.SchoolID,
				ClassID:       unit.Assignment.ClassID,
				SubjectID:     unit.Assignment.SubjectID,
				TeacherID:     unit.Assignment.TeacherID,
				SubjectName:   unit.Assignment.SubjectName,
				TeacherName:   unit.Assignment.TeacherName,
				Day:           slot.Day,
				Period:        slot.Period,
				SessionNumber: unit.SessionNumber,
				TotalSessions: unit.TotalSessions,
			}
			if scorer != nil {
				session.Score = scorer.ScoreSlot(slot, unit)
			}
			result.Scheduled = append(result.Scheduled, session)
			placed = true
			break
		}

		if !placed {
			result.Unassigned = append(result.Unassigned, unit)
		}
	}

	return result
}
