package service

import (
	"github.com/aria7-op/sms-sub008/internal/models"
)

// ExpandSessions turns assignments plus per-subject required counts into the
// flat list of session units the engine places. Subjects absent from the map
// require a single session. Assignment order is preserved; units for the same
// assignment are numbered 1..N.
func ExpandSessions(assignments []models.TeacherAssignment, subjectSessions map[string]int) []models.SessionUnit {
	units := make([]models.SessionUnit, 0, len(assignments))
	for _, assignment := range assignments {
		total := subjectSessions[assignment.SubjectID]
		if total < 1 {
			total = 1
		}
		for n := 1; n <= total; n++ {
			units = append(units, models.SessionUnit{
				Assignment:    assignment,
				SessionNumber: n,
				TotalSessions: total,
			})
		}
	}
	return units
}
