package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria7-op/sms-sub008/internal/models"
)

func TestExpandSessionsCounts(t *testing.T) {
	assignments := []models.TeacherAssignment{
		{SubjectID: "math", TeacherID: "teacher-1"},
		{SubjectID: "science", TeacherID: "teacher-2"},
		{SubjectID: "art", TeacherID: "teacher-3"},
	}
	units := ExpandSessions(assignments, map[string]int{"math": 3, "science": 2})

	require.Len(t, units, 6)
	assert.Equal(t, "math", units[0].Assignment.SubjectID)
	assert.Equal(t, 1, units[0].SessionNumber)
	assert.Equal(t, 3, units[0].TotalSessions)
	assert.Equal(t, 3, units[2].SessionNumber)

	// art is absent from the map and defaults to one session
	last := units[len(units)-1]
	assert.Equal(t, "art", last.Assignment.SubjectID)
	assert.Equal(t, 1, last.SessionNumber)
	assert.Equal(t, 1, last.TotalSessions)
}

func TestExpandSessionsPreservesOrder(t *testing.T) {
	assignments := []models.TeacherAssignment{
		{SubjectID: "b", TeacherID: "t1"},
		{SubjectID: "a", TeacherID: "t2"},
	}
	units := ExpandSessions(assignments, map[string]int{"a": 2, "b": 2})

	require.Len(t, units, 4)
	assert.Equal(t, "b", units[0].Assignment.SubjectID)
	assert.Equal(t, "b", units[1].Assignment.SubjectID)
	assert.Equal(t, "a", units[2].Assignment.SubjectID)
	assert.Equal(t, "a", units[3].Assignment.SubjectID)
}

func TestExpandSessionsEmpty(t *testing.T) {
	assert.Empty(t, ExpandSessions(nil, nil))
	assert.Empty(t, ExpandSessions([]models.TeacherAssignment{}, map[string]int{"math": 5}))
}
