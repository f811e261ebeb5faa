package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotKey(t *testing.T) {
	assert.Equal(t, "Monday_Period1", Slot{Day: Monday, Period: 1}.Key())
	assert.Equal(t, "Friday_Period8", Slot{Day: Friday, Period: 8}.Key())
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("monday")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	day, err = ParseWeekday("  Wednesday ")
	require.NoError(t, err)
	assert.Equal(t, Wednesday, day)

	_, err = ParseWeekday("Mondayy")
	assert.Error(t, err)
}

func TestSlotGridSlotAt(t *testing.T) {
	grid := SlotGrid{Days: []Weekday{Monday, Tuesday}, PeriodsPerDay: 3}
	require.Equal(t, 6, grid.Size())

	assert.Equal(t, Slot{Day: Monday, Period: 1}, grid.SlotAt(0))
	assert.Equal(t, Slot{Day: Monday, Period: 3}, grid.SlotAt(2))
	assert.Equal(t, Slot{Day: Tuesday, Period: 1}, grid.SlotAt(3))
	assert.Equal(t, Slot{Day: Tuesday, Period: 3}, grid.SlotAt(5))
}

func TestPatternTypeValid(t *testing.T) {
	assert.True(t, PatternTeacherPreference.Valid())
	assert.True(t, PatternDayPreference.Valid())
	assert.False(t, PatternType("ROOM_PREFERENCE").Valid())
	assert.False(t, PatternType("").Valid())
}
