package models

import (
	"fmt"
	"strings"
)

// Weekday is a closed enumeration of grid days. The generator only ever
// works with these small integers; day names appear at the persistence and
// presentation boundary.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = map[Weekday]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

var weekdayByName = map[string]Weekday{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
	"sunday":    Sunday,
}

// String returns the canonical day name.
func (d Weekday) String() string {
	if name, ok := weekdayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Weekday(%d)", int(d))
}

// Valid reports whether the value is a known weekday.
func (d Weekday) Valid() bool {
	_, ok := weekdayNames[d]
	return ok
}

// ParseWeekday maps a day name to its enum value, case-insensitively.
func ParseWeekday(name string) (Weekday, error) {
	if day, ok := weekdayByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// Slot is one abstract (day, period) cell of the weekly grid. It carries no
// identity and no wall-clock meaning.
type Slot struct {
	Day    Weekday
	Period int
}

// Key renders the slot as its canonical string form ("Monday_Period1") used
// inside learned pattern slot sets.
func (s Slot) Key() string {
	return fmt.Sprintf("%s_Period%d", s.Day, s.Period)
}

// SlotGrid is the fixed cross product of configured days and periods for one
// generation run.
type SlotGrid struct {
	Days          []Weekday
	PeriodsPerDay int
}

// Size returns the total number of cells in the grid.
func (g SlotGrid) Size() int {
	return len(g.Days) * g.PeriodsPerDay
}

// SlotAt maps a linear index to a cell, days outer and periods inner.
func (g SlotGrid) SlotAt(index int) Slot {
	return Slot{
		Day:    g.Days[index/g.PeriodsPerDay],
		Period: index%g.PeriodsPerDay + 1,
	}
}

// LastPeriod returns the highest period number of a day.
func (g SlotGrid) LastPeriod() int {
	return g.PeriodsPerDay
}
