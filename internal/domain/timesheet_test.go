package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekStartIsMonday(t *testing.T) {
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 7; offset++ {
		day := monday.AddDate(0, 0, offset).Add(17 * time.Hour)
		assert.Equal(t, monday, WeekStart(day), "day offset %d", offset)
	}
}

func TestWeekdays(t *testing.T) {
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	days := Weekdays(monday)
	assert.Len(t, days, 5)
	assert.Equal(t, time.Friday, days[4].Weekday())
}

func TestSumHoursAndOvertime(t *testing.T) {
	entries := []TimesheetEntry{{Hours: 8}, {Hours: 7.5}, {Hours: 0.25}}
	assert.Equal(t, 15.75, SumHours(entries))
	assert.Equal(t, 0.0, SumHours(nil))

	assert.Equal(t, 0.0, OvertimeFor(8, 8))
	assert.Equal(t, 1.5, OvertimeFor(9.5, 8))
	assert.Equal(t, 0.0, OvertimeFor(12, 0))
}

func TestTimesheetStatusEditable(t *testing.T) {
	assert.True(t, TimesheetStatusDraft.Editable())
	assert.True(t, TimesheetStatusRejected.Editable())
	assert.False(t, TimesheetStatusSubmitted.Editable())
	assert.False(t, TimesheetStatusApproved.Editable())
}

func TestValidTimesheetTask(t *testing.T) {
	assert.True(t, ValidTimesheetTask("Development"))
	assert.True(t, ValidTimesheetTask("Sick Leave"))
	assert.False(t, ValidTimesheetTask("development"))
	assert.False(t, ValidTimesheetTask(""))
}
