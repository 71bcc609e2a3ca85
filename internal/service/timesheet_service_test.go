package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherboard/aetherboard/internal/config"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/realtime"
)

// Wednesday
var sheetNow = time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)

func day(d int) time.Time { return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC) }

type timesheetFixture struct {
	svc   *TimesheetService
	repo  *fakeTimesheetRepo
	notes *fakeNotificationRepo
}

func newTimesheetFixture(t *testing.T, minWeekly float64) *timesheetFixture {
	t.Helper()
	broker := realtime.NewMemoryBroker(8, nil, nil)
	t.Cleanup(func() { _ = broker.Close() })
	dispatcher, notes := notifier(broker)
	repo := newFakeTimesheetRepo()
	svc := NewTimesheetService(TimesheetDependencies{
		TimesheetRepo: repo,
		Dispatcher:    dispatcher,
		Config:        config.TimesheetConfig{MinWeeklyHours: minWeekly, OvertimeDailyHours: 8},
		Now:           func() time.Time { return sheetNow },
	})
	return &timesheetFixture{svc: svc, repo: repo, notes: notes}
}

var manager = &domain.Profile{ID: "mgr", Email: "mgr@example.com", Role: domain.RoleManager}

func TestGetWeekNormalizesToMonday(t *testing.T) {
	f := newTimesheetFixture(t, 0)
	sheet, err := f.svc.GetWeek(context.Background(), "u1", day(15)) // Sunday
	require.NoError(t, err)
	assert.True(t, sheet.WeekStart.Equal(day(9)))
	assert.Equal(t, domain.TimesheetStatusDraft, sheet.Status)

	again, err := f.svc.GetWeek(context.Background(), "u1", day(10))
	require.NoError(t, err)
	assert.Equal(t, sheet.ID, again.ID)
}

func TestSaveEntryUpsertsDayAndRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	f := newTimesheetFixture(t, 0)

	_, _, err := f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(9), Task: "Development", Hours: 6})
	require.NoError(t, err)
	sheet, entry, err := f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(9), Task: "Testing", Hours: 10})
	require.NoError(t, err)
	require.Len(t, sheet.Entries, 1)
	assert.Equal(t, "Testing", sheet.Entries[0].Task)
	assert.Equal(t, 10.0, sheet.TotalHours)
	assert.Equal(t, 2.0, entry.OvertimeHours)
	assert.Equal(t, domain.OvertimeStatusPending, entry.OvertimeStatus)

	sheet, _, err = f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(10), Task: "Development", Hours: 4.5})
	require.NoError(t, err)
	assert.Equal(t, 14.5, sheet.TotalHours)
	assert.Equal(t, 14.5, f.repo.sheets[sheet.ID].TotalHours)

	sheet, err = f.svc.DeleteEntry(ctx, "u1", entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, sheet.TotalHours)
}

func TestSaveEntryValidatesHours(t *testing.T) {
	f := newTimesheetFixture(t, 0)
	_, _, err := f.svc.SaveEntry(context.Background(), "u1", EntryInput{Date: day(9), Task: "Development", Hours: 25})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(err))
	_, _, err = f.svc.SaveEntry(context.Background(), "u1", EntryInput{Date: day(9), Task: " ", Hours: 2})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(err))
	_, _, err = f.svc.SaveEntry(context.Background(), "u1", EntryInput{Date: day(9), Task: "Lunch", Hours: 2})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(err))
}

func TestSubmitEnforcesMinimumHours(t *testing.T) {
	ctx := context.Background()
	f := newTimesheetFixture(t, 40)
	_, _, err := f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(9), Task: "Development", Hours: 8})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, "u1", sheetNow)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(err))

	for d := 10; d <= 13; d++ {
		_, _, err := f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(d), Task: "Development", Hours: 8})
		require.NoError(t, err)
	}
	sheet, err := f.svc.Submit(ctx, "u1", sheetNow)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetStatusSubmitted, sheet.Status)
	assert.NotNil(t, sheet.SubmittedAt)

	_, _, err = f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(9), Task: "Development", Hours: 1})
	assert.Equal(t, "CONFLICT", errorCode(err))
	_, err = f.svc.Submit(ctx, "u1", sheetNow)
	assert.Equal(t, "CONFLICT", errorCode(err))
}

func TestReviewNotifiesOwner(t *testing.T) {
	ctx := context.Background()
	f := newTimesheetFixture(t, 0)
	_, _, err := f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(9), Task: "Development", Hours: 8})
	require.NoError(t, err)
	sheet, err := f.svc.Submit(ctx, "u1", sheetNow)
	require.NoError(t, err)

	employee := &domain.Profile{ID: "u2", Role: domain.RoleEmployee}
	_, err = f.svc.Review(ctx, employee, sheet.ID, true)
	assert.Equal(t, "FORBIDDEN", errorCode(err))

	pending, err := f.svc.ListForReview(ctx, manager, "", &sheetNow)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Len(t, pending[0].Entries, 1)

	reviewed, err := f.svc.Review(ctx, manager, sheet.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetStatusRejected, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, "mgr", *reviewed.ReviewedBy)

	notes, err := f.notes.ListByUser(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationTimesheetReview, notes[0].Kind)
	assert.Contains(t, notes[0].Message, "2026-03-09")
	assert.Contains(t, notes[0].Message, "rejected")

	// a rejected sheet is editable again and can be resubmitted
	_, _, err = f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(10), Task: "Development", Hours: 8})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, "u1", sheetNow)
	require.NoError(t, err)
}

func TestDecideOvertime(t *testing.T) {
	ctx := context.Background()
	f := newTimesheetFixture(t, 0)
	_, entry, err := f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(9), Task: "Development", Hours: 11})
	require.NoError(t, err)

	reqs, err := f.svc.ListPendingOvertime(ctx, manager)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "u1", reqs[0].UserID)

	decided, err := f.svc.DecideOvertime(ctx, manager, entry.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.OvertimeStatusApproved, decided.OvertimeStatus)

	_, err = f.svc.DecideOvertime(ctx, manager, entry.ID, false)
	assert.Equal(t, "CONFLICT", errorCode(err))

	notes, err := f.notes.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationOvertimeReview, notes[0].Kind)
}

func TestFillVacationLeaveSkipsFilledDaysAndUndoes(t *testing.T) {
	ctx := context.Background()
	f := newTimesheetFixture(t, 0)
	_, _, err := f.svc.SaveEntry(ctx, "u1", EntryInput{Date: day(10), Task: "Development", Hours: 6})
	require.NoError(t, err)

	sheet, created, err := f.svc.FillVacationLeave(ctx, "u1", sheetNow)
	require.NoError(t, err)
	assert.Len(t, created, 4)
	require.Len(t, sheet.Entries, 5)
	assert.Equal(t, 38.0, domain.SumHours(sheet.Entries))
	for _, e := range sheet.Entries {
		if domain.SameDay(e.EntryDate, day(10)) {
			assert.Equal(t, "Development", e.Task)
			continue
		}
		assert.Equal(t, VacationLeaveTask, e.Task)
	}

	require.NoError(t, f.svc.RemoveEntries(ctx, "u1", append(created, "already-gone")))
	sheet, err = f.svc.GetWeek(ctx, "u1", sheetNow)
	require.NoError(t, err)
	assert.Len(t, sheet.Entries, 1)
	assert.Equal(t, 6.0, f.repo.sheets[sheet.ID].TotalHours)
}

func TestWithdrawAndReopen(t *testing.T) {
	ctx := context.Background()
	f := newTimesheetFixture(t, 0)
	sheet, err := f.svc.Submit(ctx, "u1", sheetNow)
	require.NoError(t, err)

	_, err = f.svc.Withdraw(ctx, "u2", sheet.ID)
	assert.Equal(t, "FORBIDDEN", errorCode(err))
	withdrawn, err := f.svc.Withdraw(ctx, "u1", sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetStatusDraft, withdrawn.Status)

	_, err = f.svc.Submit(ctx, "u1", sheetNow)
	require.NoError(t, err)
	_, err = f.svc.Review(ctx, manager, sheet.ID, true)
	require.NoError(t, err)
	reopened, err := f.svc.ReopenReview(ctx, manager, sheet.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TimesheetStatusSubmitted, reopened.Status)
	assert.Nil(t, reopened.ReviewedBy)
}
