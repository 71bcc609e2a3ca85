package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/aetherboard/aetherboard/internal/domain"
)

func (a *Assistant) submitTimesheet(ctx context.Context, user *domain.Profile) (string, *undoEntry, error) {
	sheet, err := a.timesheets.Submit(ctx, user.ID, a.timesheets.Today())
	if err != nil {
		return "", nil, err
	}
	sheetID := sheet.ID
	entry := &undoEntry{
		label: "timesheet submission",
		revert: func(ctx context.Context) error {
			_, err := a.timesheets.Withdraw(ctx, user.ID, sheetID)
			return err
		},
	}
	reply := fmt.Sprintf("Submitted your timesheet for the week of %s with %g hours.",
		sheet.WeekStart.Format("Jan 2"), sheet.TotalHours)
	return reply, entry, nil
}

func (a *Assistant) fillVacationLeave(ctx context.Context, user *domain.Profile) (string, *undoEntry, error) {
	_, created, err := a.timesheets.FillVacationLeave(ctx, user.ID, a.timesheets.Today())
	var entry *undoEntry
	if len(created) > 0 {
		ids := append([]string(nil), created...)
		entry = &undoEntry{
			label: "vacation leave",
			revert: func(ctx context.Context) error {
				return a.timesheets.RemoveEntries(ctx, user.ID, ids)
			},
		}
	}
	if err != nil {
		return "", entry, err
	}
	if len(created) == 0 {
		return "Every weekday of this week already has an entry.", nil, nil
	}
	return fmt.Sprintf("Added Vacation Leave on %d day(s).", len(created)), entry, nil
}

func (a *Assistant) approvePending(ctx context.Context, user *domain.Profile) (string, *undoEntry, error) {
	sheets, err := a.timesheets.ListForReview(ctx, user, domain.TimesheetStatusSubmitted, nil)
	if err != nil {
		return "", nil, err
	}
	var approved []string
	var failed error
	for _, sheet := range sheets {
		if _, err := a.timesheets.Review(ctx, user, sheet.ID, true); err != nil {
			failed = err
			break
		}
		approved = append(approved, sheet.ID)
	}

	var entry *undoEntry
	if len(approved) > 0 {
		entry = &undoEntry{
			label: "timesheet approvals",
			revert: func(ctx context.Context) error {
				var errs []error
				for _, id := range approved {
					if _, err := a.timesheets.ReopenReview(ctx, user, id); err != nil {
						errs = append(errs, err)
					}
				}
				return errors.Join(errs...)
			},
		}
	}
	if failed != nil {
		return "", entry, failed
	}
	if len(approved) == 0 {
		return "There are no timesheets waiting for approval.", nil, nil
	}
	return fmt.Sprintf("Approved %d timesheet(s).", len(approved)), entry, nil
}
