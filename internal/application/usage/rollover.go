package usage

import (
	"context"
	"fmt"
)

// ActiveUserLister lists users currently holding an active subscription.
type ActiveUserLister interface {
	ListActiveUserIDs(ctx context.Context) ([]uint, error)
}

// RolloverJob opens the current billing period for every subscribed user so
// month-start reads never race on first-record creation.
type RolloverJob struct {
	users   ActiveUserLister
	tracker *Tracker
}

func NewRolloverJob(users ActiveUserLister, tracker *Tracker) *RolloverJob {
	return &RolloverJob{
		users:   users,
		tracker: tracker,
	}
}

// Execute returns the number of records created.
func (j *RolloverJob) Execute(ctx context.Context) (int, error) {
	userIDs, err := j.users.ListActiveUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	period := j.tracker.CurrentPeriod()
	created, err := j.tracker.EnsurePeriod(ctx, userIDs, period)
	if err != nil {
		return 0, fmt.Errorf("failed to open period %s: %w", period, err)
	}

	j.tracker.logger.Debugw("usage period opened",
		"period", period.String(),
		"users", len(userIDs),
		"created", created,
	)
	return created, nil
}
