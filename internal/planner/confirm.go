package planner

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/traintrack/backend/internal/activity"
	"github.com/traintrack/backend/internal/calendar"
	"github.com/traintrack/backend/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=planner_test

type activityScheduler interface {
	Schedule(ctx context.Context, username string, workoutID int, date calendar.Date) (*activity.Entry, error)
}

// ConfirmResult reports the outcome of one confirmation pass per workout id.
type ConfirmResult struct {
	Confirmed []activity.Entry `json:"confirmed"`
	FailedIDs []int            `json:"failedIds"`
}

// Confirm turns the unconfirmed placements into persisted schedules, one
// store call per placement. One failing placement never aborts the others:
// it stays in the map for a retry while the rest is committed and removed.
func (e *Engine) Confirm(ctx context.Context, store activityScheduler, username string) (_ ConfirmResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "planner.engine.confirm")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	e.mu.Lock()
	workoutIDs := make([]int, 0, len(e.placements))
	for workoutID := range e.placements {
		workoutIDs = append(workoutIDs, workoutID)
	}
	sort.Ints(workoutIDs)
	e.mu.Unlock()

	result := ConfirmResult{
		Confirmed: []activity.Entry{},
		FailedIDs: []int{},
	}
	for _, workoutID := range workoutIDs {
		e.mu.Lock()
		containerID, ok := e.placements[workoutID]
		e.mu.Unlock()
		if !ok {
			continue
		}

		date, resolveErr := ResolveContainer(containerID, e.today)
		if resolveErr != nil {
			err = multierr.Append(err, fmt.Errorf("workout %d: %w", workoutID, resolveErr))
			result.FailedIDs = append(result.FailedIDs, workoutID)
			continue
		}

		entry, scheduleErr := store.Schedule(ctx, username, workoutID, date)
		if scheduleErr != nil {
			log.Errorf("failed to confirm placement of workout %d on %s: %s", workoutID, calendar.Key(date), scheduleErr)
			err = multierr.Append(err, fmt.Errorf("workout %d: %w", workoutID, scheduleErr))
			result.FailedIDs = append(result.FailedIDs, workoutID)
			continue
		}

		result.Confirmed = append(result.Confirmed, *entry)
		e.Remove(workoutID)
	}

	return result, err
}
