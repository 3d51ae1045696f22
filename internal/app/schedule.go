package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/dvloznov/finance-coach/internal/jobs"
)

// TriggerSchedule marks jobs enqueued by the cron scheduler.
const TriggerSchedule = "schedule"

// UserLister enumerates known users.
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// EnqueueSnapshots publishes one export job per user and returns how many
// were enqueued. Publish failures are logged and skipped.
func (a *App) EnqueueSnapshots(ctx context.Context, users UserLister, pub jobs.Publisher) (int, error) {
	ids, err := users.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("EnqueueSnapshots: list users: %w", err)
	}

	n := 0
	for _, id := range ids {
		job := &jobs.UserJob{Type: jobs.JobTypeExportSnapshot, UserID: id, Trigger: TriggerSchedule}
		if err := pub.Publish(ctx, job); err != nil {
			a.Log.Warn().Err(err).Str("user_id", id).Msg("Failed to enqueue scheduled snapshot")
			continue
		}
		n++
	}
	return n, nil
}

// StartSchedule registers the snapshot export on cfg.SnapshotSchedule and
// starts the cron runner. An empty schedule returns a nil runner.
func (a *App) StartSchedule(ctx context.Context, pub jobs.Publisher) (*cron.Cron, error) {
	spec := a.Config.SnapshotSchedule
	if spec == "" {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := a.EnqueueSnapshots(ctx, a.Service, pub)
		if err != nil {
			a.Log.Error().Err(err).Msg("Scheduled snapshot export failed")
			return
		}
		a.Log.Info().Int("jobs", n).Msg("Scheduled snapshot exports enqueued")
	})
	if err != nil {
		return nil, fmt.Errorf("StartSchedule: invalid schedule %q: %w", spec, err)
	}
	c.Start()
	a.Log.Info().Str("schedule", spec).Msg("Snapshot schedule started")
	return c, nil
}
