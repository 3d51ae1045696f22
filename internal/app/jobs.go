package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finance-coach/internal/jobs"
	"github.com/dvloznov/finance-coach/internal/logger"
	"github.com/dvloznov/finance-coach/internal/notionsync"
	"github.com/dvloznov/finance-coach/internal/pipeline"
)

// ErrNotionDisabled is returned by SyncGoals when no Notion client is configured.
var ErrNotionDisabled = errors.New("notion sync is not configured")

// PipelineDeps assembles the snapshot pipeline collaborators.
func (a *App) PipelineDeps() pipeline.Deps {
	deps := pipeline.Deps{
		Repo:          a.Store,
		Bucket:        a.Config.GCSBucket,
		Subscriptions: a.Config.Subscriptions,
		IncomeMode:    a.Config.IncomeMode,
		Log:           a.Log,
	}
	// Only assign configured sinks so the interfaces stay nil otherwise.
	if a.Storage != nil {
		deps.Storage = a.Storage
	}
	if a.Recorder != nil {
		deps.Recorder = a.Recorder
	}
	return deps
}

// ExportSnapshot runs the snapshot pipeline for userID.
func (a *App) ExportSnapshot(ctx context.Context, userID, snapshotID string) (*pipeline.PipelineState, error) {
	return pipeline.ExportSnapshot(ctx, a.PipelineDeps(), userID, snapshotID)
}

// SyncGoals pushes the goal forecasts of userID to the configured Notion database.
func (a *App) SyncGoals(ctx context.Context, userID string, dryRun bool) (notionsync.SyncResult, error) {
	if a.Notion == nil {
		return notionsync.SyncResult{}, ErrNotionDisabled
	}
	return notionsync.SyncGoals(ctx, a.Service, a.Notion, a.Config.NotionGoalsDBID, userID, dryRun)
}

// HandleJob is the queue handler for every background job type.
func (a *App) HandleJob(ctx context.Context, job *jobs.UserJob) error {
	log := a.Log.With().Str("job_id", job.JobID).Str("user_id", job.UserID).Logger()
	ctx = logger.WithContext(ctx, log)

	switch job.Type {
	case jobs.JobTypeExportSnapshot:
		state, err := a.ExportSnapshot(ctx, job.UserID, job.JobID)
		if err != nil {
			return err
		}
		job.Result = state.Outcome()
		return nil
	case jobs.JobTypeSyncGoals:
		result, err := a.SyncGoals(ctx, job.UserID, false)
		if err != nil {
			return err
		}
		job.Result = result.String()
		if result.Failed > 0 {
			return fmt.Errorf("HandleJob: %d goal pages failed to sync", result.Failed)
		}
		return nil
	default:
		return fmt.Errorf("HandleJob: unknown job type %q", job.Type)
	}
}
