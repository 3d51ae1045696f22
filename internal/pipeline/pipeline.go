package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/analytics"
)

// Deps are the collaborators of the snapshot pipeline. Storage and Recorder
// are optional.
type Deps struct {
	Repo          Repository
	Storage       StorageService
	Bucket        string
	Recorder      SnapshotRecorder
	Subscriptions analytics.SubscriptionConfig
	IncomeMode    analytics.IncomeMode
	Log           zerolog.Logger
}

// NewSnapshotPipeline creates the standard 4-step export pipeline.
func NewSnapshotPipeline(deps Deps) *Pipeline {
	return NewPipeline(
		&LoadDataStep{Repo: deps.Repo},
		&ComputeAnalyticsStep{Subscriptions: deps.Subscriptions, IncomeMode: deps.IncomeMode},
		&ArchiveReportStep{Storage: deps.Storage, Bucket: deps.Bucket, Log: deps.Log},
		&RecordSnapshotStep{Recorder: deps.Recorder, Log: deps.Log},
	)
}

// ExportSnapshot runs the snapshot pipeline for one user and returns the
// final state. snapshotID may be empty.
func ExportSnapshot(ctx context.Context, deps Deps, userID, snapshotID string) (*PipelineState, error) {
	if userID == "" {
		return nil, fmt.Errorf("ExportSnapshot: user id is required")
	}
	if snapshotID == "" {
		snapshotID = uuid.NewString()
	}

	state := &PipelineState{
		UserID:     userID,
		SnapshotID: snapshotID,
		Now:        time.Now().UTC(),
	}

	start := time.Now()
	if err := NewSnapshotPipeline(deps).Execute(ctx, state); err != nil {
		deps.Log.Error().Err(err).Str("user_id", userID).Str("snapshot_id", snapshotID).Msg("Snapshot export failed")
		return state, fmt.Errorf("ExportSnapshot: %w", err)
	}

	deps.Log.Info().
		Str("user_id", userID).
		Str("snapshot_id", snapshotID).
		Str("report_uri", state.ReportURI).
		Bool("recorded", state.Recorded).
		Dur("duration", time.Since(start)).
		Msg("Snapshot exported")
	return state, nil
}

// Outcome summarizes an export for job results.
func (s *PipelineState) Outcome() string {
	switch {
	case s.ReportURI != "":
		return s.ReportURI
	case s.Recorded:
		return "snapshot " + s.SnapshotID + " recorded"
	default:
		return "snapshot " + s.SnapshotID + " computed"
	}
}
