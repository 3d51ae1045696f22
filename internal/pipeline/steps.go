package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/gcsuploader"
	"github.com/dvloznov/finance-coach/internal/normalize"
)

// PipelineStep represents a single step of the snapshot pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	UserID     string
	SnapshotID string
	Now        time.Time

	Transactions []domain.Transaction
	Goals        []domain.Goal
	Report       *Report
	ReportJSON   []byte
	ReportURI    string
	Recorded     bool
}

// Step 1: LoadDataStep reads and normalizes the user's transactions and goals.
type LoadDataStep struct {
	Repo Repository
}

func (s *LoadDataStep) Execute(ctx context.Context, state *PipelineState) error {
	txRecs, err := s.Repo.ListTransactions(ctx, state.UserID)
	if err != nil {
		return fmt.Errorf("LoadDataStep: list transactions: %w", err)
	}
	goalRecs, err := s.Repo.ListGoals(ctx, state.UserID)
	if err != nil {
		return fmt.Errorf("LoadDataStep: list goals: %w", err)
	}
	state.Transactions = normalize.Transactions(txRecs, state.Now)
	state.Goals = normalize.Goals(goalRecs, state.Now)
	return nil
}

// Step 2: ComputeAnalyticsStep builds and validates the report.
type ComputeAnalyticsStep struct {
	Subscriptions analytics.SubscriptionConfig
	IncomeMode    analytics.IncomeMode
}

func (s *ComputeAnalyticsStep) Execute(_ context.Context, state *PipelineState) error {
	report := BuildReport(state.SnapshotID, state.UserID, state.Transactions, state.Goals, state.Now, s.Subscriptions, s.IncomeMode)
	if err := ValidateReport(report); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("ComputeAnalyticsStep: encode report: %w", err)
	}
	state.Report = report
	state.ReportJSON = data
	return nil
}

// Step 3: ArchiveReportStep uploads the report JSON. It is a no-op without a
// storage service or bucket.
type ArchiveReportStep struct {
	Storage StorageService
	Bucket  string
	Log     zerolog.Logger
}

func (s *ArchiveReportStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Storage == nil || s.Bucket == "" {
		s.Log.Debug().Str("user_id", state.UserID).Msg("No report bucket configured, skipping archive")
		return nil
	}
	object := gcsuploader.SnapshotObjectName(state.UserID, state.Now, state.SnapshotID)
	if err := s.Storage.UploadBytes(ctx, s.Bucket, object, ReportContentType, state.ReportJSON); err != nil {
		return fmt.Errorf("ArchiveReportStep: %w", err)
	}
	state.ReportURI = gcsuploader.URI(s.Bucket, object)
	return nil
}

// Step 4: RecordSnapshotStep appends the warehouse row. It is a no-op without
// a recorder.
type RecordSnapshotStep struct {
	Recorder SnapshotRecorder
	Log      zerolog.Logger
}

func (s *RecordSnapshotStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Recorder == nil {
		s.Log.Debug().Str("user_id", state.UserID).Msg("No snapshot recorder configured, skipping")
		return nil
	}
	if err := s.Recorder.RecordSnapshot(ctx, SnapshotRow(state.Report, state.ReportURI)); err != nil {
		return fmt.Errorf("RecordSnapshotStep: %w", err)
	}
	state.Recorded = true
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d not started: %w", i+1, err)
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
