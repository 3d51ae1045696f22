package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
)

// SnapshotsTable holds one row per exported analytics snapshot.
const SnapshotsTable = "analytics_snapshots"

// SnapshotRow is an analytics snapshot record in BigQuery.
type SnapshotRow struct {
	SnapshotID   string     `bigquery:"snapshot_id"`   // REQUIRED
	UserID       string     `bigquery:"user_id"`       // REQUIRED
	SnapshotDate civil.Date `bigquery:"snapshot_date"` // REQUIRED

	TotalExpenses  *big.Rat `bigquery:"total_expenses"`  // NUMERIC
	TotalIncome    *big.Rat `bigquery:"total_income"`    // NUMERIC
	MonthlySavings *big.Rat `bigquery:"monthly_savings"` // NUMERIC
	SavingsBasis   string   `bigquery:"savings_basis"`

	TransactionCount    int64    `bigquery:"transaction_count"`
	SubscriptionCount   int64    `bigquery:"subscription_count"`
	SubscriptionMonthly *big.Rat `bigquery:"subscription_monthly"` // NUMERIC
	ActiveGoalCount     int64    `bigquery:"active_goal_count"`

	TopCategory bigquery.NullString `bigquery:"top_category"` // NULLABLE
	ReportURI   bigquery.NullString `bigquery:"report_uri"`   // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"`
}

// SnapshotRecorder writes snapshot rows.
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, row *SnapshotRow) error
}

// BigQuerySnapshotRecorder appends rows to the analytics_snapshots table.
type BigQuerySnapshotRecorder struct {
	client  *bigquery.Client
	dataset string
}

// NewSnapshotRecorder creates a recorder with its own client.
func NewSnapshotRecorder(ctx context.Context, projectID, dataset string) (*BigQuerySnapshotRecorder, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewSnapshotRecorder: creating client: %w", err)
	}
	return &BigQuerySnapshotRecorder{client: client, dataset: dataset}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQuerySnapshotRecorder) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// RecordSnapshot delegates to InsertSnapshotWithClient.
func (r *BigQuerySnapshotRecorder) RecordSnapshot(ctx context.Context, row *SnapshotRow) error {
	return InsertSnapshotWithClient(ctx, r.client, r.dataset, row)
}

// InsertSnapshotWithClient inserts a single SnapshotRow.
func InsertSnapshotWithClient(ctx context.Context, client *bigquery.Client, dataset string, row *SnapshotRow) error {
	if row.CreatedTS.IsZero() {
		row.CreatedTS = time.Now().UTC()
	}

	inserter := client.Dataset(dataset).Table(SnapshotsTable).Inserter()
	if err := inserter.Put(ctx, []*SnapshotRow{row}); err != nil {
		return fmt.Errorf("InsertSnapshotWithClient: inserting row: %w", err)
	}
	return nil
}

// NumericFromFloat converts a currency amount to a NUMERIC value rounded to cents.
func NumericFromFloat(v float64) *big.Rat {
	r, ok := new(big.Rat).SetString(fmt.Sprintf("%.2f", v))
	if !ok {
		return new(big.Rat)
	}
	return r
}

var _ SnapshotRecorder = (*BigQuerySnapshotRecorder)(nil)
