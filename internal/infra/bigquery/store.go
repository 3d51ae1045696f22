package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/store"
)

// Store is the BigQuery backend. It holds a shared client so operations do
// not open a connection each.
type Store struct {
	client  *bigquery.Client
	dataset string
}

// NewStore creates a client for projectID and targets tables in dataset.
func NewStore(ctx context.Context, projectID, dataset string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating client: %w", err)
	}
	return &Store{client: client, dataset: dataset}, nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *bigquery.Client, dataset string) *Store {
	return &Store{client: client, dataset: dataset}
}

// Close closes the BigQuery client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// ListTransactions delegates to ListByUserWithClient for the transactions table.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]domain.Record, error) {
	return ListByUserWithClient(ctx, s.client, s.dataset, domain.TableTransactions, userID)
}

// InsertTransaction delegates to InsertRecordWithClient for the transactions table.
func (s *Store) InsertTransaction(ctx context.Context, rec domain.Record) error {
	return InsertRecordWithClient(ctx, s.client, s.dataset, domain.TableTransactions, rec)
}

// ListGoals delegates to ListByUserWithClient for the goals table.
func (s *Store) ListGoals(ctx context.Context, userID string) ([]domain.Record, error) {
	return ListByUserWithClient(ctx, s.client, s.dataset, domain.TableGoals, userID)
}

// InsertGoal delegates to InsertRecordWithClient for the goals table.
func (s *Store) InsertGoal(ctx context.Context, rec domain.Record) error {
	return InsertRecordWithClient(ctx, s.client, s.dataset, domain.TableGoals, rec)
}

// UpdateGoal delegates to UpdateGoalWithClient.
func (s *Store) UpdateGoal(ctx context.Context, userID, goalID string, fields domain.Record) (domain.Record, error) {
	return UpdateGoalWithClient(ctx, s.client, s.dataset, userID, goalID, fields)
}

// CreateUser delegates to InsertRecordWithClient for the users table.
func (s *Store) CreateUser(ctx context.Context, rec domain.Record) error {
	return InsertRecordWithClient(ctx, s.client, s.dataset, domain.TableUsers, rec)
}

// ListUsers delegates to ListAllWithClient for the users table.
func (s *Store) ListUsers(ctx context.Context) ([]domain.Record, error) {
	return ListAllWithClient(ctx, s.client, s.dataset, domain.TableUsers)
}

var _ store.Store = (*Store)(nil)
